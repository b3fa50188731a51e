package repo

import (
	"context"
	"strings"

	"github.com/fwojciec/docsynth"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// pythonParser extracts public functions and methods from Python source.
// A sitter.Parser is not safe for concurrent use.
type pythonParser struct {
	parser *sitter.Parser
}

func newPythonParser() *pythonParser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &pythonParser{parser: p}
}

func (p *pythonParser) parse(ctx context.Context, rel string, content []byte) ([]*docsynth.RawFact, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EPARSE, "parse %s: %v", rel, err)
	}
	defer tree.Close()

	module := pythonModule(rel)
	root := tree.RootNode()

	var facts []*docsynth.RawFact
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := definition(root.NamedChild(i))
		if node == nil {
			continue
		}
		switch node.Type() {
		case "function_definition":
			if f := pyFunction(node, content, module, rel); f != nil {
				facts = append(facts, f)
			}
		case "class_definition":
			facts = append(facts, pyMethods(node, content, module, rel)...)
		}
	}
	return facts, nil
}

// definition unwraps a decorated definition.
func definition(node *sitter.Node) *sitter.Node {
	if node.Type() != "decorated_definition" {
		return node
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "class_definition", "function_definition":
			return child
		}
	}
	return nil
}

func pyMethods(class *sitter.Node, content []byte, module, rel string) []*docsynth.RawFact {
	name := class.ChildByFieldName("name")
	body := class.ChildByFieldName("body")
	if name == nil || body == nil || isPrivate(text(name, content)) {
		return nil
	}
	scope := text(name, content)
	if module != "" {
		scope = module + "." + scope
	}

	var facts []*docsynth.RawFact
	for i := 0; i < int(body.NamedChildCount()); i++ {
		node := definition(body.NamedChild(i))
		if node == nil || node.Type() != "function_definition" {
			continue
		}
		if f := pyFunction(node, content, scope, rel); f != nil {
			facts = append(facts, f)
		}
	}
	return facts
}

func pyFunction(node *sitter.Node, content []byte, module, rel string) *docsynth.RawFact {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := text(nameNode, content)
	if isPrivate(name) {
		return nil
	}

	f := &docsynth.RawFact{
		Origin:   docsynth.OriginCode,
		Module:   module,
		Name:     name,
		Location: location(rel, int(node.StartPoint().Row)+1),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		f.Params = pyParams(params, content)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		f.Returns = text(ret, content)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		f.Description = firstParagraph(docstring(body, content))
	}
	return f
}

// pyParams reads a parameter list, dropping self, cls and the bare * and /
// separators.
func pyParams(node *sitter.Node, content []byte) []docsynth.Param {
	var params []docsynth.Param
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		var p docsynth.Param
		switch child.Type() {
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
			p.Name = text(child, content)
		case "default_parameter":
			p.Name = text(child.ChildByFieldName("name"), content)
		case "typed_parameter":
			if child.NamedChildCount() > 0 {
				p.Name = text(child.NamedChild(0), content)
			}
			p.Type = text(child.ChildByFieldName("type"), content)
		case "typed_default_parameter":
			p.Name = text(child.ChildByFieldName("name"), content)
			p.Type = text(child.ChildByFieldName("type"), content)
		default:
			continue
		}
		if p.Name == "" || p.Name == "self" || p.Name == "cls" {
			continue
		}
		params = append(params, p)
	}
	return params
}

// docstring returns the leading string literal of a body.
func docstring(body *sitter.Node, content []byte) string {
	if body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	expr := first.NamedChild(0)
	if expr.Type() != "string" {
		return ""
	}
	raw := text(expr, content)
	raw = strings.TrimLeft(raw, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			raw = raw[len(q) : len(raw)-len(q)]
			break
		}
	}
	return strings.TrimSpace(raw)
}

func text(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func isPrivate(name string) bool {
	return strings.HasPrefix(name, "_")
}

// pythonModule derives the dotted module name from a file path:
// src/pkg/io.py is pkg.io and pkg/__init__.py is pkg.
func pythonModule(rel string) string {
	mod := strings.TrimSuffix(rel, ".py")
	mod = strings.TrimPrefix(mod, "src/")
	mod = strings.TrimSuffix(mod, "/__init__")
	if mod == "__init__" {
		return ""
	}
	return strings.ReplaceAll(mod, "/", ".")
}
