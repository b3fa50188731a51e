package repo

import (
	"context"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"go/types"
	"strings"

	"github.com/fwojciec/docsynth"
)

// goParser extracts exported functions and methods of exported types.
type goParser struct{}

func (goParser) parse(_ context.Context, rel string, content []byte) ([]*docsynth.RawFact, error) {
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, rel, content, goparser.ParseComments)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EPARSE, "parse %s: %v", rel, err)
	}

	var facts []*docsynth.RawFact
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !fn.Name.IsExported() {
			continue
		}

		module := file.Name.Name
		if fn.Recv != nil && len(fn.Recv.List) > 0 {
			recv := receiverName(fn.Recv.List[0].Type)
			if !ast.IsExported(recv) {
				continue
			}
			module += "." + recv
		}

		f := &docsynth.RawFact{
			Origin:   docsynth.OriginCode,
			Module:   module,
			Name:     fn.Name.Name,
			Params:   goParams(fn.Type.Params),
			Returns:  goResults(fn.Type.Results),
			Location: location(rel, fset.Position(fn.Pos()).Line),
		}
		if fn.Doc != nil {
			f.Description = firstParagraph(fn.Doc.Text())
		}
		facts = append(facts, f)
	}
	return facts, nil
}

// receiverName returns the type name of a receiver, without pointer or
// type parameters.
func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}

func goParams(fields *ast.FieldList) []docsynth.Param {
	if fields == nil {
		return nil
	}
	var params []docsynth.Param
	for _, field := range fields.List {
		typ := types.ExprString(field.Type)
		if len(field.Names) == 0 {
			params = append(params, docsynth.Param{Name: "_", Type: typ})
			continue
		}
		for _, name := range field.Names {
			params = append(params, docsynth.Param{Name: name.Name, Type: typ})
		}
	}
	return params
}

// goResults renders a result list as "T" or "(T1, T2)".
func goResults(fields *ast.FieldList) string {
	if fields == nil {
		return ""
	}
	var results []string
	for _, field := range fields.List {
		typ := types.ExprString(field.Type)
		n := max(len(field.Names), 1)
		for range n {
			results = append(results, typ)
		}
	}
	if len(results) == 1 {
		return results[0]
	}
	return "(" + strings.Join(results, ", ") + ")"
}
