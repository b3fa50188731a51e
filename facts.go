package docsynth

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	pyDefRe  = regexp.MustCompile(`^(?:async\s+)?def\s+([A-Za-z_][\w.]*)\s*\((.*)\)\s*(?:->\s*(.+?))?\s*:?$`)
	goFuncRe = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)\s*\((.*?)\)\s*(.*?)\s*\{?$`)
	arrowRe  = regexp.MustCompile(`^([A-Za-z_][\w.]*)\s*\((.*)\)\s*->\s*(.+?)\s*:?$`)
	identRe  = regexp.MustCompile(`^\*{0,2}[A-Za-z_]\w*$`)
)

// ScanFacts finds function signatures in documentation text. A line is a
// signature when it is a Python def, a Go func, or a call shape with a
// "->" return annotation; headings, list markers and inline code around it
// are ignored. The closest prose paragraph before the signature becomes its
// description, or the next one when none precedes it. Each qualified name
// and arity is reported once.
func ScanFacts(text string, origin Origin, location string) []*RawFact {
	var (
		facts    []*RawFact
		seen     = make(map[string]bool)
		para     []string
		lastPara string
		pending  *RawFact
		inFence  bool
	)

	endPara := func() {
		if len(para) == 0 {
			return
		}
		lastPara = strings.Join(para, " ")
		para = para[:0]
		if pending != nil {
			pending.Description = lastPara
			pending = nil
			lastPara = ""
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "```") {
			endPara()
			inFence = !inFence
			continue
		}

		if f := parseSignature(trimmed); f != nil {
			endPara()
			key := strings.ToLower(f.QualifiedName()) + "#" + strconv.Itoa(len(f.Params))
			if !seen[key] {
				seen[key] = true
				f.Origin = origin
				f.Location = location
				if lastPara != "" {
					f.Description = lastPara
				} else {
					pending = f
				}
				facts = append(facts, f)
			}
			lastPara = ""
			continue
		}

		if inFence {
			continue
		}
		switch {
		case trimmed == "":
			endPara()
		case strings.HasPrefix(trimmed, "#"):
			endPara()
			lastPara = ""
		default:
			para = append(para, trimmed)
		}
	}
	endPara()

	return facts
}

// parseSignature recognizes a single signature line.
func parseSignature(line string) *RawFact {
	line = strings.TrimLeft(line, "#-*> \t")
	line = strings.Trim(line, "`")
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if m := goFuncRe.FindStringSubmatch(line); m != nil {
		params, ok := parseGoParams(m[2])
		if !ok {
			return nil
		}
		return &RawFact{Name: m[1], Params: params, Returns: strings.TrimSpace(m[3])}
	}

	var m []string
	if m = pyDefRe.FindStringSubmatch(line); m == nil {
		if m = arrowRe.FindStringSubmatch(line); m == nil {
			return nil
		}
	}
	params, ok := parsePyParams(m[2])
	if !ok {
		return nil
	}
	f := &RawFact{Name: m[1], Params: params, Returns: strings.TrimSpace(m[3])}
	if i := strings.LastIndex(f.Name, "."); i > 0 {
		f.Module, f.Name = f.Name[:i], f.Name[i+1:]
	}
	return f
}

// parsePyParams parses "a: int, b=1, *args". self and cls are dropped.
func parsePyParams(s string) ([]Param, bool) {
	var params []Param
	for _, part := range SplitParams(s) {
		if i := strings.Index(part, "="); i >= 0 {
			part = strings.TrimSpace(part[:i])
		}
		name, typ := part, ""
		if i := strings.Index(part, ":"); i >= 0 {
			name, typ = strings.TrimSpace(part[:i]), strings.TrimSpace(part[i+1:])
		}
		if name == "/" || name == "*" {
			continue
		}
		if !identRe.MatchString(name) {
			return nil, false
		}
		if name == "self" || name == "cls" {
			continue
		}
		params = append(params, Param{Name: name, Type: typ})
	}
	return params, true
}

// parseGoParams parses "a, b int, c string".
func parseGoParams(s string) ([]Param, bool) {
	parts := SplitParams(s)
	params := make([]Param, len(parts))
	typ := ""
	for i := len(parts) - 1; i >= 0; i-- {
		fields := strings.Fields(parts[i])
		switch len(fields) {
		case 1:
			params[i] = Param{Name: fields[0], Type: typ}
		case 0:
			return nil, false
		default:
			typ = strings.Join(fields[1:], " ")
			params[i] = Param{Name: fields[0], Type: typ}
		}
		if !identRe.MatchString(params[i].Name) {
			return nil, false
		}
	}
	return params, true
}

// SplitParams splits a parameter list on top-level commas, so that
// "a: Dict[str, int], b" yields two parts.
func SplitParams(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				if p := strings.TrimSpace(s[start:i]); p != "" {
					parts = append(parts, p)
				}
				start = i + 1
			}
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}
