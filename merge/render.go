package merge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/docsynth"
)

// Conflict markers. A conflict renders as a warning line followed by both
// versions between the markers, docs first.
const (
	WarningMarker = "> **WARNING**"
	DocsMarker    = "<<<<<<< docs"
	Separator     = "======="
	CodeMarker    = ">>>>>>> code"
	absent        = "(absent)"
)

// RenderPage renders a page as a category entry. Headings of the page are
// demoted two levels so they nest under the entry title.
func RenderPage(p *docsynth.PageRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", p.Title)
	fmt.Fprintf(&sb, "Source: <%s>\n\n", p.URL)
	sb.WriteString(DemoteHeadings(strings.TrimSpace(p.RawText), 2))
	return sb.String()
}

// RenderConflict renders a conflict with both versions side by side.
func RenderConflict(c docsynth.ConflictRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s conflict `%s` (%s): `%s`", WarningMarker, c.Type, c.Severity, c.IdentityKey)
	if c.LowConfidence {
		sb.WriteString(" (low confidence match)")
	}
	sb.WriteString("\n\n```text\n")
	sb.WriteString(DocsMarker + "\n")
	sb.WriteString(orAbsent(c.DocVersion) + "\n")
	sb.WriteString(Separator + "\n")
	sb.WriteString(orAbsent(c.CodeVersion) + "\n")
	sb.WriteString(CodeMarker + "\n")
	sb.WriteString("```")
	return sb.String()
}

func orAbsent(s string) string {
	if strings.TrimSpace(s) == "" {
		return absent
	}
	return s
}

var headingPrefixRe = regexp.MustCompile(`^(#{1,6})(\s)`)

// DemoteHeadings adds levels to every markdown heading outside fenced code,
// capping at level 6.
func DemoteHeadings(markdown string, levels int) string {
	lines := strings.Split(markdown, "\n")
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headingPrefixRe.FindStringSubmatch(line); m != nil {
			level := min(len(m[1])+levels, 6)
			lines[i] = strings.Repeat("#", level) + line[len(m[1]):]
		}
	}
	return strings.Join(lines, "\n")
}

func renderCategory(name string, entries []*entry, doc int) string {
	var pages, conflicts []string
	for _, en := range entries {
		if en.doc != doc {
			continue
		}
		if en.conflict {
			conflicts = append(conflicts, en.final)
		} else {
			pages = append(pages, en.final)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", name)
	if len(conflicts) > 0 {
		fmt.Fprintf(&sb, "\n## Conflicts\n\n%s\n", strings.Join(conflicts, "\n\n"))
	}
	for _, p := range pages {
		sb.WriteString("\n")
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (e *Engine) renderIndex(ctx context.Context, in *Input, docs []*docsynth.CategoryDocument, annotations []docsynth.ConflictAnnotation) string {
	var sb strings.Builder

	title := in.Name
	if title == "" {
		title = "Documentation"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	var code, documented int
	for _, s := range in.Symbols {
		if s.Origin == docsynth.OriginCode {
			code++
		} else {
			documented++
		}
	}
	fmt.Fprintf(&sb, "%d pages, %d code symbols, %d documented symbols, %d conflicts.\n\n",
		len(in.Pages), code, documented, len(annotations))

	sb.WriteString("## Categories\n\n")
	if e.TokenCounter != nil {
		sb.WriteString("| Category | Pages | Size |\n|---|---|---|\n")
	} else {
		sb.WriteString("| Category | Pages |\n|---|---|\n")
	}
	for _, d := range docs {
		fmt.Fprintf(&sb, "| [%s](%s) | %d |", d.Category, d.File, len(d.PageURLs))
		if e.TokenCounter != nil {
			size := "-"
			if n, err := e.TokenCounter.CountTokens(ctx, d.Content); err == nil {
				size = docsynth.FormatTokens(n)
			}
			fmt.Fprintf(&sb, " %s |", size)
		}
		sb.WriteString("\n")
	}

	if len(annotations) == 0 {
		return sb.String()
	}

	counts := make(map[docsynth.Severity]int)
	for _, a := range annotations {
		counts[a.Severity]++
	}
	sb.WriteString("\n## Conflicts\n\n")
	for _, sev := range []docsynth.Severity{docsynth.SeverityHigh, docsynth.SeverityMedium, docsynth.SeverityLow} {
		fmt.Fprintf(&sb, "- %s: %d\n", sev, counts[sev])
	}
	sb.WriteString("\nSee `conflicts.json` for the full list.\n")

	var unmapped []docsynth.ConflictAnnotation
	for _, a := range annotations {
		if len(a.Categories) == 0 {
			unmapped = append(unmapped, a)
		}
	}
	if len(unmapped) > 0 {
		sb.WriteString("\n### Not covered by any category\n\n")
		for _, a := range unmapped {
			fmt.Fprintf(&sb, "%s\n\n", RenderConflict(a.ConflictRecord))
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
