package docsynth

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Section represents a heading in a markdown document and the text that
// follows it up to the next section.
type Section struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
	Body   string `json:"body,omitempty"`
}

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// ExtractSections parses markdown and returns all headings (H1-H6).
// It generates URL-safe anchors and handles duplicates with numeric suffixes.
func ExtractSections(markdown string) []Section {
	return SplitSections(markdown, 6)
}

// SplitSections splits markdown at headings of level maxLevel or above.
// Deeper headings stay in the body of the enclosing section. Headings
// inside fenced code blocks are ignored, and text before the first
// heading is dropped.
func SplitSections(markdown string, maxLevel int) []Section {
	if markdown == "" {
		return nil
	}

	var (
		sections     []Section
		body         strings.Builder
		inFence      bool
		anchorCounts = make(map[string]int)
	)

	flush := func() {
		if len(sections) > 0 {
			sections[len(sections)-1].Body = strings.TrimSpace(body.String())
		}
		body.Reset()
	}

	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !inFence {
			if m := headingRe.FindStringSubmatch(line); m != nil && len(m[1]) <= maxLevel {
				flush()
				title := strings.TrimSpace(m[2])
				sections = append(sections, Section{
					Level:  len(m[1]),
					Title:  title,
					Anchor: uniqueAnchor(anchorCounts, generateAnchor(title)),
				})
				continue
			}
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return sections
}

// uniqueAnchor returns base, or base with the first free numeric suffix.
// counts holds every anchor handed out, mapped to the next suffix to try.
func uniqueAnchor(counts map[string]int, base string) string {
	n, taken := counts[base]
	if !taken {
		counts[base] = 1
		return base
	}
	for ; ; n++ {
		anchor := base + "-" + strconv.Itoa(n)
		if _, taken := counts[anchor]; !taken {
			counts[base] = n + 1
			counts[anchor] = 1
			return anchor
		}
	}
}

// generateAnchor creates a URL-safe anchor from a title.
// Converts to lowercase, replaces spaces with hyphens, removes special chars.
func generateAnchor(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	result := sb.String()
	// Trim trailing hyphen
	return strings.TrimSuffix(result, "-")
}
