package internal

import (
	"regexp"
	"sort"
	"strings"
)

// Matcher marks keyword and pattern hits in a line of text.
//
// Keywords are highlighted only as standalone words (ASCII word boundaries) but are
// counted by plain substring containment. The two rules differ on purpose: "barfoo"
// counts toward "foo" without being reported.
type Matcher struct {
	keywords []string
	bounded  []*regexp.Regexp
	patterns []*regexp.Regexp
	style    *Style
}

// NewMatcher compiles a boundary-wrapped literal regexp for every keyword.
func NewMatcher(keywords []string, patterns []*regexp.Regexp, style *Style) *Matcher {
	if style == nil {
		style = DefaultStyle()
	}
	bounded := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		bounded = append(bounded, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return &Matcher{keywords: keywords, bounded: bounded, patterns: patterns, style: style}
}

// Highlight returns a copy of line with every standalone keyword marked.
// ok is false when no keyword occurs as a standalone word.
func (m *Matcher) Highlight(line string) (string, bool) {
	var spans [][2]int
	for _, re := range m.bounded {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			spans = append(spans, [2]int{loc[0], loc[1]})
		}
	}
	if len(spans) == 0 {
		return "", false
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	// overlapping hits of different keywords are marked as one span
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s[0] <= last[1] {
			if s[1] > last[1] {
				last[1] = s[1]
			}
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	prev := 0
	for _, s := range merged {
		b.WriteString(line[prev:s[0]])
		b.WriteString(m.style.Keyword.Sprint(line[s[0]:s[1]]))
		prev = s[1]
	}
	b.WriteString(line[prev:])
	return b.String(), true
}

// Match evaluates line and returns the fragments to report: the highlighted line
// (if a keyword matched) followed by every pattern match. regexCounts[i] grows by
// the number of non-overlapping matches of pattern i.
func (m *Matcher) Match(line string, regexCounts []int) []string {
	var fragments []string
	if highlighted, ok := m.Highlight(line); ok {
		fragments = append(fragments, highlighted)
	}
	for i, re := range m.patterns {
		for _, hit := range re.FindAllString(line, -1) {
			fragments = append(fragments, m.style.Pattern.Sprint(hit))
			regexCounts[i]++
		}
	}
	return fragments
}

// CountLine adds one to every keyword contained in line.
func (m *Matcher) CountLine(line string, counts map[string]int) {
	for _, kw := range m.keywords {
		if strings.Contains(line, kw) {
			counts[kw]++
		}
	}
}

// CountRun adds the number of non-overlapping occurrences of every keyword in run.
func (m *Matcher) CountRun(run string, counts map[string]int) {
	for _, kw := range m.keywords {
		counts[kw] += strings.Count(run, kw)
	}
}
