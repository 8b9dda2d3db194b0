package internal

import (
	"strconv"

	"github.com/fatih/color"
)

// Style is the set of colors used for report lines.
type Style struct {
	Path    *color.Color // file paths
	Line    *color.Color // line numbers
	Keyword *color.Color // keyword hits inside a line
	Pattern *color.Color // regex matches
	Label   *color.Color // summary labels
}

// DefaultStyle returns the report color scheme.
func DefaultStyle() *Style {
	return &Style{
		Path:    color.New(color.FgBlue, color.Bold),
		Line:    color.New(color.FgYellow, color.Bold),
		Keyword: color.New(color.FgRed, color.Bold),
		Pattern: color.New(color.FgGreen, color.Bold),
		Label:   color.New(color.FgCyan),
	}
}

// SetColor enables or disables colors globally.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

func (s *Style) path(p string) string { return s.Path.Sprint(p) }
func (s *Style) line(n int) string    { return s.Line.Sprint(strconv.Itoa(n)) }
