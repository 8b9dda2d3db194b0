package internal

import (
	"fmt"
	"io"
	"time"
)

// Counts are the totals of one scan. Owned by the Scanner, single goroutine.
type Counts struct {
	Keywords map[string]int // fixed key set, one per keyword
	Regex    []int          // aligned with SearchSpec.Patterns
	Analyzed int
}

// NewCounts creates zeroed counters for spec.
func NewCounts(spec *SearchSpec) *Counts {
	kw := make(map[string]int, len(spec.Keywords))
	for _, k := range spec.Keywords {
		kw[k] = 0
	}
	return &Counts{Keywords: kw, Regex: make([]int, len(spec.Patterns))}
}

// AppStats tracks wall time of a run.
type AppStats struct {
	start time.Time
}

func (s *AppStats) Start() {
	s.start = time.Now()
}

func (s *AppStats) Elapsed() time.Duration {
	return time.Since(s.start)
}

// FormatElapsed renders d rounded to a readable precision.
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Microsecond).String()
	case d < time.Minute:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

// WriteSummary prints the totals in keyword order, then pattern order.
func WriteSummary(w io.Writer, spec *SearchSpec, c *Counts, elapsed time.Duration, interrupted bool, style *Style) error {
	if style == nil {
		style = DefaultStyle()
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if interrupted {
		if _, err := fmt.Fprintln(w, style.Keyword.Sprint("Search interrupted, partial results:")); err != nil {
			return err
		}
	}
	for _, kw := range spec.Keywords {
		if _, err := fmt.Fprintf(w, "%s %q: %d\n", style.Label.Sprint("Keyword"), kw, c.Keywords[kw]); err != nil {
			return err
		}
	}
	for i, re := range spec.Patterns {
		if _, err := fmt.Fprintf(w, "%s %q: %d\n", style.Label.Sprint("Pattern"), re.String(), c.Regex[i]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s %d\n%s %s\n",
		style.Label.Sprint("Files analyzed:"), c.Analyzed,
		style.Label.Sprint("Elapsed:"), FormatElapsed(elapsed))
	return err
}
