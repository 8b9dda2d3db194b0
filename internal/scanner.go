package internal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Scanner runs one search over a file or directory tree.
// It is single-goroutine: counts are mutated without locks and only the
// Cancellation may be touched from elsewhere.
type Scanner struct {
	spec    *SearchSpec
	matcher *Matcher
	style   *Style
	out     io.Writer
	cancel  *Cancellation
	counts  *Counts
	diag    diag
	exclude []os.FileInfo
}

// NewScanner prepares a scan of spec writing report lines to out.
// spec must already be prepared. cancel may be nil.
func NewScanner(spec *SearchSpec, out io.Writer, cancel *Cancellation, style *Style) *Scanner {
	if style == nil {
		style = DefaultStyle()
	}
	return &Scanner{
		spec:    spec,
		matcher: NewMatcher(spec.Keywords, spec.Patterns, style),
		style:   style,
		out:     out,
		cancel:  cancel,
		counts:  NewCounts(spec),
		diag:    diag{show: spec.Show},
	}
}

// Counts returns the live totals.
func (s *Scanner) Counts() *Counts { return s.counts }

// Exclude keeps the file described by info out of the scan, e.g. the report file
// when it lives inside the searched tree.
func (s *Scanner) Exclude(info os.FileInfo) {
	if info != nil {
		s.exclude = append(s.exclude, info)
	}
}

// Interrupted reports whether the scan was stopped before completion.
func (s *Scanner) Interrupted() bool { return s.cancel.Stopped() }

// ScanRoot scans root, a regular file or a directory. Only a failure on root itself
// is returned; errors on files below a directory root are logged and skipped.
func (s *Scanner) ScanRoot(root string) error {
	if s.cancel.Stopped() {
		return nil
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if info.IsDir() {
		return s.walk(root)
	}
	if s.spec.Archives && IsArchive(root) {
		return s.scanArchive(root, root)
	}
	return s.ScanFile(root)
}

// ScanFile scans a single file regardless of its extension.
func (s *Scanner) ScanFile(path string) error {
	return s.scanFile(path, path)
}

func (s *Scanner) scanFile(path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return s.scanSource(source{
		name: name,
		size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	})
}

// report writes one match line: "path:line fragments" or "path: fragments" when
// the position is unknown (lineNum == 0).
func (s *Scanner) report(name string, lineNum int, fragments []string) {
	var err error
	if lineNum > 0 {
		_, err = fmt.Fprintf(s.out, "%s:%s %s\n", s.style.path(name), s.style.line(lineNum), strings.Join(fragments, ", "))
	} else {
		_, err = fmt.Fprintf(s.out, "%s: %s\n", s.style.path(name), strings.Join(fragments, ", "))
	}
	if err != nil {
		logrus.WithError(err).WithField("file", name).Error("write report line")
	}
}
