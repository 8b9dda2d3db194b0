package internal

import (
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// printableRun is a run of at least 4 visible ASCII characters (space to tilde).
var printableRun = regexp.MustCompile(`[ -~]{4,}`)

// printableRuns decodes data lossily and returns its printable runs in order.
func printableRuns(data []byte) []string {
	text := strings.ToValidUTF8(string(data), "\uFFFD")
	return printableRun.FindAllString(text, -1)
}

// scanBinary matches every printable run of src as if it were a line. Keywords are
// counted per occurrence here, not per run. A read failure is logged and reported
// as no match.
func (s *Scanner) scanBinary(src source) bool {
	rc, err := src.open()
	if err != nil {
		logrus.WithFields(logrus.Fields{"file": src.name, "err": err}).Error("Error reading binary file")
		return false
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		logrus.WithFields(logrus.Fields{"file": src.name, "err": err}).Error("Error reading binary file")
		return false
	}

	found := false
	for _, run := range printableRuns(data) {
		if s.cancel.Stopped() {
			break
		}
		s.matcher.CountRun(run, s.counts.Keywords)
		fragments := s.matcher.Match(run, s.counts.Regex)
		if len(fragments) == 0 {
			continue
		}
		s.report(src.name, 0, fragments)
		found = true
	}
	return found
}
