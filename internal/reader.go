package internal

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const bytesPerMB = 1024 * 1024

// source is something that can be scanned: a file on disk or an archive member.
// open may be called twice when the content turns out to be binary.
type source struct {
	name string
	size int64
	open func() (io.ReadCloser, error)
}

// scanSource runs the line scan over src. The tally grows once the file reaches a
// terminal state (done, skipped for size, cancelled); an I/O error leaves it alone.
func (s *Scanner) scanSource(src source) error {
	if s.spec.MaxSizeMB > 0 && src.size/bytesPerMB > int64(s.spec.MaxSizeMB) {
		s.diag.info(src.name, fmt.Sprintf("File exceeds %d MB, skipping", s.spec.MaxSizeMB))
		s.counts.Analyzed++
		return nil
	}

	rc, err := src.open()
	if err != nil {
		return fmt.Errorf("open %s: %w", src.name, err)
	}
	defer rc.Close()

	found, err := s.scanLines(src, rc)
	if err != nil {
		return err
	}
	if !found && !s.cancel.Stopped() {
		s.diag.info(src.name, "No keywords found in the file")
	}
	s.counts.Analyzed++
	return nil
}

// scanLines streams r line by line. On the first line that is not valid UTF-8 the
// whole source is handed to the binary scanner and line mode ends.
func (s *Scanner) scanLines(src source, r io.Reader) (bool, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	lineNum := 0
	found := false

	for {
		if s.cancel.Stopped() {
			return found, nil
		}
		text, err := br.ReadString('\n')
		if len(text) > 0 {
			lineNum++
			line := trimEOL(text)
			if !utf8.ValidString(line) {
				s.diag.warn(src.name, "Invalid UTF-8, switching to binary mode")
				return s.scanBinary(src) || found, nil
			}
			if s.matchLine(src.name, lineNum, line) {
				found = true
			}
		}
		if err != nil {
			if err == io.EOF {
				return found, nil
			}
			return found, fmt.Errorf("read %s: %w", src.name, err)
		}
	}
}

// matchLine counts and reports one text line.
func (s *Scanner) matchLine(name string, lineNum int, line string) bool {
	s.matcher.CountLine(line, s.counts.Keywords)
	fragments := s.matcher.Match(line, s.counts.Regex)
	if len(fragments) == 0 {
		return false
	}
	s.report(name, lineNum, fragments)
	return true
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
