package internal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrInvalidPattern is returned when a user regex does not compile.
var ErrInvalidPattern = errors.New("invalid regex")

// CompilePatterns compiles every expression, failing on the first bad one.
func CompilePatterns(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// LoadPatterns reads a pattern file.
// Lines:
//
//	password
//	re:token-\d+
//	# comment
//
// Plain lines become keywords, "re:" lines become regex sources (not yet compiled).
func LoadPatterns(path string) (keywords, exprs []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "re:") {
			exprs = append(exprs, line[3:])
			continue
		}
		keywords = append(keywords, line)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading pattern file: %w", err)
	}
	logrus.Debugf("Loaded %d keywords and %d patterns from %s", len(keywords), len(exprs), path)
	return keywords, exprs, nil
}
