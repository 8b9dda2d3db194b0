package internal

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoSearchTerms is returned when neither keywords nor patterns were given.
var ErrNoSearchTerms = errors.New("nothing to search for: give a keyword, --find or --regex")

// builtinOmit are extensions that are never scanned.
var builtinOmit = map[string]struct{}{"log": {}, "tmp": {}}

// SearchSpec is the immutable input of a scan.
type SearchSpec struct {
	Keywords       []string
	Patterns       []*regexp.Regexp
	MaxSizeMB      int      // 0 - unlimited
	Omit           []string // extensions without dot, any case
	Show           bool     // promote diagnostics
	Archives       bool     // descend into archives
	FollowSymlinks bool     // scan symlinks that point at regular files
	MaxDepth       int      // 0 - unlimited

	omitMap map[string]struct{}
}

// Validate checks invariants.
func (s *SearchSpec) Validate() error {
	if len(nonEmpty(s.Keywords)) == 0 && len(s.Patterns) == 0 {
		return ErrNoSearchTerms
	}
	if s.MaxSizeMB < 0 {
		return fmt.Errorf("maxsize must be >= 0, got %d", s.MaxSizeMB)
	}
	if s.MaxDepth < 0 {
		return fmt.Errorf("depth must be >= 0, got %d", s.MaxDepth)
	}
	return nil
}

// Prepare drops empty keywords and builds the omit lookup. Call once before scanning.
func (s *SearchSpec) Prepare() {
	s.Keywords = nonEmpty(s.Keywords)
	s.Omit = NormalizeExts(s.Omit)
	s.omitMap = toSet(s.Omit)
}

// omitReason returns a non-empty reason when files with ext must be skipped.
func (s *SearchSpec) omitReason(ext string) string {
	if ext == "" {
		return ""
	}
	ext = strings.ToLower(ext)
	if _, ok := builtinOmit[ext]; ok {
		return "Skipping file with omitted extension"
	}
	if _, ok := s.omitMap[ext]; ok {
		return "Skipping file with user-omitted extension"
	}
	return ""
}

// SplitList splits comma separated values, trimming blanks.
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// NormalizeExts turns ".TXT", "txt" and "txt,md" into lowercase extensions without dot.
func NormalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range SplitList(exts...) {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

// fileExt returns the extension after the last dot of the base name.
// Dotfiles like ".bashrc" have none.
func fileExt(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

func nonEmpty(s []string) []string {
	out := make([]string, 0, len(s))
	for _, x := range s {
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}

func toSet(s []string) map[string]struct{} {
	if len(s) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(s))
	for _, x := range s {
		m[x] = struct{}{}
	}
	return m
}
