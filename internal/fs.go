package internal

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/sirupsen/logrus"
)

const maxArchiveFiles = 10000 // zip-bomb protection

var archiveExt = map[string]struct{}{
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {},
	".rar": {}, ".br": {}, ".lz4": {}, ".lz": {}, ".mz": {},
	".sz": {}, ".s2": {}, ".zz": {}, ".zst": {}, ".7z": {},
}

// IsArchive by extension. O(1) map lookup
func IsArchive(path string) bool {
	_, ok := archiveExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// WalkWithDepth uses WalkDir and cuts branches deeper than maxDepth (0 - unlimited).
func WalkWithDepth(root string, maxDepth int, fn iofs.WalkDirFunc) error {
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err == nil && maxDepth > 0 {
			rel, _ := filepath.Rel(root, path)
			if rel != "." && depthCount(rel) > maxDepth {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		return fn(path, d, err)
	})
}

func depthCount(rel string) int {
	if rel == "" {
		return 0
	}
	return strings.Count(rel, string(os.PathSeparator)) + 1
}

// walk visits every regular file under root in lexical order. A symlinked root is
// resolved first; files are still reported under the path the user gave.
func (s *Scanner) walk(root string) error {
	base, err := resolveRoot(root)
	if err != nil {
		return err
	}
	return WalkWithDepth(base, s.spec.MaxDepth, func(path string, d iofs.DirEntry, err error) error {
		name := displayName(root, base, path)
		if err != nil {
			// unreadable entries are skipped, never fatal
			s.diag.err(name, err, "Cannot access path")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if s.cancel.Stopped() {
			return filepath.SkipAll
		}
		if !s.isRegular(path, d) {
			return nil
		}
		s.visit(path, name)
		return nil
	})
}

// resolveRoot follows root when it is a symlink, so WalkDir descends into the target.
func resolveRoot(root string) (string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", root, err)
	}
	if info.Mode()&iofs.ModeSymlink == 0 {
		return root, nil
	}
	base, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	return base, nil
}

// displayName maps path below the resolved base back under root.
func displayName(root, base, path string) string {
	if root == base {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.Join(root, rel)
}

// isRegular filters out devices, sockets and, unless FollowSymlinks is set, symlinks.
// Symlinked directories are never descended into.
func (s *Scanner) isRegular(path string, d iofs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&iofs.ModeSymlink == 0 || !s.spec.FollowSymlinks {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		s.diag.err(path, err, "Broken symlink")
		return false
	}
	return info.Mode().IsRegular()
}

// visit applies the extension filter and scans one candidate file. path is
// opened, name is what gets reported.
func (s *Scanner) visit(path, name string) {
	if reason := s.spec.omitReason(fileExt(path)); reason != "" {
		s.diag.info(name, reason)
		return
	}
	if s.excluded(path) {
		s.diag.info(name, "Skipping the output file")
		return
	}
	var err error
	if s.spec.Archives && IsArchive(path) {
		err = s.scanArchive(path, name)
	} else {
		err = s.scanFile(path, name)
	}
	if err != nil {
		s.diag.err(name, err, "Error with file")
	}
}

// excluded reports whether path is one of the files passed to Exclude.
func (s *Scanner) excluded(path string) bool {
	if len(s.exclude) == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	for _, ex := range s.exclude {
		if os.SameFile(info, ex) {
			return true
		}
	}
	return false
}

// scanArchive scans the members of an archive as separate files named
// "<name>/<member>". Members go through the same extension filter.
func (s *Scanner) scanArchive(path, display string) error {
	fsys, err := archives.FileSystem(context.Background(), path, nil)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer closer.Close()
	}

	count := 0
	return iofs.WalkDir(fsys, ".", func(inner string, d iofs.DirEntry, err error) error {
		if s.cancel.Stopped() {
			return iofs.SkipAll
		}
		if err != nil {
			s.diag.err(path, err, "Cannot read archive entry")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if count >= maxArchiveFiles {
			logrus.Warnf("Archive %s truncated: too many files (>= %d)", path, maxArchiveFiles)
			return iofs.SkipAll
		}
		name := filepath.Join(display, filepath.FromSlash(inner))
		if reason := s.spec.omitReason(fileExt(inner)); reason != "" {
			s.diag.info(name, reason)
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.diag.err(name, err, "Cannot stat archive entry")
			return nil
		}
		count++
		src := source{
			name: name,
			size: info.Size(),
			open: func() (io.ReadCloser, error) { return fsys.Open(inner) },
		}
		if err := s.scanSource(src); err != nil {
			s.diag.err(name, err, "Error with file")
		}
		return nil
	})
}
