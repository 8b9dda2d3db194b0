package internal

import (
	"archive/zip"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsArchive(t *testing.T) {
	exts := []string{".zip", ".tar", ".gz", ".bz2", ".xz", ".rar", ".7z", ".zst", ".ZIP"}
	for _, e := range exts {
		assert.True(t, IsArchive("x"+e), "expected archive for %s", e)
	}
	assert.False(t, IsArchive("file.txt"))
}

func TestDepthCount(t *testing.T) {
	assert.Equal(t, 0, depthCount(""))
	assert.Equal(t, 1, depthCount("a"))
	assert.Equal(t, 2, depthCount(filepath.Join("a", "b")))
}

func TestWalkWithDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.txt"), "x")
	writeFile(t, filepath.Join(dir, "a", "b", "c.txt"), "x")

	collect := func(depth int) []string {
		var seen []string
		err := WalkWithDepth(dir, depth, func(path string, d iofs.DirEntry, err error) error {
			if err == nil && !d.IsDir() {
				seen = append(seen, filepath.Base(path))
			}
			return nil
		})
		require.NoError(t, err)
		return seen
	}

	assert.Equal(t, []string{"top.txt"}, collect(1))
	assert.ElementsMatch(t, []string{"c.txt", "top.txt"}, collect(0))
}

// buildTree creates a small tree:
//
//	a.txt        foo
//	b.MD         foo foo
//	c.log        foo   (builtin omit)
//	d.TMP        foo   (builtin omit)
//	e.bin        foo   (user omit)
//	.hidden      foo   (no extension)
//	nested/f.txt id=1 barfoo
func buildTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "foo\n")
	writeFile(t, filepath.Join(dir, "b.MD"), "foo foo\n")
	writeFile(t, filepath.Join(dir, "c.log"), "foo\n")
	writeFile(t, filepath.Join(dir, "d.TMP"), "foo\n")
	writeFile(t, filepath.Join(dir, "e.bin"), "foo\n")
	writeFile(t, filepath.Join(dir, ".hidden"), "foo\n")
	writeFile(t, filepath.Join(dir, "nested", "f.txt"), "id=1 barfoo\n")
	return dir
}

func treeSpec() *SearchSpec {
	spec := &SearchSpec{Keywords: []string{"foo"}, Omit: []string{".BIN"}}
	spec.Patterns, _ = CompilePatterns([]string{`id=\d+`})
	spec.Prepare()
	return spec
}

func TestScanRoot_Directory(t *testing.T) {
	dir := buildTree(t)
	sc, out := newTestScanner(treeSpec(), nil)

	require.NoError(t, sc.ScanRoot(dir))

	c := sc.Counts()
	assert.Equal(t, 4, c.Analyzed, "a.txt b.MD .hidden nested/f.txt")
	assert.Equal(t, 4, c.Keywords["foo"])
	assert.Equal(t, []int{1}, c.Regex)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 4)
	assert.NotContains(t, out.String(), "c.log")
	assert.NotContains(t, out.String(), "e.bin")
	assert.Contains(t, out.String(), filepath.Join(dir, "nested", "f.txt")+":1 id=1")
}

func TestScanRoot_Idempotent(t *testing.T) {
	dir := buildTree(t)
	first, out1 := newTestScanner(treeSpec(), nil)
	second, out2 := newTestScanner(treeSpec(), nil)

	require.NoError(t, first.ScanRoot(dir))
	require.NoError(t, second.ScanRoot(dir))

	assert.Equal(t, first.Counts(), second.Counts())
	assert.Equal(t, out1.String(), out2.String())
}

func TestScanRoot_CancelledBeforeStart(t *testing.T) {
	dir := buildTree(t)
	cancel := NewCancellation()
	cancel.Stop()
	sc, out := newTestScanner(treeSpec(), cancel)

	require.NoError(t, sc.ScanRoot(dir))
	assert.Equal(t, 0, sc.Counts().Analyzed)
	assert.Empty(t, out.String())
	assert.True(t, sc.Interrupted())

	require.NoError(t, sc.ScanRoot(filepath.Join(dir, "a.txt")))
	assert.Equal(t, 0, sc.Counts().Analyzed)
}

func TestScanRoot_StopsBetweenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "1.txt"), "foo\n")
	writeFile(t, filepath.Join(dir, "2.txt"), "foo\n")
	writeFile(t, filepath.Join(dir, "3.txt"), "foo\n")

	cancel := NewCancellation()
	out := &stopOnWrite{c: cancel}
	sc := NewScanner(newSpec([]string{"foo"}), out, cancel, nil)

	require.NoError(t, sc.ScanRoot(dir))
	assert.Equal(t, 1, sc.Counts().Analyzed)
	assert.Equal(t, filepath.Join(dir, "1.txt")+":1 foo\n", out.String())
}

func TestScanRoot_SingleFileIgnoresOmit(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "app.log"), "foo\n")
	sc, _ := newTestScanner(newSpec([]string{"foo"}), nil)

	require.NoError(t, sc.ScanRoot(path))
	assert.Equal(t, 1, sc.Counts().Analyzed)
}

func TestScanRoot_MissingRoot(t *testing.T) {
	sc, _ := newTestScanner(newSpec([]string{"foo"}), nil)
	err := sc.ScanRoot(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanRoot_Symlinks(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, filepath.Join(t.TempDir(), "target.txt"), "foo\n")
	if err := os.Symlink(target, filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	sc, _ := newTestScanner(newSpec([]string{"foo"}), nil)
	require.NoError(t, sc.ScanRoot(dir))
	assert.Equal(t, 0, sc.Counts().Analyzed, "symlinks are skipped by default")

	spec := newSpec([]string{"foo"})
	spec.FollowSymlinks = true
	sc, _ = newTestScanner(spec, nil)
	require.NoError(t, sc.ScanRoot(dir))
	assert.Equal(t, 1, sc.Counts().Analyzed)
}

func TestScanRoot_SymlinkedRootDirectory(t *testing.T) {
	target := t.TempDir()
	writeFile(t, filepath.Join(target, "a.txt"), "foo\n")
	writeFile(t, filepath.Join(target, "sub", "b.txt"), "no match\n")
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	sc, out := newTestScanner(newSpec([]string{"foo"}), nil)
	require.NoError(t, sc.ScanRoot(link))

	assert.Equal(t, 2, sc.Counts().Analyzed)
	assert.Equal(t, 1, sc.Counts().Keywords["foo"])
	assert.Equal(t, filepath.Join(link, "a.txt")+":1 foo\n", out.String(), "reported under the given root")
}

func TestScanRoot_ExcludedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "foo\n")
	report := writeFile(t, filepath.Join(dir, "report.txt"), "foo\n")
	info, err := os.Stat(report)
	require.NoError(t, err)

	sc, out := newTestScanner(newSpec([]string{"foo"}), nil)
	sc.Exclude(info)
	require.NoError(t, sc.ScanRoot(dir))

	assert.Equal(t, 1, sc.Counts().Analyzed)
	assert.NotContains(t, out.String(), "report.txt")
}

func TestScanRoot_Archive(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "test.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w1, _ := zw.Create("a.txt")
	io.WriteString(w1, "foo\nbar1\n")
	w2, _ := zw.Create("b.log")
	io.WriteString(w2, "foo\n")
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	// without --archives the zip is just another (binary) file
	sc, _ := newTestScanner(newSpec([]string{"foo"}), nil)
	require.NoError(t, sc.ScanRoot(dir))
	assert.Equal(t, 1, sc.Counts().Analyzed)

	spec := newSpec([]string{"foo"}, `bar\d`)
	spec.Archives = true
	sc, out := newTestScanner(spec, nil)
	require.NoError(t, sc.ScanRoot(dir))

	assert.Equal(t, 1, sc.Counts().Analyzed, "b.log is omitted inside the archive too")
	assert.Equal(t, 1, sc.Counts().Keywords["foo"])
	assert.Equal(t, []int{1}, sc.Counts().Regex)
	member := filepath.Join(zipPath, "a.txt")
	assert.Equal(t, member+":1 foo\n"+member+":2 bar1\n", out.String())
}
