package internal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"
)

// ErrOutputLocked is returned when another run writes to the same output file.
var ErrOutputLocked = errors.New("output file is locked by another run")

type flusher interface {
	Flush() error
}

// MultiSink writes every report line to all registered destinations.
type MultiSink struct {
	writers []io.Writer
}

func NewMultiSink(ws ...io.Writer) *MultiSink {
	return &MultiSink{writers: ws}
}

// Add registers another destination.
func (m *MultiSink) Add(w io.Writer) {
	m.writers = append(m.writers, w)
}

// Write writes all of p to each destination in order and fails on the first error.
func (m *MultiSink) Write(p []byte) (int, error) {
	for _, w := range m.writers {
		n, err := w.Write(p)
		if err != nil {
			return 0, err
		}
		if n != len(p) {
			return 0, io.ErrShortWrite
		}
	}
	return len(p), nil
}

// Flush flushes every destination that buffers.
func (m *MultiSink) Flush() error {
	for _, w := range m.writers {
		if f, ok := w.(flusher); ok {
			if err := f.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// OutputFile is a buffered report file guarded by an exclusive lock on the file itself.
type OutputFile struct {
	f    *os.File
	buf  *bufio.Writer
	lock *flock.Flock
}

// OpenOutputFile locks path, then truncates or creates it for writing. Another run
// holding the lock gets ErrOutputLocked and the file is left untouched.
func OpenOutputFile(path string) (*OutputFile, error) {
	lock := flock.New(path, flock.SetPermissions(0o644))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, path)
	}
	f, err := os.Create(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &OutputFile{f: f, buf: bufio.NewWriterSize(f, 64*1024), lock: lock}, nil
}

func (o *OutputFile) Write(p []byte) (int, error) { return o.buf.Write(p) }

func (o *OutputFile) Flush() error { return o.buf.Flush() }

// Stat describes the file on disk.
func (o *OutputFile) Stat() (os.FileInfo, error) { return o.f.Stat() }

// Close flushes, closes the file and releases the lock.
func (o *OutputFile) Close() error {
	err := o.buf.Flush()
	if cerr := o.f.Close(); err == nil {
		err = cerr
	}
	if uerr := o.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}
