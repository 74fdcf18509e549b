// Package logging tees the standard logger to an append-only file so
// headless runs can be inspected after the fact.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

type File struct {
	f    *os.File
	prev io.Writer
}

// Tee opens path for appending and points the standard logger at both the
// file and w. Close restores the previous writer.
func Tee(path string, w io.Writer) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	lf := &File{f: f, prev: log.Writer()}
	log.SetOutput(io.MultiWriter(w, f))
	return lf, nil
}

func (l *File) Path() string { return l.f.Name() }

func (l *File) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	log.SetOutput(l.prev)
	return l.f.Close()
}
