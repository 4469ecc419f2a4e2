// Package batch copies a set of files concurrently into a Sink.
package batch

import (
	"io"
	"io/fs"
	"time"
)

// Entry describes one regular file in a source tree.
type Entry struct {
	// Path is slash-separated and relative to the source root.
	Path    string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
}

// Sink receives copied file content.
//
// Implementations decide where content lands and may skip entries that are
// already present.
type Sink interface {
	// ShouldProcess returns false if this entry should be skipped.
	ShouldProcess(entry *Entry) bool

	// Writer returns a writer for the entry's content. The caller writes the
	// content, then calls Commit on success or Discard on any error.
	Writer(entry *Entry) (Committer, error)
}

// Committer is a writer that can be committed or discarded.
type Committer interface {
	io.Writer

	// Commit makes the written content visible at its final path.
	Commit() error

	// Discard aborts the write and removes any temporary file.
	Discard() error
}
