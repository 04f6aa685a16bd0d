// Package output owns the single file every alignment job appends to.
//
// Children receive the handle as stdout, so records reach the file without
// passing through this process; interleaving is left to O_APPEND.
package output

import (
	"os"

	"lastzrun/internal/apperr"
)

// Aggregator is the shared append target.
type Aggregator struct {
	path string
	fh   *os.File
}

// Open creates path if needed and opens it for appending. Existing content
// is kept, as with a shell ">>" redirect.
func Open(path string) (*Aggregator, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, apperr.Input("open output", err)
	}
	return &Aggregator{path: path, fh: fh}, nil
}

func (a *Aggregator) Path() string   { return a.path }
func (a *Aggregator) File() *os.File { return a.fh }

func (a *Aggregator) Close() error {
	if a == nil || a.fh == nil {
		return nil
	}
	err := a.fh.Close()
	a.fh = nil
	return err
}
