// Package loc reads Galaxy-style .loc registries that map a cached
// reference key to an on-disk file.
package loc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SeqsFile is the registry consulted for cached lastz references.
const SeqsFile = "lastz_seqs.loc"

// ErrNotFound is returned when no row matches the requested key.
var ErrNotFound = errors.New("loc: reference not registered")

// Entry is one registry row: value <TAB> name <TAB> path.
type Entry struct {
	Value string
	Name  string
	Path  string
}

// Parse reads tab-separated rows, skipping blank lines and '#' comments.
// Rows with fewer than three columns are rejected.
func Parse(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var out []Entry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loc: %w", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 3 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("loc: line %d: want 3 columns, got %d", line, len(rec))
		}
		out = append(out, Entry{
			Value: strings.TrimSpace(rec[0]),
			Name:  strings.TrimSpace(rec[1]),
			Path:  strings.TrimSpace(rec[2]),
		})
	}
	return out, nil
}

// Lookup returns the path registered for key in dir/lastz_seqs.loc.
func Lookup(dir, key string) (string, error) {
	fn := filepath.Join(dir, SeqsFile)
	fh, err := os.Open(fn)
	if err != nil {
		return "", err
	}
	defer fh.Close()

	entries, err := Parse(fh)
	if err != nil {
		return "", fmt.Errorf("%s: %w", fn, err)
	}
	for _, e := range entries {
		if e.Value == key {
			return e.Path, nil
		}
	}
	return "", fmt.Errorf("%q in %s: %w", key, fn, ErrNotFound)
}
