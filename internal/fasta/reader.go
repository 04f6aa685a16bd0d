// internal/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

// ScanIDs calls emit with the ID of every record in the FASTA file at path,
// in file order. Sequence lines are skipped without being buffered.
// Cancellation via ctx is checked between lines; a non-nil error from emit
// stops the scan and is returned.
func ScanIDs(ctx context.Context, path string, emit func(id string) error) error {
	rc, err := openReader(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	const maxLine = 64 * 1024 * 1024 // allow very long single-line sequences (64 MiB)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := sc.Bytes()
		if len(line) == 0 || line[0] != '>' {
			continue
		}
		if err := emit(parseHeaderID(line[1:])); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return nil
}

// CountRecords returns the number of records in the FASTA file at path.
func CountRecords(ctx context.Context, path string) (int, error) {
	n := 0
	err := ScanIDs(ctx, path, func(string) error {
		n++
		return nil
	})
	return n, err
}

// parseHeaderID returns the first whitespace-delimited token of a header.
func parseHeaderID(h []byte) string {
	if f := bytes.Fields(h); len(f) > 0 {
		return string(f[0])
	}
	return ""
}
