// internal/fasta/open.go
package fasta

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"strings"
)

// ErrStdin is returned for "-". A reference read here is only inspected,
// and consuming stdin would leave nothing for the aligner.
var ErrStdin = errors.New("fasta: stdin cannot be inspected")

var gzipMagic = []byte{0x1f, 0x8b}

// refFile is an opened reference, optionally behind a gzip stream.
type refFile struct {
	io.Reader
	gz *gzip.Reader
	fh *os.File
}

func (r *refFile) Close() error {
	var err error
	if r.gz != nil {
		err = r.gz.Close()
	}
	if cerr := r.fh.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// openReader opens path for sequential reading. Gzip is detected from the
// magic bytes, or the .gz suffix, without seeking, so pipes work too.
func openReader(path string) (io.ReadCloser, error) {
	if path == "-" {
		return nil, ErrStdin
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(fh)
	head, _ := br.Peek(len(gzipMagic))
	if !strings.HasSuffix(path, ".gz") && string(head) != string(gzipMagic) {
		return &refFile{Reader: br, fh: fh}, nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		_ = fh.Close()
		return nil, err
	}
	return &refFile{Reader: gz, gz: gz, fh: fh}, nil
}
