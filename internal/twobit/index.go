// Package twobit reads the sequence index of UCSC .2bit archives.
//
// Only the header and the name/offset index are decoded; sequence data is
// left to the aligner, which addresses it as <archive>/<name>.
package twobit

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const signature uint32 = 0x1A412743

// ErrNotTwoBit is returned when the file signature does not match.
var ErrNotTwoBit = errors.New("twobit: bad signature")

// Entry is one index record.
type Entry struct {
	Name   string
	Offset uint64
}

// Index is the decoded header and index of an archive.
type Index struct {
	Version uint32
	Entries []Entry
}

// Names returns the sequence names in index order.
func (ix *Index) Names() []string {
	names := make([]string, len(ix.Entries))
	for i, e := range ix.Entries {
		names[i] = e.Name
	}
	return names
}

// ReadIndex decodes the header and index from r. Both byte orders are
// accepted; version 1 archives use 64-bit offsets.
func ReadIndex(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)

	var hdr [16]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("twobit: read header: %w", err)
	}

	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(hdr[0:4]) == signature:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(hdr[0:4]) == signature:
		order = binary.BigEndian
	default:
		return nil, ErrNotTwoBit
	}

	ix := &Index{Version: order.Uint32(hdr[4:8])}
	if ix.Version > 1 {
		return nil, fmt.Errorf("twobit: unsupported version %d", ix.Version)
	}
	count := order.Uint32(hdr[8:12])

	ix.Entries = make([]Entry, 0, min(count, 1<<16))
	offBuf := make([]byte, 8)
	for i := uint32(0); i < count; i++ {
		n, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("twobit: index entry %d: %w", i, eofIsUnexpected(err))
		}
		name := make([]byte, n)
		if _, err := io.ReadFull(br, name); err != nil {
			return nil, fmt.Errorf("twobit: index entry %d name: %w", i, eofIsUnexpected(err))
		}

		var off uint64
		if ix.Version == 1 {
			if _, err := io.ReadFull(br, offBuf); err != nil {
				return nil, fmt.Errorf("twobit: index entry %d offset: %w", i, eofIsUnexpected(err))
			}
			off = order.Uint64(offBuf)
		} else {
			if _, err := io.ReadFull(br, offBuf[:4]); err != nil {
				return nil, fmt.Errorf("twobit: index entry %d offset: %w", i, eofIsUnexpected(err))
			}
			off = uint64(order.Uint32(offBuf[:4]))
		}
		ix.Entries = append(ix.Entries, Entry{Name: string(name), Offset: off})
	}
	return ix, nil
}

// OpenIndex reads the index of the archive at path.
func OpenIndex(path string) (*Index, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	ix, err := ReadIndex(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ix, nil
}

func eofIsUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
