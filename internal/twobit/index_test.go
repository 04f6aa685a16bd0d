package twobit

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeIndex writes a header and index for names; sequence records are
// not needed by ReadIndex.
func encodeIndex(t *testing.T, order binary.ByteOrder, version uint32, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := func(v any) { require.NoError(t, binary.Write(&buf, order, v)) }

	w(signature)
	w(version)
	w(uint32(len(names)))
	w(uint32(0))
	for i, n := range names {
		buf.WriteByte(byte(len(n)))
		buf.WriteString(n)
		if version == 1 {
			w(uint64(1000 + i))
		} else {
			w(uint32(1000 + i))
		}
	}
	return buf.Bytes()
}

func TestReadIndexLittleEndian(t *testing.T) {
	data := encodeIndex(t, binary.LittleEndian, 0, "chr1", "chr2", "chrM")

	ix, err := ReadIndex(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, []string{"chr1", "chr2", "chrM"}, ix.Names())
	require.Equal(t, uint64(1001), ix.Entries[1].Offset)
}

func TestReadIndexBigEndianV1(t *testing.T) {
	data := encodeIndex(t, binary.BigEndian, 1, "scaffold_1", "scaffold_2")

	ix, err := ReadIndex(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, uint32(1), ix.Version)
	require.Equal(t, []string{"scaffold_1", "scaffold_2"}, ix.Names())
}

func TestReadIndexErrors(t *testing.T) {
	_, err := ReadIndex(bytes.NewReader([]byte(">chr1\nACGT\n............")))
	require.ErrorIs(t, err, ErrNotTwoBit)

	full := encodeIndex(t, binary.LittleEndian, 0, "chr1", "chr2")
	_, err = ReadIndex(bytes.NewReader(full[:len(full)-3]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadIndex(bytes.NewReader(full[:8]))
	require.Error(t, err)
}

func TestOpenIndex(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "ref.2bit")
	require.NoError(t, os.WriteFile(fn, encodeIndex(t, binary.LittleEndian, 0, "chrX"), 0o644))

	ix, err := OpenIndex(fn)
	require.NoError(t, err)
	require.Equal(t, []string{"chrX"}, ix.Names())

	_, err = OpenIndex(filepath.Join(t.TempDir(), "missing.2bit"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
