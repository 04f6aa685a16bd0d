// internal/fasta/reader_test.go
package fasta

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

const plain = `>seq1 first record
ACGT
>seq2
NNnn

>seq3
ACGTACGT
ACGT
`

func writeGz(t *testing.T, name string, data string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), name)
	fh, err := os.Create(fn)
	require.NoError(t, err)
	gw := gzip.NewWriter(fh)
	_, err = gw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, fh.Close())
	return fn
}

func TestScanIDsGzip(t *testing.T) {
	gzPath := writeGz(t, "test.fa.gz", plain)

	var ids []string
	err := ScanIDs(context.Background(), gzPath, func(id string) error {
		ids = append(ids, id)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"seq1", "seq2", "seq3"}, ids)
}

func TestCountRecordsPlain(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "ref.fa")
	require.NoError(t, os.WriteFile(fn, []byte(plain), 0o644))

	n, err := CountRecords(context.Background(), fn)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestCountRecordsRefusesStdin(t *testing.T) {
	_, err := CountRecords(context.Background(), "-")
	require.ErrorIs(t, err, ErrStdin)
}

func TestScanIDsGzipByMagicWithoutSuffix(t *testing.T) {
	gzPath := writeGz(t, "reference", plain)

	n, err := CountRecords(context.Background(), gzPath)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestScanIDsFromPipe(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs /dev/fd")
	}
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	go func() {
		_, _ = io.WriteString(w, plain)
		_ = w.Close()
	}()

	n, err := CountRecords(context.Background(), fmt.Sprintf("/dev/fd/%d", r.Fd()))
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestScanIDsStopsOnEmitError(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "ref.fa")
	require.NoError(t, os.WriteFile(fn, []byte(plain), 0o644))

	stop := errors.New("stop")
	seen := 0
	err := ScanIDs(context.Background(), fn, func(string) error {
		seen++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, seen)
}

func TestScanIDsCancelled(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "ref.fa")
	require.NoError(t, os.WriteFile(fn, []byte(plain), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CountRecords(ctx, fn)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMissingFile(t *testing.T) {
	_, err := CountRecords(context.Background(), filepath.Join(t.TempDir(), "nope.fa"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
