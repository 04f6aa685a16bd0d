package appcore

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lastzrun/internal/apperr"
	"lastzrun/internal/cli"
	"lastzrun/internal/partition"
)

func writeTwoBit(t *testing.T, names ...string) string {
	t.Helper()
	buf := binary.LittleEndian.AppendUint32(nil, 0x1A412743)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(names)))
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	for _, n := range names {
		buf = append(buf, byte(len(n)))
		buf = append(buf, n...)
		buf = binary.LittleEndian.AppendUint32(buf, 0)
	}
	path := filepath.Join(t.TempDir(), "hg18.2bit")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func options(ref string) cli.Options {
	return cli.Options{
		RefSource:    string(partition.SourceCached),
		Reference:    ref,
		Query:        "reads.fa",
		SourceSelect: "preset",
		Preset:       "yasra95short",
		IdentityMin:  "90",
		IdentityMax:  "100",
		Coverage:     "50",
		Format:       "sam",
		Output:       "/tmp/out.sam",
		Lastz:        "lastz",
		LogLevel:     "none",
		LogFormat:    "text",
	}
}

func TestPlanCachedReference(t *testing.T) {
	ref := writeTwoBit(t, "chr1", "chr2", "chr3")

	cmds, err := Plan(context.Background(), options(ref), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, cmds, 3)

	want := []string{
		"lastz", ref + "/chr2", "reads.fa", "--yasra95short",
		"--ambiguousn", "--nolaj", "--identity=90..100", "--coverage=50", "--format=sam",
	}
	if diff := cmp.Diff(want, cmds[1].Args); diff != "" {
		t.Errorf("argv mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "/tmp/out.sam", cmds[1].OutputPath)
}

func TestPlanHistoryReference(t *testing.T) {
	o := options(filepath.Join(t.TempDir(), "ref.fa"))
	o.RefSource = string(partition.SourceHistory)
	o.RefName = "hg"

	cmds, err := Plan(context.Background(), o, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	require.Equal(t, "hg::"+o.Reference, cmds[0].Args[1])
}

func TestPlanMissingArchiveIsInputError(t *testing.T) {
	_, err := Plan(context.Background(), options("/nope/hg18.2bit"), zap.NewNop())
	require.Equal(t, apperr.KindInput, apperr.KindOf(err))
	require.Equal(t, 2, apperr.ExitCode(err))
}

func TestRunDryRunPrintsCommands(t *testing.T) {
	o := options(writeTwoBit(t, "chr1", "chr2"))
	o.DryRun = true
	o.Output = filepath.Join(t.TempDir(), "never.sam")

	var stdout, stderr bytes.Buffer
	require.NoError(t, Run(context.Background(), o, &stdout, &stderr))

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "/chr1 reads.fa --yasra95short")
	require.True(t, strings.HasSuffix(lines[1], ">> "+o.Output))

	_, err := os.Stat(o.Output)
	require.True(t, os.IsNotExist(err), "dry run must not touch the output file")
}
