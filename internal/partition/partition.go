// Package partition decides the independent units of alignment work: the
// whole reference for a flat (history) file, or one unit per sequence of a
// cached 2bit archive.
package partition

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"lastzrun/internal/apperr"
	"lastzrun/internal/fasta"
	"lastzrun/internal/loc"
	"lastzrun/internal/twobit"
)

// Source tells where the reference comes from.
type Source string

const (
	// SourceHistory is a flat sequence file, always aligned as one unit.
	SourceHistory Source = "history"
	// SourceCached is an indexed multi-sequence 2bit archive.
	SourceCached Source = "cached"
)

func ParseSource(s string) (Source, error) {
	switch src := Source(strings.TrimSpace(s)); src {
	case SourceHistory, SourceCached:
		return src, nil
	default:
		return "", fmt.Errorf("invalid reference source %q (want history | cached)", s)
	}
}

// Partition identifies one unit of work. The zero value is the whole
// reference; otherwise Key names a sequence inside the cached archive.
type Partition struct {
	Key string
}

func Whole() Partition            { return Partition{} }
func Named(key string) Partition  { return Partition{Key: key} }
func (p Partition) IsWhole() bool { return p.Key == "" }

func (p Partition) String() string {
	if p.IsWhole() {
		return "<whole>"
	}
	return p.Key
}

// SequenceIndex is the only capability needed from an archive reader.
type SequenceIndex interface {
	Names() []string
}

// IndexOpener opens the archive at path.
type IndexOpener func(path string) (SequenceIndex, error)

func openTwoBit(path string) (SequenceIndex, error) {
	ix, err := twobit.OpenIndex(path)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// Request describes the reference to partition.
type Request struct {
	Source        Source
	ReferencePath string // file path, or a loc key for cached references
	DeclaredCount int    // --ref-sequences; informational only
	IndexDir      string // directory holding lastz_seqs.loc
}

// Plan is the enumeration result. ReferencePath is the resolved archive
// path that commands must address.
type Plan struct {
	ReferencePath string
	Partitions    []Partition
}

type Enumerator struct {
	OpenIndex IndexOpener
	Logger    *zap.Logger
}

// New returns an Enumerator backed by the 2bit index reader.
func New(logger *zap.Logger) *Enumerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enumerator{OpenIndex: openTwoBit, Logger: logger}
}

// Enumerate yields the partitions for req in deterministic order.
func (e *Enumerator) Enumerate(ctx context.Context, req Request) (Plan, error) {
	switch req.Source {
	case SourceHistory:
		e.inspectHistory(ctx, req)
		return Plan{ReferencePath: req.ReferencePath, Partitions: []Partition{Whole()}}, nil
	case SourceCached:
		return e.enumerateCached(req)
	default:
		return Plan{}, apperr.Configurationf("partition", "invalid reference source %q", req.Source)
	}
}

// inspectHistory warns when a flat reference holds several records; they
// are still aligned as one unit.
func (e *Enumerator) inspectHistory(ctx context.Context, req Request) {
	n, err := fasta.CountRecords(ctx, req.ReferencePath)
	if errors.Is(err, fasta.ErrStdin) {
		e.Logger.Debug("history reference is stdin; not inspected")
		return
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.Logger.Warn("could not inspect history reference",
				zap.String("reference", req.ReferencePath), zap.Error(err))
		}
		return
	}
	if n > 1 {
		e.Logger.Warn("history reference holds several sequences; aligning whole file as one partition",
			zap.String("reference", req.ReferencePath), zap.Int("sequences", n))
	}
	if req.DeclaredCount > 0 && req.DeclaredCount != n {
		e.Logger.Warn("declared sequence count differs from reference",
			zap.Int("declared", req.DeclaredCount), zap.Int("found", n))
	}
}

func (e *Enumerator) enumerateCached(req Request) (Plan, error) {
	path, err := e.resolveArchive(req)
	if err != nil {
		return Plan{}, err
	}

	ix, err := e.OpenIndex(path)
	if err != nil {
		return Plan{}, apperr.Input("open cached reference", err)
	}
	names := ix.Names()
	if len(names) == 0 {
		return Plan{}, apperr.Input("open cached reference", fmt.Errorf("%s: archive holds no sequences", path))
	}

	parts := make([]Partition, 0, len(names))
	for _, n := range names {
		parts = append(parts, Named(n))
	}
	e.Logger.Debug("enumerated cached reference",
		zap.String("reference", path), zap.Int("partitions", len(parts)))
	return Plan{ReferencePath: path, Partitions: parts}, nil
}

// resolveArchive prefers an existing file at ReferencePath and falls back
// to the loc registry in IndexDir.
func (e *Enumerator) resolveArchive(req Request) (string, error) {
	if fi, err := os.Stat(req.ReferencePath); err == nil && !fi.IsDir() {
		return req.ReferencePath, nil
	}
	if req.IndexDir == "" {
		return "", apperr.Input("resolve cached reference",
			fmt.Errorf("%s: no such file and no --seqs-loc-dir to look it up", req.ReferencePath))
	}
	path, err := loc.Lookup(req.IndexDir, req.ReferencePath)
	if err != nil {
		return "", apperr.Input("resolve cached reference", err)
	}
	e.Logger.Debug("resolved cached reference via loc",
		zap.String("key", req.ReferencePath), zap.String("path", path))
	return path, nil
}
