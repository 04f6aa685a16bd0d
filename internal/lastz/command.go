// internal/lastz/command.go
package lastz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alessio/shellescape"

	"lastzrun/internal/partition"
)

// Format is the requested output format.
type Format string

const (
	FormatSAM     Format = "sam"
	FormatDiffs   Format = "diffs"
	FormatTabular Format = "tabular"
)

// TabularFields is the fixed column list emitted for FormatTabular, in order.
const TabularFields = "score,name1,strand1,size1,start1,zstart1,end1,length1,text1," +
	"name2,strand2,size2,start2,zstart2,end2,start2+,zstart2+,end2+,length2,text2," +
	"diff,cigar,identity,coverage,gaprate,diagonal,shingle"

// DefaultExecutable is looked up on PATH.
const DefaultExecutable = "lastz"

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimSpace(s)); f {
	case FormatSAM, FormatDiffs, FormatTabular:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format %q (want sam | diffs | tabular)", s)
	}
}

// Token is the value passed to --format. tabular maps onto lastz's
// general format with the fixed field list.
func (f Format) Token() string {
	if f == FormatTabular {
		return "general:" + TabularFields
	}
	return string(f)
}

// FilterOptions are passed to lastz as-is.
type FilterOptions struct {
	IdentityMin string
	IdentityMax string
	Coverage    string
}

type OutputSpec struct {
	Format Format
	Path   string
}

// JobCommand is one fully resolved lastz invocation. Args[0] is the
// executable; stdout is appended to OutputPath.
type JobCommand struct {
	Partition  partition.Partition
	Args       []string
	OutputPath string
}

// String renders the command as a shell line, quoting every token.
func (c JobCommand) String() string {
	s := shellescape.QuoteCommand(c.Args)
	if c.OutputPath != "" {
		s += " >> " + shellescape.Quote(c.OutputPath)
	}
	return s
}

// Builder assembles one JobCommand per partition.
type Builder struct {
	Executable    string
	RefName       string // optional display label; "" or "None" means unset
	ReferencePath string
	QueryPath     string
	Options       []string // output of ResolveOptions
	Filters       FilterOptions
	Output        OutputSpec
}

func (b Builder) Validate() error {
	switch {
	case b.ReferencePath == "":
		return errors.New("reference path is required")
	case b.QueryPath == "":
		return errors.New("query path is required")
	case len(b.Options) == 0:
		return errors.New("alignment options are not resolved")
	}
	if _, err := ParseFormat(string(b.Output.Format)); err != nil {
		return err
	}
	return nil
}

func (b Builder) refLabel() string {
	if b.RefName == "" || b.RefName == "None" {
		return ""
	}
	return b.RefName + "::"
}

func (b Builder) refToken(p partition.Partition) string {
	if p.IsWhole() {
		return b.refLabel() + b.ReferencePath
	}
	return b.refLabel() + b.ReferencePath + "/" + p.Key
}

func (b Builder) queryToken() string {
	if b.Output.Format == FormatDiffs {
		return b.QueryPath + "[fullnames]"
	}
	return b.QueryPath
}

// Build returns the command for partition p.
func (b Builder) Build(p partition.Partition) JobCommand {
	exe := b.Executable
	if exe == "" {
		exe = DefaultExecutable
	}
	args := make([]string, 0, 8+len(b.Options))
	args = append(args, exe, b.refToken(p), b.queryToken())
	args = append(args, b.Options...)
	args = append(args,
		"--ambiguousn",
		"--nolaj",
		fmt.Sprintf("--identity=%s..%s", b.Filters.IdentityMin, b.Filters.IdentityMax),
		"--coverage="+b.Filters.Coverage,
		"--format="+b.Output.Format.Token(),
	)
	return JobCommand{Partition: p, Args: args, OutputPath: b.Output.Path}
}

// BuildAll calls Build once per partition, preserving order.
func (b Builder) BuildAll(parts []partition.Partition) []JobCommand {
	cmds := make([]JobCommand, 0, len(parts))
	for _, p := range parts {
		cmds = append(cmds, b.Build(p))
	}
	return cmds
}
