// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"lastzrun/internal/apperr"
	"lastzrun/internal/lastz"
	"lastzrun/internal/partition"
)

// Options holds every setting after flags, environment and config file
// have been merged.
type Options struct {
	// Reference
	RefName      string
	RefSource    string
	RefSequences int
	Reference    string
	SeqsLocDir   string

	// Query
	Query string

	// Alignment parameters
	SourceSelect    string
	Preset          string
	Strand          string
	Seed            string
	Transition      string
	GFExtend        string
	Chain           string
	GapOpen         string
	GapExtend       string
	XDrop           string
	YDrop           string
	HSPThreshold    string
	GappedThreshold string
	Entropy         string

	// Filters
	IdentityMin string
	IdentityMax string
	Coverage    string

	// Output
	Format string
	Output string

	// Execution
	Threads          int
	Lastz            string
	DryRun           bool
	FailOnExitStatus bool
	MetricsFile      string

	// Logging
	LogLevel  string
	LogFormat string
	Quiet     bool
}

// Group is a titled set of flags; usage prints one section per group.
type Group struct {
	Title string
	Flags *pflag.FlagSet
}

// Register builds the flag groups. Flag names double as viper keys.
func Register() []Group {
	def := lastz.DefaultExplicitParams()

	ref := pflag.NewFlagSet("reference", pflag.ContinueOnError)
	ref.String("reference", "", "reference FASTA (history) or 2bit archive / loc key (cached) [*]")
	ref.String("ref-source", string(partition.SourceCached), "reference source: history | cached")
	ref.String("ref-name", "", "label prefixed to reference names in the output (<name>::)")
	ref.Int("ref-sequences", 0, "declared number of sequences in a history reference (informational)")
	ref.String("seqs-loc-dir", "", "directory holding lastz_seqs.loc for cached reference keys")
	ref.String("query", "", "reads / query sequence file [*]")

	params := pflag.NewFlagSet("alignment", pflag.ContinueOnError)
	params.String("source-select", string(lastz.ModePreset), "parameter mode: preset | explicit")
	params.String("preset", "", "lastz preset name, used with --source-select=preset")
	params.String("strand", def.Strand, "strand to search: both | plus | minus")
	params.String("seed", def.Seed, "seed pattern, e.g. seed=12of19 or seed=match12")
	params.String("transition", def.Transition, "transitions per seed hit: transition | transition=2 | notransition")
	params.String("gfextend", def.GFExtend, "gap-free extension: gfextend | nogfextend")
	params.String("chain", def.Chain, "chaining of HSPs: chain | nochain")
	params.String("gap-open", def.GapOpen, "gap open penalty (O)")
	params.String("gap-extend", def.GapExtend, "gap extension penalty (E)")
	params.String("xdrop", def.XDrop, "x-drop extension threshold (X)")
	params.String("ydrop", def.YDrop, "y-drop extension threshold (Y)")
	params.String("hsp-threshold", def.HSPThreshold, "score threshold for HSPs (K)")
	params.String("gapped-threshold", def.GappedThreshold, "score threshold for gapped alignments (L)")
	params.String("entropy", def.Entropy, "entropy filtering of HSPs: entropy | noentropy")

	filters := pflag.NewFlagSet("filters", pflag.ContinueOnError)
	filters.String("identity-min", "0", "minimum identity (percent)")
	filters.String("identity-max", "100", "maximum identity (percent)")
	filters.String("coverage", "0", "minimum coverage (percent)")

	out := pflag.NewFlagSet("output", pflag.ContinueOnError)
	out.String("format", string(lastz.FormatSAM), "output format: sam | diffs | tabular")
	out.String("output", "", "shared output file; every job appends to it [*]")

	exec := pflag.NewFlagSet("execution", pflag.ContinueOnError)
	exec.IntP("threads", "t", 0, "concurrent lastz processes (0 = all CPUs)")
	exec.String("lastz", lastz.DefaultExecutable, "lastz executable")
	exec.Bool("dry-run", false, "print the commands instead of running them")
	exec.Bool("fail-on-exit-status", false, "fail the run if any lastz process exits non-zero")
	exec.String("metrics-file", "", "write prometheus metrics to this textfile when the run ends")

	misc := pflag.NewFlagSet("misc", pflag.ContinueOnError)
	misc.String("log-level", "info", "log level: none | debug | info | warn | error")
	misc.String("log-format", "text", "log format: text | json")
	misc.BoolP("quiet", "q", false, "only log errors")
	misc.String("config", "", "YAML config file (default ./lastzrun.yaml or $HOME/.lastzrun/lastzrun.yaml)")

	return []Group{
		{Title: "Reference & query", Flags: ref},
		{Title: "Alignment parameters", Flags: params},
		{Title: "Filters", Flags: filters},
		{Title: "Output", Flags: out},
		{Title: "Execution", Flags: exec},
		{Title: "Miscellaneous", Flags: misc},
	}
}

// FromViper reads Options from v, which must have the flags bound.
// Values from env or the config file skip pflag parsing, so int and bool
// keys are converted strictly and a malformed one is a ConfigurationError.
func FromViper(v *viper.Viper) (Options, error) {
	var errs []error
	getInt := func(key string) int {
		n, err := cast.ToIntE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return n
	}
	getBool := func(key string) bool {
		b, err := cast.ToBoolE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return b
	}

	o := Options{
		RefName:      v.GetString("ref-name"),
		RefSource:    v.GetString("ref-source"),
		RefSequences: getInt("ref-sequences"),
		Reference:    v.GetString("reference"),
		SeqsLocDir:   v.GetString("seqs-loc-dir"),
		Query:        v.GetString("query"),

		SourceSelect:    v.GetString("source-select"),
		Preset:          v.GetString("preset"),
		Strand:          v.GetString("strand"),
		Seed:            v.GetString("seed"),
		Transition:      v.GetString("transition"),
		GFExtend:        v.GetString("gfextend"),
		Chain:           v.GetString("chain"),
		GapOpen:         v.GetString("gap-open"),
		GapExtend:       v.GetString("gap-extend"),
		XDrop:           v.GetString("xdrop"),
		YDrop:           v.GetString("ydrop"),
		HSPThreshold:    v.GetString("hsp-threshold"),
		GappedThreshold: v.GetString("gapped-threshold"),
		Entropy:         v.GetString("entropy"),

		IdentityMin: v.GetString("identity-min"),
		IdentityMax: v.GetString("identity-max"),
		Coverage:    v.GetString("coverage"),

		Format: v.GetString("format"),
		Output: v.GetString("output"),

		Threads:          getInt("threads"),
		Lastz:            v.GetString("lastz"),
		DryRun:           getBool("dry-run"),
		FailOnExitStatus: getBool("fail-on-exit-status"),
		MetricsFile:      v.GetString("metrics-file"),

		LogLevel:  v.GetString("log-level"),
		LogFormat: v.GetString("log-format"),
		Quiet:     getBool("quiet"),
	}
	if err := errors.Join(errs...); err != nil {
		return Options{}, apperr.Configuration("options", err)
	}
	return o, nil
}

// Validate applies the CLI invariants. Every failure is a ConfigurationError.
func Validate(o Options) error {
	if err := validate(o); err != nil {
		return apperr.Configuration("options", err)
	}
	return nil
}

func validate(o Options) error {
	switch {
	case o.Reference == "":
		return errors.New("--reference is required")
	case o.Query == "":
		return errors.New("--query is required")
	case o.Output == "" && !o.DryRun:
		return errors.New("--output is required")
	case o.Threads < 0:
		return errors.New("--threads must be >= 0")
	case o.RefSequences < 0:
		return errors.New("--ref-sequences must be >= 0")
	case o.Lastz == "":
		return errors.New("--lastz must not be empty")
	}
	if _, err := partition.ParseSource(o.RefSource); err != nil {
		return err
	}
	if _, err := lastz.ParseFormat(o.Format); err != nil {
		return err
	}
	if _, err := o.AlignmentOptions(); err != nil {
		return err
	}
	return nil
}

// AlignmentOptions converts the parameter flags. The explicit set is only
// populated in explicit mode, keeping the two forms exclusive.
func (o Options) AlignmentOptions() (lastz.AlignmentOptions, error) {
	mode, err := lastz.ParseParamMode(o.SourceSelect)
	if err != nil {
		return lastz.AlignmentOptions{}, fmt.Errorf("--source-select: %w", err)
	}
	ao := lastz.AlignmentOptions{Mode: mode}
	if mode == lastz.ModePreset {
		ao.Preset = o.Preset
	} else {
		ao.Explicit = lastz.ExplicitParams{
			Strand:          o.Strand,
			Seed:            o.Seed,
			Transition:      o.Transition,
			GFExtend:        o.GFExtend,
			Chain:           o.Chain,
			GapOpen:         o.GapOpen,
			GapExtend:       o.GapExtend,
			XDrop:           o.XDrop,
			YDrop:           o.YDrop,
			HSPThreshold:    o.HSPThreshold,
			GappedThreshold: o.GappedThreshold,
			Entropy:         o.Entropy,
		}
	}
	if err := ao.Validate(); err != nil {
		return lastz.AlignmentOptions{}, fmt.Errorf("--source-select=%s: %w", o.SourceSelect, err)
	}
	return ao, nil
}

func (o Options) Filters() lastz.FilterOptions {
	return lastz.FilterOptions{IdentityMin: o.IdentityMin, IdentityMax: o.IdentityMax, Coverage: o.Coverage}
}

// EffectiveLogLevel folds --quiet into the log level.
func (o Options) EffectiveLogLevel() string {
	if o.Quiet && o.LogLevel != "none" {
		return "error"
	}
	return o.LogLevel
}
