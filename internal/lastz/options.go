// internal/lastz/options.go
package lastz

import (
	"errors"
	"fmt"
	"strings"
)

// ParamMode selects how alignment parameters are supplied.
type ParamMode string

const (
	ModePreset   ParamMode = "preset"
	ModeExplicit ParamMode = "explicit"
)

// ParseParamMode accepts "preset" (or the legacy "pre_set") and "explicit".
// Anything else is rejected instead of silently falling back to explicit.
func ParseParamMode(s string) (ParamMode, error) {
	switch strings.TrimSpace(s) {
	case "preset", "pre_set":
		return ModePreset, nil
	case "explicit":
		return ModeExplicit, nil
	default:
		return "", fmt.Errorf("unrecognised parameter mode %q (want preset | explicit)", s)
	}
}

// ExplicitParams is the fully specified parameter set. Values are spliced
// into the command verbatim; lastz validates them.
type ExplicitParams struct {
	Strand     string // both | plus | minus
	Seed       string // e.g. seed=12of19
	Transition string // transition | transition=2 | notransition
	GFExtend   string // gfextend | nogfextend
	Chain      string // chain | nochain

	GapOpen         string // O
	GapExtend       string // E
	XDrop           string // X
	YDrop           string // Y
	HSPThreshold    string // K
	GappedThreshold string // L

	Entropy string // entropy | noentropy
}

// DefaultExplicitParams mirrors lastz's built-in defaults.
func DefaultExplicitParams() ExplicitParams {
	return ExplicitParams{
		Strand:          "both",
		Seed:            "seed=12of19",
		Transition:      "transition",
		GFExtend:        "gfextend",
		Chain:           "nochain",
		GapOpen:         "400",
		GapExtend:       "30",
		XDrop:           "910",
		YDrop:           "9370",
		HSPThreshold:    "3000",
		GappedThreshold: "3000",
		Entropy:         "entropy",
	}
}

// AlignmentOptions holds either a preset name or an explicit parameter set,
// selected by Mode.
type AlignmentOptions struct {
	Mode     ParamMode
	Preset   string
	Explicit ExplicitParams
}

func (o AlignmentOptions) Validate() error {
	switch o.Mode {
	case ModePreset:
		if strings.TrimSpace(o.Preset) == "" {
			return errors.New("preset mode requires a preset name")
		}
	case ModeExplicit:
	default:
		return fmt.Errorf("unrecognised parameter mode %q", o.Mode)
	}
	return nil
}

// ResolveOptions turns o into the option tokens spliced into each command.
//
//	preset:   --<preset>
//	explicit: --<gfextend> --<chain> --gapped --<strand> --<seed> --<transition>
//	          O= E= X= Y= K= L= --<entropy>
func ResolveOptions(o AlignmentOptions) ([]string, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Mode == ModePreset {
		return []string{"--" + o.Preset}, nil
	}
	p := o.Explicit
	return []string{
		"--" + p.GFExtend,
		"--" + p.Chain,
		"--gapped",
		"--" + p.Strand,
		"--" + p.Seed,
		"--" + p.Transition,
		"O=" + p.GapOpen,
		"E=" + p.GapExtend,
		"X=" + p.XDrop,
		"Y=" + p.YDrop,
		"K=" + p.HSPThreshold,
		"L=" + p.GappedThreshold,
		"--" + p.Entropy,
	}, nil
}
