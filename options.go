package haicmetrics

import (
	"github.com/haic-lab/haicmetrics/haicerr"
	"github.com/haic-lab/haicmetrics/outcome"
	"github.com/haic-lab/haicmetrics/window"
)

// Profile selects the metric catalogue.
const (
	// ProfileCore: interaction KPIs + human RT + AI latency summaries.
	ProfileCore = "core"
	// ProfileFull: core plus the outcome/confusion catalogue.
	ProfileFull = "full"
)

// Options is the recognized configuration surface of a computation.
// A nil *Options means defaults throughout.
type Options struct {
	// Profile is "core" (default) or "full".
	Profile string
	// RTMaxS is the SLA seconds threshold HCL normalizes against. Default 5.
	RTMaxS float64
	// BaselineS, when positive, enables the EL overrun metric.
	BaselineS *float64
	// OmitWarnings drops the advisory warnings list from the result.
	// Warnings are included by default.
	OmitWarnings bool
	// Window optionally restricts which records feed the computation.
	Window *window.Spec
	// Vocabulary overrides the positive/negative label table used by the
	// outcome engine. Nil uses the default (radiology/manufacturing) table.
	Vocabulary *outcome.Vocabulary
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() *Options {
	return &Options{
		Profile: ProfileCore,
		RTMaxS:  5.0,
	}
}

func (o *Options) withDefaults() (*Options, error) {
	out := DefaultOptions()
	if o == nil {
		return out, nil
	}
	if o.Profile != "" {
		out.Profile = o.Profile
	}
	if out.Profile != ProfileCore && out.Profile != ProfileFull {
		return nil, haicerr.New(haicerr.CodeUnknownProfile, "unknown profile: %q", out.Profile)
	}
	if o.RTMaxS > 0 {
		out.RTMaxS = o.RTMaxS
	}
	out.BaselineS = o.BaselineS
	out.OmitWarnings = o.OmitWarnings
	out.Window = o.Window
	out.Vocabulary = o.Vocabulary
	return out, nil
}
