package harness

import (
	"github.com/roach88/radixrunner/internal/ir"
	"github.com/roach88/radixrunner/internal/radix"
)

// TraceEvent records one poll that declared at least one wrap.
type TraceEvent struct {
	// Seq is the poll number within the scenario, starting at 1.
	Seq      int64    `json:"seq"`
	Raw      uint64   `json:"raw"`
	Wrapped  []string `json:"wrapped"`
	Advanced []int    `json:"advanced"`
}

func (e TraceEvent) canonicalMap() map[string]any {
	wrapped := make([]any, len(e.Wrapped))
	for i, d := range e.Wrapped {
		wrapped[i] = d
	}
	advanced := make([]any, len(e.Advanced))
	for i, slot := range e.Advanced {
		advanced[i] = slot
	}
	return map[string]any{
		"seq":      e.Seq,
		"raw":      ir.FormatRaw(e.Raw),
		"wrapped":  wrapped,
		"advanced": advanced,
	}
}

// FinalState is the region after the last step.
type FinalState struct {
	Raw     uint64                `json:"raw"`
	Polls   uint64                `json:"polls"`
	Wraps   [ir.DigitCount]uint64 `json:"wraps"`
	Shadows []ir.ShadowState      `json:"shadows"`
}

func (f FinalState) canonicalMap() map[string]any {
	wraps := make([]any, len(f.Wraps))
	for i, w := range f.Wraps {
		wraps[i] = w
	}
	shadows := make([]any, len(f.Shadows))
	for i, s := range f.Shadows {
		shadows[i] = s.CanonicalMap()
	}
	return map[string]any{
		"raw":     ir.FormatRaw(f.Raw),
		"polls":   f.Polls,
		"wraps":   wraps,
		"shadows": shadows,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// RunID is the run ID stamped on the trace.
	RunID string `json:"run_id"`

	// Trace holds every poll that declared a wrap, in poll order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Final FinalState `json:"final"`
}

// NewResult creates a new passing result.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddWrapTrace appends a wrap event.
func (r *Result) AddWrapTrace(seq int64, raw uint64, wrapped radix.WrapSet, advanced []int) {
	var names []string
	for _, d := range wrapped.Digits() {
		names = append(names, d.String())
	}
	if advanced == nil {
		advanced = []int{}
	}
	r.Trace = append(r.Trace, TraceEvent{
		Seq:      seq,
		Raw:      raw,
		Wrapped:  names,
		Advanced: advanced,
	})
}
