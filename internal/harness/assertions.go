package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/radixrunner/internal/ir"
	"github.com/roach88/radixrunner/internal/radix"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Wrap trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nWrap trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s advanced=%v\n",
				ev.Seq, ir.FormatRaw(ev.Raw), strings.Join(ev.Wrapped, ","), ev.Advanced)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the final state and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	final := result.Final
	var label string
	var actual uint64

	switch a.Type {
	case AssertShadowCounter:
		if a.Slot < 0 || a.Slot >= len(final.Shadows) {
			return fmt.Errorf("slot %d not present", a.Slot)
		}
		label = fmt.Sprintf("shadow_counter slot %d", a.Slot)
		actual = final.Shadows[a.Slot].Count
	case AssertOverflowCount:
		if a.Slot < 0 || a.Slot >= len(final.Shadows) {
			return fmt.Errorf("slot %d not present", a.Slot)
		}
		label = fmt.Sprintf("overflow_count slot %d", a.Slot)
		actual = uint64(final.Shadows[a.Slot].OverflowCount)
	case AssertWraps:
		if a.Digit == nil {
			return fmt.Errorf("wraps requires digit")
		}
		d := radix.Digit(*a.Digit)
		label = fmt.Sprintf("wraps %s", d)
		actual = final.Wraps[d]
	case AssertRaw:
		if final.Raw != uint64(a.Equals) {
			return &AssertionError{
				Type:     "raw",
				Expected: ir.FormatRaw(uint64(a.Equals)),
				Actual:   ir.FormatRaw(final.Raw),
				Trace:    result.Trace,
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}

	if actual != uint64(a.Equals) {
		return &AssertionError{
			Type:     label,
			Expected: fmt.Sprintf("%d", uint64(a.Equals)),
			Actual:   fmt.Sprintf("%d", actual),
			Trace:    result.Trace,
		}
	}
	return nil
}
