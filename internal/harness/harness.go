package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/radixrunner/internal/config"
	"github.com/roach88/radixrunner/internal/engine"
	"github.com/roach88/radixrunner/internal/memory"
	"github.com/roach88/radixrunner/internal/testutil"
)

// Harness drives one scenario on a private region.
type Harness struct {
	eng    *engine.Engine
	clock  *testutil.DeterministicClock
	result *Result
}

// Run executes a scenario and evaluates its assertions.
//
// Returns an error only when the scenario cannot be executed; failed
// assertions are reported in Result.Errors with Pass false.
func Run(scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}

	for i, step := range scenario.Steps {
		if err := h.execute(step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	h.result.Final = h.final()
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func newHarness(s *Scenario) (*Harness, error) {
	region, err := memory.New(memory.MinSize)
	if err != nil {
		return nil, fmt.Errorf("create region: %w", err)
	}

	policy, err := engine.ParsePolicy(s.Policy)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(region,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithObserverOptions(engine.WithPolicy(policy)))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	eng.WriteRaw(uint64(s.Start))

	cfg := config.Default()
	cfg.Shadows = s.Shadows
	if err := cfg.Apply(eng.Table()); err != nil {
		return nil, err
	}

	return &Harness{
		eng:    eng,
		clock:  testutil.NewDeterministicClock(),
		result: NewResult(testutil.NewFixedRunIDGenerator(s.RunID).Generate()),
	}, nil
}

func (h *Harness) execute(step Step) error {
	switch {
	case step.Tick > 0:
		h.eng.Producer().RunN(step.Tick)
	case step.Sample:
		h.poll()
	case step.Set != nil:
		h.eng.WriteRaw(uint64(*step.Set))
	case step.Configure != nil:
		return h.eng.Table().Configure(step.Configure.Slot, step.Configure.ShadowConfig())
	case step.Run != nil:
		every := step.Run.Every
		if every == 0 {
			every = 1
		}
		counter := h.eng.Counter()
		for i := uint64(1); i <= step.Run.Ticks; i++ {
			counter.Tick()
			if i%every == 0 {
				h.poll()
			}
		}
	default:
		return fmt.Errorf("empty step")
	}
	return nil
}

// poll samples the counter once and traces any declared wrap along with the
// slots whose shadow counters it advanced.
func (h *Harness) poll() {
	before := h.counts()
	raw := h.eng.ReadRaw()
	wrapped := h.eng.Observer().Step(raw)
	seq := h.clock.Next()
	if wrapped.Empty() {
		return
	}

	after := h.counts()
	var advanced []int
	for i := range after {
		if after[i] != before[i] {
			advanced = append(advanced, i)
		}
	}
	h.result.AddWrapTrace(seq, raw, wrapped, advanced)
}

func (h *Harness) counts() []uint64 {
	states := h.eng.Table().States()
	out := make([]uint64, len(states))
	for i, st := range states {
		out[i] = st.Count
	}
	return out
}

func (h *Harness) final() FinalState {
	obs := h.eng.Observer()
	return FinalState{
		Raw:     h.eng.ReadRaw(),
		Polls:   obs.Samples(),
		Wraps:   obs.Wraps(),
		Shadows: engine.ShadowRecords(h.eng.Table().States()),
	}
}
