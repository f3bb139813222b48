package testutil

// DefaultRunID is used when a scenario names no run.
const DefaultRunID = "run-test-default"

// FixedRunIDGenerator returns the same run ID every time, so repeated runs
// of one scenario produce byte-identical traces.
//
// Unlike engine.FixedGenerator, which hands out a list in order, it never
// runs out.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator returns a generator of id, or of DefaultRunID when
// id is empty.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed ID. Implements engine.RunIDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
