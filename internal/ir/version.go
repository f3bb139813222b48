package ir

// Version constants for persisted records.
const (
	// RecordVersion is the sample/run record schema version.
	RecordVersion = "1"

	// EngineVersion is the radixrunner version stamped on runs.
	EngineVersion = "0.1.0"
)
