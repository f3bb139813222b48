package ir

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DigitCount mirrors radix.DigitCount without importing it.
const DigitCount = 6

// ShadowState is one slot as seen by the monitor.
type ShadowState struct {
	Slot          int    `json:"slot"`
	Enabled       bool   `json:"enabled"`
	SourceDigit   int    `json:"source_digit"`
	Divisor       uint32 `json:"divisor"`
	OverflowCount uint32 `json:"overflow_count"`
	Count         uint64 `json:"count"`
}

// CanonicalMap implements Canonicaler.
func (s ShadowState) CanonicalMap() map[string]any {
	return map[string]any{
		"slot":           s.Slot,
		"enabled":        s.Enabled,
		"source_digit":   s.SourceDigit,
		"divisor":        s.Divisor,
		"overflow_count": s.OverflowCount,
		"count":          s.Count,
	}
}

// Sample is one monitor observation of a running clock.
type Sample struct {
	ID     string             `json:"id"`
	RunID  string             `json:"run_id"`
	Seq    int64              `json:"seq"`
	Raw    uint64             `json:"raw"`
	Digits [DigitCount]uint32 `json:"digits"`

	// TicksPerSecond is the producer rate since the previous sample.
	TicksPerSecond int64 `json:"ticks_per_second"`

	// ObserverSamples and Wraps are cumulative observer statistics.
	ObserverSamples uint64             `json:"observer_samples"`
	Wraps           [DigitCount]uint64 `json:"wraps"`

	Shadows []ShadowState `json:"shadows"`
}

// CanonicalMap implements Canonicaler. The ID is excluded since it is
// derived from this map.
func (s Sample) CanonicalMap() map[string]any {
	digits := make([]any, DigitCount)
	wraps := make([]any, DigitCount)
	for i := 0; i < DigitCount; i++ {
		digits[i] = s.Digits[i]
		wraps[i] = s.Wraps[i]
	}
	shadows := make([]any, len(s.Shadows))
	for i, sh := range s.Shadows {
		shadows[i] = sh.CanonicalMap()
	}
	return map[string]any{
		"run_id":           s.RunID,
		"seq":              s.Seq,
		"raw":              FormatRaw(s.Raw),
		"digits":           digits,
		"ticks_per_second": s.TicksPerSecond,
		"observer_samples": s.ObserverSamples,
		"wraps":            wraps,
		"shadows":          shadows,
	}
}

// Run describes one engine run recorded in the store.
type Run struct {
	ID         string        `json:"id"`
	Label      string        `json:"label,omitempty"`
	Policy     string        `json:"policy"`
	RegionPath string        `json:"region_path,omitempty"`
	RegionSize int           `json:"region_size"`
	Shadows    []ShadowState `json:"shadows"`
	ConfigHash string        `json:"config_hash"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	FinalRaw   uint64        `json:"final_raw"`
}

// FormatRaw renders a counter value as 0x-prefixed 16-digit hex.
func FormatRaw(v uint64) string {
	return fmt.Sprintf("0x%016x", v)
}

// ParseRaw parses a counter value in decimal, 0x hex, 0o octal or 0b binary.
// Underscores are allowed between digits.
func ParseRaw(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter value %q: %w", s, err)
	}
	return v, nil
}
