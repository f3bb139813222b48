package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/radixrunner/internal/ir"
)

// timeLayout is used for started_at and finished_at. Wall time is stored for
// display only and never orders anything.
const timeLayout = time.RFC3339Nano

// marshalShadows converts slot states to canonical JSON TEXT.
func marshalShadows(shadows []ir.ShadowState) (string, error) {
	list := make([]any, len(shadows))
	for i, sh := range shadows {
		list[i] = sh.CanonicalMap()
	}
	data, err := ir.MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal shadows: %w", err)
	}
	return string(data), nil
}

func unmarshalShadows(data string) ([]ir.ShadowState, error) {
	out := []ir.ShadowState{}
	if data == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal shadows: %w", err)
	}
	return out, nil
}

// marshalWraps converts per-digit wrap counts to canonical JSON TEXT.
func marshalWraps(wraps [ir.DigitCount]uint64) (string, error) {
	list := make([]any, len(wraps))
	for i, w := range wraps {
		list[i] = w
	}
	data, err := ir.MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal wraps: %w", err)
	}
	return string(data), nil
}

func unmarshalWraps(data string) ([ir.DigitCount]uint64, error) {
	var out [ir.DigitCount]uint64
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return out, fmt.Errorf("unmarshal wraps: %w", err)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
