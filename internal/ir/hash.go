package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSample = "radixrunner/sample/v1"
	DomainConfig = "radixrunner/config/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SampleID computes the content-addressed ID of a sample. Writing the same
// sample twice yields the same ID, which the store uses for idempotency.
func SampleID(s Sample) (string, error) {
	canonical, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("SampleID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSample, canonical), nil
}

// RunConfigHash identifies a shadow configuration. Counts and tallies are
// ignored; only what a controller set is hashed.
func RunConfigHash(shadows []ShadowState) (string, error) {
	list := make([]any, len(shadows))
	for i, s := range shadows {
		list[i] = map[string]any{
			"slot":         s.Slot,
			"enabled":      s.Enabled,
			"source_digit": s.SourceDigit,
			"divisor":      s.Divisor,
		}
	}
	canonical, err := MarshalCanonical(map[string]any{"shadows": list})
	if err != nil {
		return "", fmt.Errorf("RunConfigHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// MustSampleID is like SampleID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSampleID(s Sample) string {
	id, err := SampleID(s)
	if err != nil {
		panic(err)
	}
	return id
}
