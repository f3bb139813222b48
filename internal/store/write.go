package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/radixrunner/internal/ir"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
//
// An empty ConfigHash is computed from the run's shadows.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	shadowsJSON, err := marshalShadows(run.Shadows)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if run.ConfigHash == "" {
		run.ConfigHash, err = ir.RunConfigHash(run.Shadows)
		if err != nil {
			return fmt.Errorf("write run: %w", err)
		}
	}

	var finished any
	if run.FinishedAt != nil {
		finished = formatTime(*run.FinishedAt)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, label, policy, region_path, region_size, shadows, config_hash,
		 engine_version, record_version, started_at, finished_at, final_raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Label,
		run.Policy,
		run.RegionPath,
		run.RegionSize,
		shadowsJSON,
		run.ConfigHash,
		ir.EngineVersion,
		ir.RecordVersion,
		formatTime(run.StartedAt),
		finished,
		ir.FormatRaw(run.FinalRaw),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// FinishRun stamps a run's end time and final counter value.
// Returns ErrRunNotFound if the run was never written.
func (s *Store) FinishRun(ctx context.Context, id string, at time.Time, finalRaw uint64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, final_raw = ? WHERE id = ?
	`, formatTime(at), ir.FormatRaw(finalRaw), id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// WriteSample inserts a monitor sample and reports whether it was new.
// Uses ON CONFLICT DO NOTHING for idempotency; a duplicate ID or a second
// sample with the same (run_id, seq) is ignored.
//
// An empty ID is computed with ir.SampleID.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteSample(ctx context.Context, sample ir.Sample) (bool, error) {
	if sample.ID == "" {
		id, err := ir.SampleID(sample)
		if err != nil {
			return false, fmt.Errorf("write sample: %w", err)
		}
		sample.ID = id
	}

	wrapsJSON, err := marshalWraps(sample.Wraps)
	if err != nil {
		return false, fmt.Errorf("write sample: %w", err)
	}
	shadowsJSON, err := marshalShadows(sample.Shadows)
	if err != nil {
		return false, fmt.Errorf("write sample: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO samples
		(id, run_id, seq, raw, ticks_per_second, observer_samples, wraps, shadows)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		sample.ID,
		sample.RunID,
		sample.Seq,
		ir.FormatRaw(sample.Raw),
		sample.TicksPerSecond,
		int64(sample.ObserverSamples),
		wrapsJSON,
		shadowsJSON,
	)
	if err != nil {
		return false, fmt.Errorf("write sample: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write sample: rows affected: %w", err)
	}
	return n > 0, nil
}
