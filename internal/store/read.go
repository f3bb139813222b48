package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/radixrunner/internal/ir"
	"github.com/roach88/radixrunner/internal/radix"
)

const runColumns = `id, label, policy, region_path, region_size, shadows, config_hash,
	started_at, finished_at, final_raw`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReadRun retrieves a single run by ID.
// Returns ErrRunNotFound if it does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	return run, err
}

// ListRuns returns every run in ID order.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ListRuns(ctx context.Context) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(row rowScanner) (ir.Run, error) {
	var (
		run         ir.Run
		shadowsJSON string
		startedAt   string
		finishedAt  sql.NullString
		finalRaw    string
	)
	err := row.Scan(
		&run.ID,
		&run.Label,
		&run.Policy,
		&run.RegionPath,
		&run.RegionSize,
		&shadowsJSON,
		&run.ConfigHash,
		&startedAt,
		&finishedAt,
		&finalRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Run{}, err
		}
		return ir.Run{}, fmt.Errorf("scan run: %w", err)
	}

	if run.Shadows, err = unmarshalShadows(shadowsJSON); err != nil {
		return ir.Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return ir.Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return ir.Run{}, fmt.Errorf("run %s: %w", run.ID, err)
		}
		run.FinishedAt = &t
	}
	if run.FinalRaw, err = ir.ParseRaw(finalRaw); err != nil {
		return ir.Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return run, nil
}

// ReadSamples returns a run's samples.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the run has no samples.
func (s *Store) ReadSamples(ctx context.Context, runID string) ([]ir.Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, raw, ticks_per_second, observer_samples, wraps, shadows
		FROM samples
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []ir.Sample{}
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

func scanSample(row rowScanner) (ir.Sample, error) {
	var (
		sample      ir.Sample
		raw         string
		obsSamples  int64
		wrapsJSON   string
		shadowsJSON string
	)
	err := row.Scan(
		&sample.ID,
		&sample.RunID,
		&sample.Seq,
		&raw,
		&sample.TicksPerSecond,
		&obsSamples,
		&wrapsJSON,
		&shadowsJSON,
	)
	if err != nil {
		return ir.Sample{}, fmt.Errorf("scan sample: %w", err)
	}

	if sample.Raw, err = ir.ParseRaw(raw); err != nil {
		return ir.Sample{}, fmt.Errorf("sample %s: %w", sample.ID, err)
	}
	sample.Digits = radix.DecodeAll(sample.Raw)
	sample.ObserverSamples = uint64(obsSamples)
	if sample.Wraps, err = unmarshalWraps(wrapsJSON); err != nil {
		return ir.Sample{}, fmt.Errorf("sample %s: %w", sample.ID, err)
	}
	if sample.Shadows, err = unmarshalShadows(shadowsJSON); err != nil {
		return ir.Sample{}, fmt.Errorf("sample %s: %w", sample.ID, err)
	}
	return sample, nil
}

// RunStats summarizes a run's samples.
type RunStats struct {
	Samples           int64 `json:"samples"`
	FirstSeq          int64 `json:"first_seq"`
	LastSeq           int64 `json:"last_seq"`
	MaxTicksPerSecond int64 `json:"max_ticks_per_second"`
}

// ReadRunStats aggregates a run's samples. A run with no samples has zero
// stats.
func (s *Store) ReadRunStats(ctx context.Context, runID string) (RunStats, error) {
	var st RunStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(MIN(seq), 0),
		       COALESCE(MAX(seq), 0),
		       COALESCE(MAX(ticks_per_second), 0)
		FROM samples
		WHERE run_id = ?
	`, runID).Scan(&st.Samples, &st.FirstSeq, &st.LastSeq, &st.MaxTicksPerSecond)
	if err != nil {
		return RunStats{}, fmt.Errorf("read run stats: %w", err)
	}
	return st, nil
}
