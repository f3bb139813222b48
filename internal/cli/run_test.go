package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/radixrunner/internal/engine"
	"github.com/roach88/radixrunner/internal/ir"
	"github.com/roach88/radixrunner/internal/memory"
	"github.com/roach88/radixrunner/internal/radix"
	"github.com/roach88/radixrunner/internal/shadow"
	"github.com/roach88/radixrunner/internal/store"
)

func executeRun(t *testing.T, format string, runIDs engine.RunIDGenerator, args ...string) (string, string, error) {
	t.Helper()
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: format},
		RunIDs:      runIDs,
	}
	cmd := newRunCommand(opts)
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRun_PrintsSamples(t *testing.T) {
	out, logs, err := executeRun(t, "text", engine.NewFixedGenerator("run-cli-1"),
		"--duration", "100ms", "--interval", "20ms", "--shadow", "0=P0/1")
	require.NoError(t, err, logs)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "#"), "line %q", line)
	}
	assert.Contains(t, lines[len(lines)-1], " s0=P0/1:")
	assert.Contains(t, logs, "clock starting")
	assert.Contains(t, logs, "run-cli-1")
}

func TestRun_JSONSamples(t *testing.T) {
	out, _, err := executeRun(t, "json", engine.NewFixedGenerator("run-cli-json"),
		"--duration", "30ms", "--interval", "10ms")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	var s ir.Sample
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &s))
	assert.Equal(t, "run-cli-json", s.RunID)
	assert.NotEmpty(t, s.ID)
	assert.Len(t, s.Shadows, shadow.MaxSlots)
}

func TestRun_PersistsToDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, logs, err := executeRun(t, "text", engine.NewFixedGenerator("run-cli-db"),
		"--config", configTestdata+"valid.yaml",
		"--db", dbPath,
		"--duration", "50ms")
	require.NoError(t, err, logs)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	run, err := st.ReadRun(ctx, "run-cli-db")
	require.NoError(t, err)
	assert.Equal(t, "p0-thirds", run.Label)
	assert.Equal(t, "snapshot", run.Policy)
	assert.Equal(t, 65536, run.RegionSize)
	require.NotNil(t, run.FinishedAt)
	assert.NotZero(t, run.FinalRaw)
	assert.NotEmpty(t, run.ConfigHash)
	require.Len(t, run.Shadows, shadow.MaxSlots)
	assert.True(t, run.Shadows[0].Enabled)
	assert.Equal(t, uint32(3), run.Shadows[0].Divisor)
	assert.False(t, run.Shadows[1].Enabled)

	// The 250ms interval from the file outlasts the run, so only the final
	// sample is recorded.
	samples, err := st.ReadSamples(ctx, "run-cli-db")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, int64(1), samples[0].Seq)
}

func TestRun_SharedRegionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clock")

	_, logs, err := executeRun(t, "text", engine.NewFixedGenerator("run-cli-region"),
		"--region", path, "--size", "65536", "--shadow", "3=P1/2", "--duration", "30ms")
	require.NoError(t, err, logs)

	region, err := memory.Map(path, 65536)
	require.NoError(t, err)
	defer region.Close()

	assert.NotZero(t, radix.Attach(region).Read())
	slot, err := shadow.Attach(region).Slot(3)
	require.NoError(t, err)
	cfg := slot.Config()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, radix.P1, cfg.SourceDigit)
	assert.Equal(t, uint32(2), cfg.Divisor)
}

func TestRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad shadow flag", []string{"--shadow", "0=P9/1"}},
		{"bad policy", []string{"--policy", "eager"}},
		{"small region", []string{"--size", "64"}},
		{"missing config", []string{"--config", "/nonexistent/clock.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeRun(t, "text", engine.NewFixedGenerator("unused"), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	opts := &RunOptions{RootOptions: &RootOptions{Format: "text"}}
	cmd := newRunCommand(opts)
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", configTestdata + "valid.yaml",
		"--policy", "live",
		"--shadow", "0=P2/7",
		"--shadow", "4=P3/1,off",
	}))

	cfg, err := resolveConfig(opts, cmd)
	require.NoError(t, err)

	assert.Equal(t, engine.PolicyLive, cfg.Policy())
	assert.True(t, cfg.Observer.Yield, "unset flags keep file values")
	assert.Equal(t, "runs.db", cfg.Database)
	require.Len(t, cfg.Shadows, 3)
	assert.Equal(t, uint32(7), cfg.Shadows[0].Divisor)
	assert.Equal(t, radix.P2, radix.Digit(cfg.Shadows[0].Digit))
	assert.Equal(t, 4, cfg.Shadows[2].Slot)
	assert.True(t, cfg.Shadows[2].Disabled)
}
