package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/radixrunner/internal/ir"
	"github.com/roach88/radixrunner/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show one run's samples
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID         string     `json:"id"`
	Label      string     `json:"label,omitempty"`
	Policy     string     `json:"policy"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	FinalRaw   string     `json:"final_raw"`
}

// TraceResult holds one run with its stored samples.
type TraceResult struct {
	Run     ir.Run         `json:"run"`
	Samples []ir.Sample    `json:"samples"`
	Stats   store.RunStats `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded runs",
		Long: `Show runs recorded by "radixrunner run --db".

Without --run, lists every run. With --run, prints the run's shadow
configuration, its samples in sequence order and summary statistics.

Examples:
  radixrunner trace --db ./runs.db
  radixrunner trace --db ./runs.db --run 01928c3e-...
  radixrunner trace --db ./runs.db --run 01928c3e-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to show")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		return listRuns(ctx, st, opts, cmd)
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	samples, err := st.ReadSamples(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read samples", err)
	}
	stats, err := st.ReadRunStats(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read stats", err)
	}
	if samples == nil {
		samples = []ir.Sample{}
	}

	result := TraceResult{Run: run, Samples: samples, Stats: stats}
	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	outputTraceText(cmd.OutOrStdout(), result)
	return nil
}

func listRuns(ctx context.Context, st *store.Store, opts *TraceOptions, cmd *cobra.Command) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = RunSummary{
			ID:         r.ID,
			Label:      r.Label,
			Policy:     r.Policy,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			FinalRaw:   ir.FormatRaw(r.FinalRaw),
		}
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, summaries)
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, s := range summaries {
		status := "running"
		if s.FinishedAt != nil {
			status = s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%s  %-7s %s  %-10s %s\n",
			s.ID, s.Policy, s.StartedAt.Format(time.RFC3339), status, s.Label)
	}
	return nil
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, data any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{Status: "ok", Data: data})
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult) {
	run := result.Run
	fmt.Fprintf(w, "Run: %s\n", run.ID)
	if run.Label != "" {
		fmt.Fprintf(w, "Label: %s\n", run.Label)
	}
	fmt.Fprintf(w, "Policy: %s\n", run.Policy)
	fmt.Fprintf(w, "Config: %s\n", run.ConfigHash)
	if run.FinishedAt != nil {
		fmt.Fprintf(w, "Final: %s\n", ir.FormatRaw(run.FinalRaw))
	} else {
		fmt.Fprintln(w, "Final: (unfinished)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Shadows ===")
	enabled := 0
	for _, sh := range run.Shadows {
		if !sh.Enabled {
			continue
		}
		enabled++
		fmt.Fprintf(w, "  slot %d: P%d / %d\n", sh.Slot, sh.SourceDigit, sh.Divisor)
	}
	if enabled == 0 {
		fmt.Fprintln(w, "  (none enabled)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Samples ===")
	if len(result.Samples) == 0 {
		fmt.Fprintln(w, "  (no samples)")
	}
	for _, s := range result.Samples {
		fmt.Fprintf(w, "  %s\n", FormatSample(s))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Samples:   %d\n", result.Stats.Samples)
	fmt.Fprintf(w, "  Seq:       %d..%d\n", result.Stats.FirstSeq, result.Stats.LastSeq)
	fmt.Fprintf(w, "  Peak rate: %d/s\n", result.Stats.MaxTicksPerSecond)
}
