package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/radixrunner/internal/config"
	"github.com/roach88/radixrunner/internal/engine"
	"github.com/roach88/radixrunner/internal/ir"
	"github.com/roach88/radixrunner/internal/memory"
	"github.com/roach88/radixrunner/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config   string
	Database string
	Region   string
	Size     int
	Policy   string
	Yield    bool
	Interval time.Duration
	Duration time.Duration
	Label    string
	Shadows  []string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the clock",
		Long: `Start the tick producer and the wrap observer on one region.

The region is heap memory unless --region names a file, in which case it is
mapped shared so other processes can watch the same clock. Shadow slots come
from --config and may be overridden with --shadow slot=digit/divisor[,off].

A monitor samples the region every --interval and prints one line per sample.
With --db each sample is also written to SQLite under a fresh run ID.

Examples:
  radixrunner run --shadow 0=P0/3 --duration 5s
  radixrunner run --config clock.yaml --db runs.db
  radixrunner run --region /dev/shm/clock --policy snapshot --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClock(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "config file (.yaml, .cue or .json)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for samples")
	cmd.Flags().StringVar(&opts.Region, "region", "", "file to map as a shared region")
	cmd.Flags().IntVar(&opts.Size, "size", memory.DefaultSize, "region size in bytes")
	cmd.Flags().StringVar(&opts.Policy, "policy", "live", "observer policy (live|snapshot)")
	cmd.Flags().BoolVar(&opts.Yield, "yield", false, "yield the processor after each observer poll")
	cmd.Flags().DurationVar(&opts.Interval, "interval", engine.DefaultMonitorInterval, "monitor interval")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "run label stored with --db")
	cmd.Flags().StringArrayVar(&opts.Shadows, "shadow", nil, "shadow slot as slot=digit/divisor[,off] (repeatable)")

	return cmd
}

// resolveConfig loads the config file, if any, and applies explicitly set
// flags on top of it.
func resolveConfig(opts *RunOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = opts.Database
	}
	if flags.Changed("region") {
		cfg.Region.Path = opts.Region
	}
	if flags.Changed("size") {
		cfg.Region.Size = opts.Size
	}
	if flags.Changed("policy") {
		cfg.Observer.Policy = opts.Policy
	}
	if flags.Changed("yield") {
		cfg.Observer.Yield = opts.Yield
	}
	if flags.Changed("interval") {
		cfg.Monitor.Interval = config.Duration(opts.Interval)
	}
	if flags.Changed("label") {
		cfg.Label = opts.Label
	}

	shadows := make([]config.Shadow, 0, len(opts.Shadows))
	for _, s := range opts.Shadows {
		parsed, err := config.ParseShadow(s)
		if err != nil {
			return config.Config{}, fmt.Errorf("--shadow %q: %w", s, err)
		}
		shadows = append(shadows, parsed)
	}
	cfg.Merge(shadows)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openRegion(cfg config.Config) (*memory.Region, error) {
	if cfg.Region.Path != "" {
		return memory.Map(cfg.Region.Path, cfg.Region.Size)
	}
	return memory.New(cfg.Region.Size)
}

func runClock(opts *RunOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	region, err := openRegion(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open region", err)
	}
	defer func() {
		if closeErr := region.Close(); closeErr != nil {
			logger.Error("error closing region", "error", closeErr)
		}
	}()

	eng, err := engine.New(region,
		engine.WithLogger(logger),
		engine.WithObserverOptions(
			engine.WithPolicy(cfg.Policy()),
			engine.WithYield(cfg.Observer.Yield),
		))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create engine", err)
	}
	if err := cfg.Apply(eng.Table()); err != nil {
		return WrapExitError(ExitCommandError, "failed to configure shadows", err)
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}
	runID := runIDs.Generate()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()
	if opts.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var st *store.Store
	if cfg.Database != "" {
		st, err = store.Open(cfg.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		run := ir.Run{
			ID:         runID,
			Label:      cfg.Label,
			Policy:     cfg.Policy().String(),
			RegionPath: cfg.Region.Path,
			RegionSize: cfg.Region.Size,
			Shadows:    engine.ShadowRecords(eng.Table().States()),
			StartedAt:  time.Now().UTC(),
		}
		if err := st.WriteRun(ctx, run); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}

	sink := func(s ir.Sample) error {
		if st != nil {
			// The run context may already be done when the final sample lands.
			if _, err := st.WriteSample(context.WithoutCancel(ctx), s); err != nil {
				return err
			}
		}
		return formatter.Sample(s)
	}
	monitor := engine.NewMonitor(eng, runID, sink,
		engine.WithInterval(time.Duration(cfg.Monitor.Interval)),
		engine.WithMonitorLogger(logger))

	logger.Info("clock starting",
		"run", runID,
		"policy", cfg.Policy(),
		"region", cfg.Region.Path,
		"shadows", len(cfg.Shadows))

	if err := eng.Start(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to start engine", err)
	}

	monErr := monitor.Run(ctx)
	cancel()
	loopErr := eng.Wait()

	// One last sample so short runs always report something.
	if monErr == nil {
		_, monErr = monitor.Sample()
	}

	if st != nil {
		finishCtx := context.WithoutCancel(ctx)
		if err := st.FinishRun(finishCtx, runID, time.Now().UTC(), eng.ReadRaw()); err != nil {
			logger.Error("failed to finish run", "run", runID, "error", err)
		}
	}

	if err := errors.Join(monErr, loopErr); err != nil {
		return WrapExitError(ExitFailure, "clock error", err)
	}
	logger.Info("clock stopped gracefully", "run", runID, "raw", ir.FormatRaw(eng.ReadRaw()))
	return nil
}
