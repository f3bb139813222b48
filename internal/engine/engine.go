package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/radixrunner/internal/memory"
	"github.com/roach88/radixrunner/internal/radix"
	"github.com/roach88/radixrunner/internal/shadow"
)

// Engine owns the producer and observer of one region.
//
// New zeroes the counter before either loop exists, so neither loop can run
// against an uninitialized region. Start methods are safe from any goroutine;
// the loops themselves take no locks.
type Engine struct {
	region   *memory.Region
	counter  *radix.Counter
	table    *shadow.Table
	producer *TickProducer
	observer *Observer
	logger   *slog.Logger

	observerOpts []ObserverOption

	mu              sync.Mutex
	producerStarted bool
	observerStarted bool
	wg              sync.WaitGroup
	errs            []error
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger for start/stop events. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithObserverOptions passes options through to the observer.
func WithObserverOptions(opts ...ObserverOption) EngineOption {
	return func(e *Engine) {
		e.observerOpts = append(e.observerOpts, opts...)
	}
}

// New binds an engine to region r and zeroes the primary counter. The shadow
// table is left as found, so a controller may configure it before or after.
func New(r *memory.Region, opts ...EngineOption) (*Engine, error) {
	if r == nil {
		return nil, ErrNilRegion
	}

	e := &Engine{
		region:  r,
		counter: radix.Attach(r),
		table:   shadow.Attach(r),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	e.counter.Store(0)
	e.producer = NewTickProducer(e.counter)
	e.observer = NewObserver(r, e.observerOpts...)
	return e, nil
}

// Start starts the observer and then the producer.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.StartObserver(ctx); err != nil {
		return err
	}
	return e.StartProducer(ctx)
}

// StartProducer launches the tick producer. It runs until ctx is done.
func (e *Engine) StartProducer(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.producerStarted {
		return fmt.Errorf("producer: %w", ErrAlreadyStarted)
	}
	e.producerStarted = true
	e.launch(ctx, "producer", e.producer.Run)
	return nil
}

// StartObserver launches the observer. It runs until ctx is done.
func (e *Engine) StartObserver(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.observerStarted {
		return fmt.Errorf("observer: %w", ErrAlreadyStarted)
	}
	e.observerStarted = true
	e.launch(ctx, "observer", e.observer.Run)
	return nil
}

// launch must be called with e.mu held.
func (e *Engine) launch(ctx context.Context, name string, run func(context.Context) error) {
	e.wg.Add(1)
	e.logger.Info("loop started", "loop", name)
	go func() {
		defer e.wg.Done()
		err := run(ctx)
		e.logger.Info("loop stopped", "loop", name)
		if err != nil && !isCancel(err) {
			e.mu.Lock()
			e.errs = append(e.errs, fmt.Errorf("%s: %w", name, err))
			e.mu.Unlock()
		}
	}()
}

// Wait blocks until every started loop has returned. Cancellation is not an
// error.
func (e *Engine) Wait() error {
	e.wg.Wait()
	e.mu.Lock()
	defer e.mu.Unlock()
	return errors.Join(e.errs...)
}

// ReadRaw returns the raw counter word.
func (e *Engine) ReadRaw() uint64 { return e.counter.Read() }

// WriteRaw overwrites the raw counter word. Lowering a digit while the
// observer runs is declared as a wrap of that digit.
func (e *Engine) WriteRaw(v uint64) { e.counter.Store(v) }

// Region returns the engine's region.
func (e *Engine) Region() *memory.Region { return e.region }

// Counter returns the primary counter.
func (e *Engine) Counter() *radix.Counter { return e.counter }

// Table returns the shadow table.
func (e *Engine) Table() *shadow.Table { return e.table }

// Observer returns the observer, for its statistics.
func (e *Engine) Observer() *Observer { return e.observer }

// Producer returns the tick producer.
func (e *Engine) Producer() *TickProducer { return e.producer }
