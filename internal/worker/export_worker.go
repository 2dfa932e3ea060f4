package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/sheets"

	"golang.org/x/sync/errgroup"
)

// SummarySource computes monthly summaries and lists the periods holding data.
// services.SummaryService satisfies it.
type SummarySource interface {
	GetMonthly(ctx context.Context, year, month int) (core.MonthlySummary, error)
	ActivePeriods(ctx context.Context) ([]core.Period, error)
}

type Config struct {
	// ResyncInterval is the period of the full resync loop.
	ResyncInterval time.Duration
	// Concurrency bounds the periods exported in parallel during a resync.
	Concurrency int
}

func DefaultConfig() Config {
	return Config{
		ResyncInterval: 15 * time.Minute,
		Concurrency:    4,
	}
}

// ExportWorker keeps the export target in line with the database: it
// rewrites a period when notified and periodically rewrites every period.
type ExportWorker struct {
	summaries SummarySource
	writer    sheets.SummaryWriter
	config    Config

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	exported atomic.Int64
	failed   atomic.Int64
}

// NewExportWorker builds a worker. A nil writer turns every export into a no-op.
func NewExportWorker(summaries SummarySource, writer sheets.SummaryWriter, config Config) *ExportWorker {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.ResyncInterval <= 0 {
		config.ResyncInterval = DefaultConfig().ResyncInterval
	}
	return &ExportWorker{
		summaries: summaries,
		writer:    writer,
		config:    config,
	}
}

// HandlePeriodChanged processes a single period-changed message from AMQP.
func (w *ExportWorker) HandlePeriodChanged(ctx context.Context, msg *amqp.PeriodChangedMessage) error {
	logger := log.FromContext(ctx).WithComponent(log.ComponentWorker)
	logger.InfoContext(ctx, "Processing period changed message",
		"message_id", msg.ID,
		"scope", msg.Scope,
		log.FieldReason, msg.Reason)

	if msg.Scope == amqp.ScopeAll {
		_, err := w.ResyncAll(ctx)
		return err
	}
	return w.ExportPeriod(ctx, core.NewPeriod(msg.Year, msg.Month))
}

// ExportPeriod recomputes the summary of p and writes it to the export target.
func (w *ExportWorker) ExportPeriod(ctx context.Context, p core.Period) error {
	if w.writer == nil {
		return nil
	}

	summary, err := w.summaries.GetMonthly(ctx, p.Year, p.Month)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("compute summary %s: %w", p.Key(), err)
	}

	if err := w.writer.WriteSummary(ctx, summary); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("write summary %s: %w", p.Key(), err)
	}

	w.exported.Add(1)
	log.FromContext(ctx).WithComponent(log.ComponentWorker).InfoContext(ctx, "Summary exported",
		log.FieldPeriod, p.Key(),
		"balance_cents", summary.Balance.Cents)
	return nil
}

// ResyncAll exports every active period with bounded concurrency. Failures
// of single periods are collected; the returned count is the number of
// periods written.
func (w *ExportWorker) ResyncAll(ctx context.Context) (int, error) {
	if w.writer == nil {
		return 0, nil
	}

	periods, err := w.summaries.ActivePeriods(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active periods: %w", err)
	}

	var (
		mu      sync.Mutex
		errs    []error
		written atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.Concurrency)
	for _, p := range periods {
		g.Go(func() error {
			if err := w.ExportPeriod(gctx, p); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			written.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := int(written.Load())
	log.FromContext(ctx).WithComponent(log.ComponentWorker).InfoContext(ctx, "Resync completed",
		"periods", len(periods),
		"exported", n,
		"failed", len(errs))

	if err := ctx.Err(); err != nil {
		return n, err
	}
	return n, errors.Join(errs...)
}

// Start runs the periodic resync loop. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("export worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runLoop(ctx, stopCh, doneCh)

	log.FromContext(ctx).WithComponent(log.ComponentWorker).InfoContext(ctx, "Export worker started",
		"resync_interval", w.config.ResyncInterval,
		"concurrency", w.config.Concurrency)
	return nil
}

// Stop signals the loop and waits for the current resync to finish.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.running = false
	w.mu.Unlock()

	close(stopCh)

	logger := log.FromContext(ctx).WithComponent(log.ComponentWorker)
	select {
	case <-doneCh:
		logger.InfoContext(ctx, "Export worker stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnContext(ctx, "Export worker stop timed out")
		return ctx.Err()
	}
}

func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Stats reports how many period exports succeeded and failed since start.
func (w *ExportWorker) Stats() (exported, failed int64) {
	return w.exported.Load(), w.failed.Load()
}

// runLoop owns the channels of a single Start; a later Start never sees them.
func (w *ExportWorker) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.config.ResyncInterval)
	defer ticker.Stop()

	w.resync(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.resync(ctx)
		}
	}
}

func (w *ExportWorker) resync(ctx context.Context) {
	if _, err := w.ResyncAll(ctx); err != nil && ctx.Err() == nil {
		log.FromContext(ctx).WithComponent(log.ComponentWorker).ErrorContext(ctx, "Periodic resync failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork)
	}
}
