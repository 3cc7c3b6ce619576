// Package runner plans loads on background goroutines. A newer submission
// supersedes older ones, so callers that re-plan on every edit only act on
// the latest outcome.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/piwi3910/cargoplan/internal/engine"
	"github.com/piwi3910/cargoplan/internal/export"
	"github.com/piwi3910/cargoplan/internal/model"
)

// Request is one planning job.
type Request struct {
	Pieces     []model.CargoPiece
	Container  model.ContainerSpec
	Thresholds model.Thresholds
	// Catalog is searched for alternative containers; may be empty.
	Catalog []model.ContainerSpec
	// Order, when set, fixes the loading order as indices into Pieces.
	Order []int
}

// Outcome is the result of one submission. The embedded Report is what the
// export writers take. Stale outcomes were superseded by a later submission
// and should be ignored.
type Outcome struct {
	export.Report
	Seq      uint64
	Duration time.Duration
	Stale    bool
	Err      error
}

// Runner plans and builds the advisor report off the caller's goroutine.
type Runner struct {
	optimizer *engine.Optimizer
	metrics   *Metrics
	logger    *slog.Logger

	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// test hooks, called with the submission's context
	beforePlan func(context.Context)
	afterPlan  func(context.Context)
}

// New creates a runner. Nil metrics or logger are replaced with unregistered
// collectors and slog.Default.
func New(optimizer *engine.Optimizer, metrics *Metrics, logger *slog.Logger) *Runner {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{optimizer: optimizer, metrics: metrics, logger: logger}
}

// Submit starts planning req and returns a channel that receives exactly one
// Outcome and is then closed. Any earlier submission still in flight is
// canceled and marked stale.
func (r *Runner) Submit(ctx context.Context, req Request) <-chan Outcome {
	r.mu.Lock()
	r.latest++
	seq := r.latest
	if r.cancel != nil {
		r.cancel()
	}
	jobCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	r.logger.Debug("plan submitted", "seq", seq, "pieces", len(req.Pieces), "container", req.Container.DisplayName())

	out := make(chan Outcome, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(out)
		defer cancel()

		start := time.Now()
		outcome := r.run(jobCtx, seq, req)
		outcome.Duration = time.Since(start)
		r.observe(outcome)
		out <- outcome
	}()
	return out
}

// Wait blocks until every submitted job has delivered its outcome.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) isLatest(seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest == seq
}

func (r *Runner) run(ctx context.Context, seq uint64, req Request) Outcome {
	outcome := Outcome{Seq: seq}

	if r.beforePlan != nil {
		r.beforePlan(ctx)
	}
	if err := ctx.Err(); err != nil {
		outcome.Err = err
		outcome.Stale = !r.isLatest(seq)
		return outcome
	}

	var (
		result model.OptimizationResult
		err    error
	)
	if req.Order != nil {
		result, err = r.optimizer.PlanOrdered(req.Pieces, req.Container, req.Order)
	} else {
		result, err = r.optimizer.Plan(req.Pieces, req.Container)
	}
	if err != nil {
		outcome.Err = err
		outcome.Stale = !r.isLatest(seq)
		return outcome
	}
	outcome.Result = result

	if r.afterPlan != nil {
		r.afterPlan(ctx)
	}

	outcome.Report = export.BuildReport(result, req.Thresholds, req.Catalog)
	outcome.Stale = !r.isLatest(seq)
	return outcome
}

func (r *Runner) observe(o Outcome) {
	label := outcomeOK
	switch {
	case o.Stale:
		label = outcomeStale
	case errors.Is(o.Err, context.Canceled), errors.Is(o.Err, context.DeadlineExceeded):
		label = outcomeCanceled
	case o.Err != nil:
		label = outcomeError
	}
	r.metrics.Plans.WithLabelValues(label).Inc()

	if o.Err != nil {
		r.logger.Warn("plan failed", "seq", o.Seq, "stale", o.Stale, "error", o.Err)
		return
	}

	r.metrics.Duration.Observe(o.Duration.Seconds())
	r.metrics.Pieces.WithLabelValues("placed").Add(float64(len(o.Result.Placed)))
	r.metrics.Pieces.WithLabelValues("unplaced").Add(float64(len(o.Result.Unplaced)))

	r.logger.Info("plan finished",
		"seq", o.Seq,
		"stale", o.Stale,
		"placed", len(o.Result.Placed),
		"unplaced", len(o.Result.Unplaced),
		"utilization", o.Result.UtilizationPercent,
		"exceptions", len(o.Exceptions),
		"duration", o.Duration,
	)
}
