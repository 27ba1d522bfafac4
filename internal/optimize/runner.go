package optimize

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/storyweaver/internal/llm"
	"github.com/jonathan/storyweaver/internal/types"
	"github.com/jonathan/storyweaver/internal/usage"
)

// DefaultConcurrency bounds in-flight optimization calls per document
const DefaultConcurrency = 4

// Optimizer is the part of llm.Provider the runner needs
type Optimizer interface {
	Optimize(ctx context.Context, req types.OptimizationRequest) (*types.OptimizationResponse, error)
	Model() llm.Model
}

// Result is the outcome of one optimization phase
type Result struct {
	// Stories holds one entry per input story, in input order
	Stories   []*types.Story
	Attempted int
	Optimized int
	Failed    int
}

// Runner optimizes qualifying stories through a bounded worker pool
type Runner struct {
	optimizer   Optimizer
	ledger      *usage.Ledger
	logger      *zap.Logger
	concurrency int
	goals       []string
}

// Option configures a Runner
type Option func(*Runner)

// WithLedger records every successful call in l
func WithLedger(l *usage.Ledger) Option {
	return func(r *Runner) { r.ledger = l }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConcurrency sets the worker pool size. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.concurrency = n
		}
	}
}

// WithGoals sets the optimization goals sent with every request
func WithGoals(goals []string) Option {
	return func(r *Runner) { r.goals = append([]string(nil), goals...) }
}

// NewRunner creates a runner. A nil optimizer disables optimization: Run
// then returns every story unchanged without dispatching anything.
func NewRunner(optimizer Optimizer, opts ...Option) *Runner {
	r := &Runner{
		optimizer:   optimizer,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether the runner dispatches anything
func (r *Runner) Enabled() bool {
	return r != nil && r.optimizer != nil
}

type outcome int

const (
	skipped outcome = iota
	optimized
	failed
)

// Run optimizes the qualifying stories and returns once every call has
// settled. Failures keep the original story; they never fail the phase and
// never cancel sibling calls.
func (r *Runner) Run(ctx context.Context, stories []*types.Story) Result {
	res := Result{Stories: append([]*types.Story(nil), stories...)}
	if !r.Enabled() {
		return res
	}

	outcomes := make([]outcome, len(stories))
	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, story := range stories {
		if !ShouldOptimize(story) {
			continue
		}
		g.Go(func() error {
			if out := r.optimizeOne(ctx, story); out != nil {
				res.Stories[i] = out
				outcomes[i] = optimized
			} else {
				outcomes[i] = failed
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		switch o {
		case optimized:
			res.Attempted++
			res.Optimized++
		case failed:
			res.Attempted++
			res.Failed++
		}
	}
	return res
}

// optimizeOne returns the optimized story, or nil when the call failed
func (r *Runner) optimizeOne(ctx context.Context, story *types.Story) *types.Story {
	start := time.Now()
	resp, err := r.optimizer.Optimize(ctx, types.OptimizationRequest{
		Story:             story,
		SourceContext:     story.SourceReference.SentenceText,
		OptimizationGoals: r.goals,
	})
	if err != nil {
		r.logger.Warn("story optimization failed, keeping heuristic version",
			zap.String("story_id", story.ID),
			zap.String("model", string(r.optimizer.Model())),
			zap.String("code", string(llm.CodeOf(err))),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil
	}
	if resp == nil || resp.OptimizedStory == nil {
		r.logger.Warn("optimizer returned no story", zap.String("story_id", story.ID))
		return nil
	}

	if r.ledger != nil {
		r.ledger.Record(resp.Model, resp.Cost.PromptTokens, resp.Cost.CompletionTokens, resp.Timing.Total)
	}
	r.logger.Info("story optimized",
		zap.String("story_id", story.ID),
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.Cost.TotalTokens),
		zap.Float64("confidence", resp.Confidence),
		zap.Duration("duration", resp.Timing.Total),
	)
	return resp.OptimizedStory
}
