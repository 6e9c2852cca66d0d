// Package walkforward re-slices a long history into train/test folds and
// evaluates the scoring pipeline fold by fold to measure regime sensitivity.
package walkforward

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/wave3-backtester/internal/candle"
	"github.com/your-org/wave3-backtester/internal/config"
	"github.com/your-org/wave3-backtester/internal/filter"
	"github.com/your-org/wave3-backtester/internal/indicator"
	"github.com/your-org/wave3-backtester/internal/report"
	"github.com/your-org/wave3-backtester/internal/signal"
	"github.com/your-org/wave3-backtester/internal/simulator"
	"github.com/your-org/wave3-backtester/pkg/logger"
)

// Fold is one train/test window pair. The train window establishes indicator
// warm-up only; no parameter fitting happens in-core.
type Fold struct {
	Number     int       `json:"number"`
	TrainStart time.Time `json:"train_start"`
	TestStart  time.Time `json:"test_start"`
	TestEnd    time.Time `json:"test_end"`

	trainStartIdx int
	testStartIdx  int
	testEndIdx    int
}

// Result is the outcome of evaluating one fold. A fold-level failure is
// recorded here and never aborts sibling folds.
type Result struct {
	Fold   Fold              `json:"fold"`
	Trades []simulator.Trade `json:"trades"`
	Stats  report.Stats      `json:"stats"`
	Err    error             `json:"-"`
}

// Consistency summarizes how stable the strategy is across folds.
type Consistency struct {
	WinRateMean float64 `json:"win_rate_mean"`
	WinRateStd  float64 `json:"win_rate_std"`
	ReturnMean  float64 `json:"return_mean"`
	ReturnStd   float64 `json:"return_std"`
	SharpeMean  float64 `json:"sharpe_mean"`
	SharpeStd   float64 `json:"sharpe_std"`
}

// RunResult is the full output of one walk-forward run.
type RunResult struct {
	RunID       string      `json:"run_id"`
	Symbol      string      `json:"symbol"`
	Folds       []Result    `json:"folds"`
	Consistency Consistency `json:"consistency"`
}

// BuildFolds lays calendar-day test windows across the series, each preceded
// by a warm-up train window clamped to the available history. Test windows
// are disjoint when StepDays >= TestDays and contiguous when they are equal,
// so no trade is ever counted in two folds.
func BuildFolds(series candle.Series, cfg config.WalkForwardConfig) ([]Fold, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("cannot build folds over an empty series")
	}
	first := series.Bars[0].Time
	last := series.Bars[series.Len()-1].Time

	var folds []Fold
	for k := 0; ; k++ {
		testStart := first.AddDate(0, 0, k*cfg.StepDays)
		if !testStart.Before(last) {
			break
		}
		testEnd := testStart.AddDate(0, 0, cfg.TestDays)
		trainStart := testStart.AddDate(0, 0, -cfg.TrainDays)

		testStartIdx := series.IndexAtOrAfter(testStart)
		testEndIdx := series.IndexAtOrAfter(testEnd)
		trainStartIdx := series.IndexAtOrAfter(trainStart)
		if testStartIdx >= testEndIdx {
			continue // no bars in this test window
		}

		folds = append(folds, Fold{
			Number:        len(folds) + 1,
			TrainStart:    trainStart,
			TestStart:     testStart,
			TestEnd:       testEnd,
			trainStartIdx: trainStartIdx,
			testStartIdx:  testStartIdx,
			testEndIdx:    testEndIdx,
		})
	}

	if len(folds) < cfg.MinFolds {
		return nil, fmt.Errorf("series yields %d folds, need at least %d", len(folds), cfg.MinFolds)
	}
	return folds, nil
}

// Runner wires the scorer, filter and simulator into per-fold evaluations.
type Runner struct {
	cfg       *config.Config
	predictor filter.Predictor
}

// NewRunner creates a Runner. predictor may be nil (pure rule-based run).
func NewRunner(cfg *config.Config, predictor filter.Predictor) *Runner {
	return &Runner{cfg: cfg, predictor: predictor}
}

// Run evaluates every fold and aggregates cross-fold consistency. Folds share
// no mutable state and are evaluated in parallel, bounded by
// WalkForward.MaxParallel when it is positive.
func (r *Runner) Run(ctx context.Context, series candle.Series) (*RunResult, error) {
	folds, err := BuildFolds(series, r.cfg.WalkForward)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(folds))
	workers := r.cfg.WalkForward.MaxParallel
	if workers <= 0 || workers > len(folds) {
		workers = len(folds)
	}

	var wg sync.WaitGroup
	foldCh := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range foldCh {
				results[idx] = r.evaluateFold(ctx, series, folds[idx])
			}
		}()
	}
	for idx := range folds {
		foldCh <- idx
	}
	close(foldCh)
	wg.Wait()

	run := &RunResult{
		RunID:       uuid.New().String(),
		Symbol:      series.Symbol,
		Folds:       results,
		Consistency: consistency(results),
	}
	return run, nil
}

// evaluateFold recomputes indicators over [train_start, test_end] and scores
// only within the test window, so every evaluation uses exactly the
// information available up to that point.
func (r *Runner) evaluateFold(ctx context.Context, series candle.Series, fold Fold) Result {
	if err := ctx.Err(); err != nil {
		return Result{Fold: fold, Err: err}
	}

	sub := series.Slice(fold.trainStartIdx, fold.testEndIdx)
	ind := indicator.Compute(sub, r.cfg.Indicator)
	scorer := signal.NewScorer(r.cfg.Strategy, r.cfg.Indicator)
	gate := filter.New(r.cfg.Filter, r.predictor)

	testStartLocal := fold.testStartIdx - fold.trainStartIdx
	var accepted []filter.ScoredSignal
	for i := testStartLocal; i < sub.Len(); i++ {
		sig := scorer.Score(sub, ind, i)
		if sig == nil {
			continue
		}
		scored := gate.Apply(ctx, *sig)
		if scored.Accepted() {
			accepted = append(accepted, scored)
		}
	}

	trades := simulator.New(r.cfg.Strategy.MaxHoldingBars).Run(sub, accepted)
	stats := report.Summarize(trades)
	logger.Debugf("Fold %d: %d signals, %d trades, win rate %.2f",
		fold.Number, len(accepted), len(trades), stats.WinRate)

	return Result{Fold: fold, Trades: trades, Stats: stats}
}

// consistency computes the mean and standard deviation of win rate, total
// return and Sharpe ratio across the folds that evaluated successfully.
func consistency(results []Result) Consistency {
	var winRates, returns, sharpes []float64
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		winRates = append(winRates, res.Stats.WinRate)
		returns = append(returns, res.Stats.TotalReturn.InexactFloat64())
		sharpes = append(sharpes, res.Stats.SharpeRatio)
	}

	var c Consistency
	c.WinRateMean, c.WinRateStd = meanStd(winRates)
	c.ReturnMean, c.ReturnStd = meanStd(returns)
	c.SharpeMean, c.SharpeStd = meanStd(sharpes)
	return c
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}
