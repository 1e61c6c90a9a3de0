// Package backcast is a rolling-origin back-testing harness for time-series
// forecasting models. It windows a time-indexed frame into temporally
// ordered folds, drives heterogeneous model adapters over every
// (model, fold) pair, calibrates residual-based prediction intervals from a
// held-out slice of each training window, and aggregates accuracy metrics
// across folds into a model ranking.
package backcast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/forecastlab/backcast/accuracy"
	"github.com/forecastlab/backcast/models"
	"github.com/forecastlab/backcast/split"
	"github.com/forecastlab/backcast/timeframe"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoFrame           = errors.New("no time series frame")
	ErrNoAdapters        = errors.New("no model adapters registered")
	ErrAdapterExists     = errors.New("model id already registered")
	ErrNoSplits          = errors.New("frame too short for any rolling-origin split")
	ErrPairTimeout       = errors.New("pair abandoned after timeout")
	ErrNoSuccessfulPairs = errors.New("every (model, split) pair failed")
)

// Backtester runs registered model adapters over the rolling-origin folds of
// a single frame. The frame is shared read-only across all concurrent pairs;
// each pair owns its fitted model state exclusively.
type Backtester struct {
	opt      *Options
	frame    *timeframe.Frame
	order    []string
	adapters map[string]models.Adapter
}

// New creates a Backtester over a built frame. If opt is nil a default is
// used.
func New(frame *timeframe.Frame, opt *Options) (*Backtester, error) {
	if frame == nil {
		return nil, ErrNoFrame
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Backtester{
		opt:      opt,
		frame:    frame,
		adapters: make(map[string]models.Adapter),
	}, nil
}

// Register adds a model adapter under a unique id.
func (b *Backtester) Register(modelID string, adapter models.Adapter) error {
	if _, ok := b.adapters[modelID]; ok {
		return fmt.Errorf("%q, %w", modelID, ErrAdapterExists)
	}
	b.adapters[modelID] = adapter
	b.order = append(b.order, modelID)
	return nil
}

// Run back-tests every registered adapter over every fold. Pair-level
// failures are recorded in the report and logged, never fatal; cancelling
// the context stops scheduling of not-yet-started pairs while completed
// pairs stay in the report. Run returns ErrNoSuccessfulPairs alongside the
// report when nothing completed.
func (b *Backtester) Run(ctx context.Context) (*Report, error) {
	if len(b.adapters) == 0 {
		return nil, ErrNoAdapters
	}

	splits, err := split.Generate(b.frame.Len(), &split.Options{
		InitialWindow: b.opt.InitialWindow,
		AssessWindow:  b.opt.AssessWindow,
		Step:          b.opt.Step,
		MaxSplits:     b.opt.MaxSplits,
	})
	if err != nil {
		return nil, err
	}
	if len(splits) == 0 {
		return nil, fmt.Errorf("%d observations with initial window %d and assess window %d, %w",
			b.frame.Len(), b.opt.InitialWindow, b.opt.AssessWindow, ErrNoSplits)
	}

	var failures []PairFailure

	// adapters with unavailable required features fail as a whole before
	// any fitting, covering every fold at once
	runnable := make([]string, 0, len(b.order))
	for _, modelID := range b.order {
		if err := b.frame.HasColumns(b.adapters[modelID].Requires()); err != nil {
			err = fmt.Errorf("%v, %w", err, models.ErrMissingFeature)
			failures = append(failures, PairFailure{ModelID: modelID, SplitID: -1, Err: err})
			b.opt.Logger.Warn("skipping model, required feature missing",
				"model", modelID, "error", err)
			continue
		}
		runnable = append(runnable, modelID)
	}

	var (
		mu          sync.Mutex
		foldRecords = make(map[int][]ForecastRecord, len(splits))
		folds       []accuracy.Fold
	)

	var eg errgroup.Group
	eg.SetLimit(b.opt.Parallelism)

scheduling:
	for splitID, sp := range splits {
		for _, modelID := range runnable {
			if ctx.Err() != nil {
				break scheduling
			}
			adapter := b.adapters[modelID]
			eg.Go(func() error {
				recs, fold, err := b.runPairAbandonable(ctx, modelID, adapter, splitID, sp)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures = append(failures, PairFailure{ModelID: modelID, SplitID: splitID, Err: err})
					b.opt.Logger.Warn("pair failed",
						"model", modelID, "split", splitID, "error", err)
					return nil
				}
				foldRecords[splitID] = append(foldRecords[splitID], recs...)
				if fold != nil {
					folds = append(folds, *fold)
				}
				return nil
			})
		}
	}

	// cross-fold aggregation must observe every fold of every model
	_ = eg.Wait()

	report := b.assembleReport(len(splits), foldRecords, folds, failures)
	if len(report.Records) == 0 {
		return report, ErrNoSuccessfulPairs
	}
	return report, nil
}

// runPairAbandonable runs one pair in its own goroutine so an expired pair
// timeout or a run-level cancellation abandons it without blocking the
// scheduler. Fitting itself is atomic; an abandoned fit finishes in the
// background and its result is discarded.
func (b *Backtester) runPairAbandonable(ctx context.Context, modelID string, adapter models.Adapter, splitID int, sp split.Split) ([]ForecastRecord, *accuracy.Fold, error) {
	type outcome struct {
		recs []ForecastRecord
		fold *accuracy.Fold
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		recs, fold, err := b.runPair(modelID, adapter, splitID, sp)
		done <- outcome{recs: recs, fold: fold, err: err}
	}()

	var timeout <-chan struct{}
	if b.opt.PairTimeout > 0 {
		tctx, cancel := context.WithTimeout(context.Background(), b.opt.PairTimeout)
		defer cancel()
		timeout = tctx.Done()
	}

	select {
	case out := <-done:
		return out.recs, out.fold, out.err
	case <-timeout:
		return nil, nil, fmt.Errorf("%s after %s, %w", modelID, b.opt.PairTimeout, ErrPairTimeout)
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%w: %v", ErrPairTimeout, ctx.Err())
	}
}

// assembleReport flattens the fold-indexed records deterministically and
// reduces the fold metrics into the ranking.
func (b *Backtester) assembleReport(numSplits int, foldRecords map[int][]ForecastRecord, folds []accuracy.Fold, failures []PairFailure) *Report {
	var records []ForecastRecord
	for splitID := 0; splitID < numSplits; splitID++ {
		recs := foldRecords[splitID]
		sort.SliceStable(recs, func(i, j int) bool {
			if recs[i].ModelID != recs[j].ModelID {
				return recs[i].ModelID < recs[j].ModelID
			}
			return recs[i].T.Before(recs[j].T)
		})
		records = append(records, recs...)
	}

	sort.SliceStable(folds, func(i, j int) bool {
		if folds[i].ModelID != folds[j].ModelID {
			return folds[i].ModelID < folds[j].ModelID
		}
		return folds[i].SplitID < folds[j].SplitID
	})
	sort.SliceStable(failures, func(i, j int) bool {
		if failures[i].ModelID != failures[j].ModelID {
			return failures[i].ModelID < failures[j].ModelID
		}
		return failures[i].SplitID < failures[j].SplitID
	})

	return &Report{
		Records:   records,
		Folds:     folds,
		Summaries: accuracy.Aggregate(folds),
		Failures:  failures,
	}
}
