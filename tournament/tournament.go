// Package tournament plays many independent auctions and tallies the outcomes.
package tournament

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cloudx-io/sealedbid/auction"
	"github.com/cloudx-io/sealedbid/core"
	"github.com/cloudx-io/sealedbid/strategy"
)

// StrategyFactory builds a fresh strategy for the given run number (0-based).
// Strategies keep per-auction state, so every run needs its own.
type StrategyFactory func(run int) (strategy.BidderStrategy, error)

// Spec describes a tournament.
type Spec struct {
	TotalQuantity int
	BaseCash      int
	Runs          int
	// Workers bounds the number of auctions played at once; values <= 0 mean 1.
	Workers int

	Own   StrategyFactory
	Other StrategyFactory

	// AuctionOptions are applied to every auction after the tournament's own logger option.
	AuctionOptions []auction.Option
	Logger         *zap.Logger
}

// Summary tallies a tournament. Results is indexed by run number.
type Summary struct {
	Runs          int
	OwnWins       int
	OtherWins     int
	Ties          int
	Aborted       int
	FinalFailures int

	OwnQuantityWon   int
	OtherQuantityWon int

	Results []*auction.Result
}

// WinRate returns the share of runs that ended with winner, rounded to 4 places.
func (s *Summary) WinRate(winner auction.Winner) decimal.Decimal {
	if s.Runs == 0 {
		return decimal.Zero
	}

	var count int
	switch winner {
	case auction.WinnerOwn:
		count = s.OwnWins
	case auction.WinnerOther:
		count = s.OtherWins
	case auction.WinnerTie:
		count = s.Ties
	default:
		count = s.Aborted
	}
	return decimal.NewFromInt(int64(count)).Div(decimal.NewFromInt(int64(s.Runs))).Round(4)
}

// Run plays spec.Runs auctions, at most spec.Workers at a time. Each auction
// is single-threaded and shares nothing with the others. A construction error
// stops the tournament; aborted auctions are counted, not returned as errors.
func Run(ctx context.Context, spec Spec) (*Summary, error) {
	if spec.Runs <= 0 {
		return nil, fmt.Errorf("%w: runs must be positive, got %d", core.ErrConstruction, spec.Runs)
	}
	if spec.Own == nil || spec.Other == nil {
		return nil, fmt.Errorf("%w: both strategy factories are required", core.ErrConstruction)
	}

	logger := spec.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := spec.Workers
	if workers <= 0 {
		workers = 1
	}

	logger.Info("tournament started",
		zap.Int("runs", spec.Runs),
		zap.Int("workers", workers),
		zap.Int("total_quantity", spec.TotalQuantity),
		zap.Int("base_cash", spec.BaseCash),
	)

	results := make([]*auction.Result, spec.Runs)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for run := 0; run < spec.Runs; run++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := playOne(spec, run, logger.With(zap.Int("run", run)))
			if err != nil {
				return fmt.Errorf("run %d: %w", run, err)
			}
			results[run] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := summarize(results)
	logger.Info("tournament finished",
		zap.Int("own_wins", summary.OwnWins),
		zap.Int("other_wins", summary.OtherWins),
		zap.Int("ties", summary.Ties),
		zap.Int("aborted", summary.Aborted),
		zap.Int("final_failures", summary.FinalFailures),
	)
	return summary, nil
}

func playOne(spec Spec, run int, logger *zap.Logger) (*auction.Result, error) {
	own, err := spec.Own(run)
	if err != nil {
		return nil, fmt.Errorf("own strategy: %w", err)
	}
	other, err := spec.Other(run)
	if err != nil {
		return nil, fmt.Errorf("other strategy: %w", err)
	}

	opts := append([]auction.Option{auction.WithLogger(logger)}, spec.AuctionOptions...)
	a, err := auction.New(spec.TotalQuantity, spec.BaseCash, own, other, opts...)
	if err != nil {
		return nil, err
	}
	return a.Run(), nil
}

func summarize(results []*auction.Result) *Summary {
	s := &Summary{Runs: len(results), Results: results}
	for _, r := range results {
		switch {
		case r.Status == auction.StatusAbortedEarly:
			s.Aborted++
		case r.Winner == auction.WinnerOwn:
			s.OwnWins++
		case r.Winner == auction.WinnerOther:
			s.OtherWins++
		default:
			s.Ties++
		}
		if r.FinalValidationErr != nil {
			s.FinalFailures++
		}
		s.OwnQuantityWon += r.State.OwnQuantityWon
		s.OtherQuantityWon += r.State.OtherQuantityWon
	}
	return s
}

// Named returns a factory building the named strategy with params. A non-zero
// seed gives every run its own reproducible source derived from seed and run;
// seed 0 uses crypto/rand.
func Named(name string, params strategy.Parameters, seed uint64) StrategyFactory {
	return func(run int) (strategy.BidderStrategy, error) {
		var rnd strategy.RandSource
		if seed != 0 {
			rnd = strategy.NewSeededSource(seed + uint64(run))
		}
		return strategy.New(name, params, rnd)
	}
}

// Scripted returns a factory replaying bids in every run.
func Scripted(bids ...int) StrategyFactory {
	return func(int) (strategy.BidderStrategy, error) {
		return strategy.NewScripted(bids...), nil
	}
}
