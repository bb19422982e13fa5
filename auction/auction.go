// Package auction runs a repeated sealed-bid auction between two bidders.
package auction

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cloudx-io/sealedbid/bidder"
	"github.com/cloudx-io/sealedbid/core"
	"github.com/cloudx-io/sealedbid/strategy"
	"github.com/cloudx-io/sealedbid/validation"
)

// Auction owns two bidders, their shared context and the verifier. It is the
// only writer of the context once the bidders are registered.
type Auction struct {
	totalQuantity int
	baseCash      int
	maxRounds     int

	ctx      *core.BidderContext
	own      *bidder.Bidder
	other    *bidder.Bidder
	verifier *validation.Verifier
	logger   *zap.Logger

	result *Result
}

// New validates the configuration before building anything: totalQuantity must
// be a positive even number, baseCash non-negative and both strategies present.
func New(totalQuantity, baseCash int, own, other strategy.BidderStrategy, opts ...Option) (*Auction, error) {
	if totalQuantity <= 0 || totalQuantity%2 != 0 {
		return nil, constructionError("total quantity must be a positive even number, got %d", totalQuantity)
	}
	if baseCash < 0 {
		return nil, constructionError("base cash must be non-negative, got %d", baseCash)
	}
	if own == nil || other == nil {
		return nil, constructionError("both bidder strategies are required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var bidderOpts []bidder.Option
	if o.idGenerator != nil {
		bidderOpts = append(bidderOpts, bidder.WithIDGenerator(o.idGenerator))
	}

	ctx := core.NewBidderContext()
	ownBidder, err := bidder.New(totalQuantity, baseCash, own, o.evaluator, ctx, bidderOpts...)
	if err != nil {
		return nil, fmt.Errorf("create own bidder: %w", err)
	}
	otherBidder, err := bidder.New(totalQuantity, baseCash, other, o.evaluator, ctx, bidderOpts...)
	if err != nil {
		return nil, fmt.Errorf("create other bidder: %w", err)
	}

	verifier := validation.NewVerifier(
		core.NewAuctionState(totalQuantity, baseCash),
		o.roundRules,
		o.finalRules,
		core.NewAuctionStateUpdater(o.evaluator, o.evaluator),
	)

	return &Auction{
		totalQuantity: totalQuantity,
		baseCash:      baseCash,
		maxRounds:     totalQuantity / core.QuantityPerRound,
		ctx:           ctx,
		own:           ownBidder,
		other:         otherBidder,
		verifier:      verifier,
		logger:        o.logger,
	}, nil
}

func constructionError(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", core.ErrConstruction, core.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// MaxRounds is totalQuantity / 2.
func (a *Auction) MaxRounds() int {
	return a.maxRounds
}

// OwnID and OtherID identify the two parties in the context and the history.
func (a *Auction) OwnID() string {
	return a.own.ID()
}

func (a *Auction) OtherID() string {
	return a.other.ID()
}

// Context exposes the shared context for inspection.
func (a *Auction) Context() core.ContextReader {
	return a.ctx
}

// Run plays the auction to its end and returns the outcome. The auction is
// played once; later calls return the same result.
func (a *Auction) Run() *Result {
	if a.result != nil {
		return a.result
	}

	logger := a.logger.With(
		zap.String("own_id", a.own.ID()),
		zap.String("other_id", a.other.ID()),
	)
	logger.Info("auction started",
		zap.Int("total_quantity", a.totalQuantity),
		zap.Int("base_cash", a.baseCash),
		zap.Int("max_rounds", a.maxRounds),
	)

	result := &Result{
		Status:    StatusCompleted,
		MaxRounds: a.maxRounds,
	}

	for round := 1; round <= a.maxRounds; round++ {
		if err := a.playRound(round, logger); err != nil {
			logger.Error("auction aborted",
				zap.Int("round", round),
				zap.Error(err),
			)
			result.Status = StatusAbortedEarly
			result.AbortReason = fmt.Errorf("round %d: %w", round, err)
			break
		}
		result.RoundsPlayed = round
	}

	if err := a.verifier.VerifyFinalState(); err != nil {
		logger.Warn("final validation failed", zap.Error(err))
		result.FinalValidationErr = err
	}

	result.State = a.verifier.State()
	result.Own = a.own.State()
	result.Other = a.other.State()
	result.History = a.ctx.History()

	if result.Status == StatusCompleted {
		result.Winner = decideWinner(result.State)
		logger.Info("auction completed",
			zap.String("winner", string(result.Winner)),
			zap.Int("own_quantity_won", result.State.OwnQuantityWon),
			zap.Int("other_quantity_won", result.State.OtherQuantityWon),
			zap.Int("own_cash", result.State.OwnCash),
			zap.Int("other_cash", result.State.OtherCash),
		)
	}

	a.result = result
	return result
}

// playRound runs one round: both bids are placed before either party learns
// the other's, then outcomes are applied, published and verified. Neither bid
// is paid until both are accepted, so a strategy fault leaves every ledger as
// it was.
func (a *Auction) playRound(round int, logger *zap.Logger) error {
	ownBid, err := a.own.ProposeBid()
	if err != nil {
		return fmt.Errorf("own bid: %w", err)
	}
	otherBid, err := a.other.ProposeBid()
	if err != nil {
		return fmt.Errorf("other bid: %w", err)
	}
	a.own.Commit(ownBid)
	a.other.Commit(otherBid)

	if err := a.own.Bids(ownBid, otherBid); err != nil {
		return fmt.Errorf("own outcome: %w", err)
	}
	if err := a.other.Bids(otherBid, ownBid); err != nil {
		return fmt.Errorf("other outcome: %w", err)
	}

	a.ctx.AppendRound(core.NewRoundRecord(map[string]int{
		a.own.ID():   ownBid,
		a.other.ID(): otherBid,
	}))
	a.ctx.PutState(a.own.State())
	a.ctx.PutState(a.other.State())

	logger.Debug("round played",
		zap.Int("round", round),
		zap.Int("own_bid", ownBid),
		zap.Int("other_bid", otherBid),
	)

	if err := a.verifier.VerifyRound(ownBid, otherBid); err != nil {
		return fmt.Errorf("verify round: %w", err)
	}
	return nil
}
