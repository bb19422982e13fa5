// Package bidder runs one party of an auction on top of a BidderStrategy.
package bidder

import (
	"fmt"

	"github.com/cloudx-io/sealedbid/core"
	"github.com/cloudx-io/sealedbid/strategy"
)

// Bidder owns one party's ledger. It asks its strategy for bids, enforces
// that a bid never exceeds the remaining cash, and records what it won.
type Bidder struct {
	id        string
	state     core.BidderState
	strategy  strategy.BidderStrategy
	evaluator core.WinEvaluator
	ctx       *core.BidderContext
}

type options struct {
	idGenerator IDGenerator
}

// Option configures a Bidder.
type Option func(*options)

// WithIDGenerator replaces the random identifier source.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.idGenerator = gen
		}
	}
}

// New registers a bidder with quantity and cash in ctx under an identifier no
// other party of ctx uses. A nil evaluator uses core.DefaultWinEvaluator.
func New(quantity, cash int, strat strategy.BidderStrategy, evaluator core.WinEvaluator, ctx *core.BidderContext, opts ...Option) (*Bidder, error) {
	if strat == nil {
		return nil, fmt.Errorf("%w: strategy is required", core.ErrInvalidArgument)
	}
	if ctx == nil {
		return nil, fmt.Errorf("%w: bidder context is required", core.ErrInvalidArgument)
	}
	if quantity < 0 || cash < 0 {
		return nil, fmt.Errorf("%w: quantity and cash must be non-negative (quantity=%d, cash=%d)", core.ErrInvalidArgument, quantity, cash)
	}
	if evaluator == nil {
		evaluator = core.DefaultWinEvaluator{}
	}

	o := options{idGenerator: defaultIDGenerator}
	for _, opt := range opts {
		opt(&o)
	}

	id, err := uniqueID(ctx, o.idGenerator)
	if err != nil {
		return nil, err
	}

	b := &Bidder{
		id:        id,
		strategy:  strat,
		evaluator: evaluator,
		ctx:       ctx,
	}
	if err := b.Init(quantity, cash); err != nil {
		return nil, err
	}
	return b, nil
}

func uniqueID(ctx *core.BidderContext, gen IDGenerator) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := gen()
		if id != "" && !ctx.HasID(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no unique bidder id after %d attempts", core.ErrConstruction, maxIDAttempts)
}

// Init replaces the ledger with a fresh one, keeps the identifier and
// republishes the state into the shared context.
func (b *Bidder) Init(quantity, cash int) error {
	state, err := core.NewBidderState(b.id, quantity, cash)
	if err != nil {
		return fmt.Errorf("init bidder %s: %w", b.id, err)
	}
	b.state = state
	b.ctx.PutState(state)
	return nil
}

// PlaceBid returns the next bid, 0 when the strategy sits the round out.
// The bid is deducted from cash. A bid above the remaining cash is an
// ErrInternalStrategy and leaves the ledger untouched.
func (b *Bidder) PlaceBid() (int, error) {
	bid, err := b.ProposeBid()
	if err != nil {
		return 0, err
	}
	b.Commit(bid)
	return bid, nil
}

// ProposeBid asks the strategy for its bid and checks it against the
// remaining cash without paying it. Commit settles a proposed bid.
func (b *Bidder) ProposeBid() (int, error) {
	bid, ok := b.strategy.NextBid(b.state, b.ctx)
	if !ok {
		return 0, nil
	}

	if bid < 0 || bid > b.state.Cash {
		return 0, fmt.Errorf("%w: bidder %s proposed %d with %d cash left", core.ErrInternalStrategy, b.id, bid, b.state.Cash)
	}
	return bid, nil
}

// Commit deducts a bid returned by ProposeBid.
func (b *Bidder) Commit(bid int) {
	b.state.Cash -= bid
}

// Bids records the outcome of a round: the evaluator's award is added to the
// quantity won and the strategy moves to the next round.
func (b *Bidder) Bids(ownBid, otherBid int) error {
	if ownBid < 0 || otherBid < 0 {
		return fmt.Errorf("%w: bids must be non-negative (own=%d, other=%d)", core.ErrInvalidArgument, ownBid, otherBid)
	}

	won, err := b.evaluator.Evaluate(ownBid, otherBid)
	if err != nil {
		return fmt.Errorf("bidder %s: %w", b.id, err)
	}

	b.state.QuantityWon += won
	b.strategy.FinishRound()
	return nil
}

// State returns a copy of the current ledger.
func (b *Bidder) State() core.BidderState {
	return b.state
}

func (b *Bidder) ID() string {
	return b.id
}
