// Package strategy holds the bidding heuristics a Bidder delegates to.
package strategy

import "github.com/cloudx-io/sealedbid/core"

// BidderStrategy decides the next bid of one party.
//
// NextBid returns ok=false to sit the round out. A returned bid must not exceed
// own.Cash; the Bidder treats a larger bid as a strategy fault.
type BidderStrategy interface {
	Init(params Parameters)
	NextBid(own core.BidderState, ctx core.ContextReader) (bid int, ok bool)
	FinishRound()
}

// roundTracker is the bookkeeping every built-in strategy shares: the
// parameters, a 1-based round counter and the total quantity seen on the first call.
type roundTracker struct {
	params          Parameters
	round           int
	initialQuantity int
	observed        bool
}

func (t *roundTracker) Init(params Parameters) {
	*t = roundTracker{params: params, round: 1}
}

func (t *roundTracker) FinishRound() {
	t.round++
}

// observe caches own.TotalQuantity the first time it is called after Init.
func (t *roundTracker) observe(own core.BidderState) {
	if !t.observed {
		t.initialQuantity = own.TotalQuantity
		t.observed = true
	}
}

func (t *roundTracker) roundsExhausted() bool {
	return t.params.MaxRounds > 0 && t.round > t.params.MaxRounds
}

// halfQuantityCap is max(1, initialQuantity/2 - 1).
func (t *roundTracker) halfQuantityCap() int {
	return max(1, t.initialQuantity/2-1)
}

// Round returns the 1-based number of the round the strategy will bid in next.
func (t *roundTracker) Round() int {
	return t.round
}
