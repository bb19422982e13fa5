package strategy

import "github.com/cloudx-io/sealedbid/core"

// Random bids uniformly in [1, min(cash, max(1, initialQuantity/2 - 1))].
type Random struct {
	roundTracker
	rnd RandSource
}

var _ BidderStrategy = (*Random)(nil)

// NewRandom returns a Random strategy. A nil rnd uses crypto/rand.
func NewRandom(params Parameters, rnd RandSource) *Random {
	if rnd == nil {
		rnd = defaultRandSource
	}
	r := &Random{rnd: rnd}
	r.Init(params)
	return r
}

func (r *Random) NextBid(own core.BidderState, _ core.ContextReader) (int, bool) {
	r.observe(own)

	if r.roundsExhausted() || own.Cash <= 0 {
		return 0, false
	}

	upper := min(own.Cash, r.halfQuantityCap())
	return r.rnd.Intn(upper) + 1, true
}
