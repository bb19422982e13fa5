package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/cloudx-io/sealedbid/core"
)

// Balanced commits a fixed share of the remaining cash every round:
// cash * greediness * reward/(risk+reward), rounded half away from zero.
type Balanced struct {
	roundTracker
}

var _ BidderStrategy = (*Balanced)(nil)

// NewBalanced returns a Balanced strategy initialized with params.
func NewBalanced(params Parameters) *Balanced {
	b := &Balanced{}
	b.Init(params)
	return b
}

func (b *Balanced) NextBid(own core.BidderState, _ core.ContextReader) (int, bool) {
	b.observe(own)

	if b.roundsExhausted() || own.Cash <= 0 {
		return 0, false
	}

	risk, reward := b.params.RiskReward.Risk, b.params.RiskReward.Reward
	if risk+reward == 0 {
		return 0, false
	}

	// Multiply first and divide once so shares like 2/3 do not lose the rounding boundary.
	estimate := decimal.NewFromInt(int64(own.Cash)).
		Mul(b.params.Greediness.Multiplier()).
		Mul(decimal.NewFromInt(int64(reward))).
		Div(decimal.NewFromInt(int64(risk + reward))).
		Round(0).
		IntPart()

	bid := min(int(estimate), b.initialQuantity/2-1)
	bid = max(1, min(bid, own.Cash))
	return bid, true
}
