package strategy

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cloudx-io/sealedbid/core"
)

const (
	defaultAggression = 0.5
	minAggression     = 0.1
	maxAggression     = 1.0

	aggressionExponent = 0.8
	riskWeight         = 0.7
	riskFloor          = 0.3

	entropyBase   = 0.8
	entropySpread = 0.4
)

// Godlike adapts to the opponents it can see in the context. It estimates how
// aggressively they bid, what they can still afford per remaining round, and
// scales that by its own diminishing need for more units and a small random jitter.
type Godlike struct {
	roundTracker
	rnd RandSource

	// initial cash of each opponent, as first observed
	opponentCash map[string]int
}

var _ BidderStrategy = (*Godlike)(nil)

// NewGodlike returns a Godlike strategy. A nil rnd uses crypto/rand.
func NewGodlike(params Parameters, rnd RandSource) *Godlike {
	if rnd == nil {
		rnd = defaultRandSource
	}
	g := &Godlike{rnd: rnd}
	g.Init(params)
	return g
}

func (g *Godlike) Init(params Parameters) {
	g.roundTracker.Init(params)
	g.opponentCash = make(map[string]int)
}

func (g *Godlike) NextBid(own core.BidderState, ctx core.ContextReader) (int, bool) {
	g.observe(own)

	var opponents []core.BidderState
	if ctx != nil {
		opponents = ctx.FilteredStates(own.ID)
	}
	for _, opp := range opponents {
		if _, seen := g.opponentCash[opp.ID]; !seen {
			g.opponentCash[opp.ID] = opp.Cash
		}
	}

	if g.roundsExhausted() || own.Cash <= 0 {
		return 0, false
	}

	var history []core.RoundRecord
	if ctx != nil {
		history = ctx.History()
	}

	aggression := g.opponentAggression(opponents, history)
	risk := math.Pow(aggression, aggressionExponent)*riskWeight + riskFloor

	entropy := entropyBase + entropySpread*g.rnd.Float64()

	raw := g.diminishingNeed(own).
		Mul(g.expectedOpponentBid(opponents)).
		Mul(decimal.NewFromFloat(risk)).
		Mul(decimal.NewFromFloat(entropy)).
		Round(0).
		IntPart()

	bid := max(1, min(int(raw), own.Cash, g.halfQuantityCap()))
	return bid, true
}

// opponentAggression is the mean over opponents of their highest bid so far
// divided by their initial cash, clamped to [0.1, 1.0].
func (g *Godlike) opponentAggression(opponents []core.BidderState, history []core.RoundRecord) float64 {
	if len(history) == 0 {
		return defaultAggression
	}

	sum, counted := 0.0, 0
	for _, opp := range opponents {
		initial := g.opponentCash[opp.ID]
		if initial <= 0 {
			continue
		}

		highest, found := 0, false
		for _, record := range history {
			if bid, ok := record.Bid(opp.ID); ok && (!found || bid > highest) {
				highest = bid
				found = true
			}
		}
		if !found {
			continue
		}

		sum += float64(highest) / float64(initial)
		counted++
	}

	if counted == 0 {
		return defaultAggression
	}
	return math.Min(maxAggression, math.Max(minAggression, sum/float64(counted)))
}

// diminishingNeed is the share of the initial quantity not yet won, never below 0.
func (g *Godlike) diminishingNeed(own core.BidderState) decimal.Decimal {
	if g.initialQuantity <= 0 {
		return decimal.NewFromInt(1)
	}
	won := decimal.NewFromInt(int64(own.QuantityWon)).Div(decimal.NewFromInt(int64(g.initialQuantity)))
	return decimal.Max(decimal.Zero, decimal.NewFromInt(1).Sub(won))
}

// expectedOpponentBid is the largest per-round budget any opponent has left.
func (g *Godlike) expectedOpponentBid(opponents []core.BidderState) decimal.Decimal {
	remainingRounds := decimal.NewFromInt(int64(max(1, g.initialQuantity/core.QuantityPerRound-(g.round-1))))

	expected := decimal.Zero
	for _, opp := range opponents {
		expected = decimal.Max(expected, decimal.NewFromInt(int64(opp.Cash)).Div(remainingRounds))
	}
	return expected
}
