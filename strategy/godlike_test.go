package strategy

import (
	"testing"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/cloudx-io/sealedbid/core"
)

func godlikeContext(t *testing.T, own core.BidderState, opponentCash int) *core.BidderContext {
	t.Helper()
	ctx := core.NewBidderContext()
	ctx.PutState(own)
	ctx.PutState(newState(t, "opp", own.TotalQuantity, opponentCash))
	return ctx
}

func TestGodlike_FirstRound(t *testing.T) {
	tests := []struct {
		name         string
		opponentCash int
		entropy      float64
		expected     int
	}{
		// 0.5^0.8*0.7+0.3 = 0.702 risk, opponent budget 100/50 = 2
		{"equal budgets bid the floor", 100, 0.5, 1},
		// opponent budget 1000/50 = 20
		{"rich opponent", 1000, 0.5, 14},
		{"lowest entropy", 1000, 0, 11},
		{"highest entropy", 1000, 0.999, 17},
		{"broke opponent", 0, 0.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			own := newState(t, "own", 100, 100)
			s := NewGodlike(DefaultParameters(), &mockRandSource{float: tt.entropy})

			bid, ok := s.NextBid(own, godlikeContext(t, own, tt.opponentCash))
			check.True(t, ok)
			check.Equal(t, tt.expected, bid)
		})
	}
}

func TestGodlike_AdaptsToHistory(t *testing.T) {
	own := newState(t, "own", 100, 100)
	ctx := godlikeContext(t, own, 1000)
	s := NewGodlike(DefaultParameters(), &mockRandSource{float: 0.5})

	bid, ok := s.NextBid(own, ctx)
	check.True(t, ok)
	check.Equal(t, 14, bid)
	s.FinishRound()

	// Opponent spent half its initial cash: aggression 0.5, 49 rounds left, budget 500/49
	own.Cash -= bid
	opp, _ := ctx.State("opp")
	opp.Cash = 500
	opp.QuantityWon = 2
	ctx.PutState(own)
	ctx.PutState(opp)
	ctx.AppendRound(core.NewRoundRecord(map[string]int{"own": bid, "opp": 500}))

	bid, ok = s.NextBid(own, ctx)
	check.True(t, ok)
	check.Equal(t, 7, bid)
}

func TestGodlike_DiminishingReturns(t *testing.T) {
	own := newState(t, "own", 100, 100)
	own.QuantityWon = 50
	s := NewGodlike(DefaultParameters(), &mockRandSource{float: 0.5})

	bid, ok := s.NextBid(own, godlikeContext(t, own, 1000))
	check.True(t, ok)
	check.Equal(t, 7, bid)
}

func TestGodlike_RespectsHalfQuantityCap(t *testing.T) {
	own := newState(t, "own", 10, 1000)
	s := NewGodlike(DefaultParameters(), &mockRandSource{float: 0.999})

	bid, ok := s.NextBid(own, godlikeContext(t, own, 100000))
	check.True(t, ok)
	check.Equal(t, 4, bid)
}

func TestGodlike_OpponentAggressionClamp(t *testing.T) {
	s := NewGodlike(DefaultParameters(), &mockRandSource{})
	s.opponentCash["opp"] = 1000
	opponents := []core.BidderState{{ID: "opp", Cash: 0, TotalQuantity: 10}}

	tests := []struct {
		name     string
		history  []core.RoundRecord
		expected float64
	}{
		{"no history", nil, 0.5},
		{"timid opponent", []core.RoundRecord{core.NewRoundRecord(map[string]int{"opp": 10})}, 0.1},
		{"all-in opponent", []core.RoundRecord{core.NewRoundRecord(map[string]int{"opp": 2000})}, 1.0},
		{"highest of several rounds", []core.RoundRecord{
			core.NewRoundRecord(map[string]int{"opp": 100}),
			core.NewRoundRecord(map[string]int{"opp": 400}),
			core.NewRoundRecord(map[string]int{"opp": 200}),
		}, 0.4},
		{"opponent absent from history", []core.RoundRecord{core.NewRoundRecord(map[string]int{"own": 10})}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check.Equal(t, tt.expected, s.opponentAggression(opponents, tt.history))
		})
	}
}

func TestGodlike_BudgetAndNeedAreExact(t *testing.T) {
	s := NewGodlike(DefaultParameters(), &mockRandSource{})
	own := newState(t, "own", 6, 100)
	s.observe(own)

	// 3 rounds left: 10/3 and 7/3, largest wins
	opponents := []core.BidderState{{ID: "a", Cash: 10}, {ID: "b", Cash: 7}}
	expected := decimal.NewFromInt(10).Div(decimal.NewFromInt(3))
	check.True(t, expected.Equal(s.expectedOpponentBid(opponents)))
	check.True(t, s.expectedOpponentBid(nil).IsZero())

	own.QuantityWon = 2
	check.Equal(t, "0.6666666666666667", s.diminishingNeed(own).String())
	own.QuantityWon = 9
	check.True(t, s.diminishingNeed(own).IsZero())
}

func TestGodlike_InitForgetsOpponents(t *testing.T) {
	own := newState(t, "own", 100, 100)
	s := NewGodlike(DefaultParameters(), &mockRandSource{float: 0.5})
	s.NextBid(own, godlikeContext(t, own, 1000))
	check.Equal(t, 1, len(s.opponentCash))

	s.Init(DefaultParameters())
	check.Equal(t, 0, len(s.opponentCash))
}
