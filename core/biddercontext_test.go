package core

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func mustState(t *testing.T, id string, quantity, cash int) BidderState {
	t.Helper()
	state, err := NewBidderState(id, quantity, cash)
	assert.NoError(t, err)
	return state
}

func TestNewBidderState(t *testing.T) {
	state, err := NewBidderState("bidder1", 100, 500)
	check.NoError(t, err)
	check.Equal(t, "bidder1", state.ID)
	check.Equal(t, 100, state.TotalQuantity)
	check.Equal(t, 500, state.Cash)
	check.Equal(t, 0, state.QuantityWon)
	check.Equal(t, 100, state.RemainingQuantity())
}

func TestNewBidderState_InvalidArguments(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		quantity int
		cash     int
	}{
		{"empty id", "", 10, 10},
		{"negative quantity", "b", -1, 10},
		{"negative cash", "b", 10, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBidderState(tt.id, tt.quantity, tt.cash)
			check.True(t, errors.Is(err, ErrInvalidArgument))
		})
	}
}

func TestBidderContext_PutState(t *testing.T) {
	ctx := NewBidderContext()
	ctx.PutState(mustState(t, "bidder1", 10, 100))
	ctx.PutState(mustState(t, "bidder2", 10, 100))

	check.Equal(t, 2, len(ctx.States()))
	check.Equal(t, []string{"bidder1", "bidder2"}, ctx.IDs())
	check.True(t, ctx.HasID("bidder1"))
	check.False(t, ctx.HasID("bidder3"))
}

func TestBidderContext_OverwritesStateWithSameID(t *testing.T) {
	ctx := NewBidderContext()
	ctx.PutState(mustState(t, "bidder1", 10, 100))

	updated := mustState(t, "bidder1", 10, 60)
	updated.QuantityWon = 4
	ctx.PutState(updated)

	states := ctx.States()
	check.Equal(t, 1, len(states))
	check.Equal(t, updated, states[0])

	got, ok := ctx.State("bidder1")
	check.True(t, ok)
	check.Equal(t, 60, got.Cash)
}

func TestBidderContext_FilteredStates(t *testing.T) {
	ctx := NewBidderContext()
	ctx.PutState(mustState(t, "bidder1", 10, 100))
	ctx.PutState(mustState(t, "bidder2", 10, 90))

	filtered := ctx.FilteredStates("bidder1")
	check.Equal(t, 1, len(filtered))
	check.Equal(t, "bidder2", filtered[0].ID)

	// Unknown id filters nothing
	check.Equal(t, 2, len(ctx.FilteredStates("nonExistentBidder")))
}

func TestBidderContext_History(t *testing.T) {
	ctx := NewBidderContext()
	check.Equal(t, 0, ctx.Rounds())

	ctx.AppendRound(NewRoundRecord(map[string]int{"bidder1": 10, "bidder2": 5}))
	ctx.AppendRound(NewRoundRecord(map[string]int{"bidder1": 12, "bidder2": 8}))

	history := ctx.History()
	check.Equal(t, 2, len(history))
	check.Equal(t, 2, ctx.Rounds())

	first, ok := history[0].Bid("bidder1")
	check.True(t, ok)
	check.Equal(t, 10, first)

	second, ok := history[1].Bid("bidder2")
	check.True(t, ok)
	check.Equal(t, 8, second)
}

func TestBidderContext_HistoryIsACopy(t *testing.T) {
	ctx := NewBidderContext()
	ctx.AppendRound(NewRoundRecord(map[string]int{"bidder1": 1}))

	history := ctx.History()
	history[0] = NewRoundRecord(map[string]int{"bidder1": 99})

	bid, _ := ctx.History()[0].Bid("bidder1")
	check.Equal(t, 1, bid)
}

func TestRoundRecord(t *testing.T) {
	source := map[string]int{"own": 10, "other": 15, "third": 7}
	record := NewRoundRecord(source)

	// Mutating the source after construction does not leak in
	source["own"] = 1000

	bid, ok := record.Bid("own")
	check.True(t, ok)
	check.Equal(t, 10, bid)

	_, ok = record.Bid("missing")
	check.False(t, ok)

	maxBid, ok := record.MaxBidExcluding("other")
	check.True(t, ok)
	check.Equal(t, 10, maxBid)

	maxBid, ok = record.MaxBidExcluding("own")
	check.True(t, ok)
	check.Equal(t, 15, maxBid)

	check.Equal(t, []string{"other", "own", "third"}, record.IDs())

	solo := NewRoundRecord(map[string]int{"own": 3})
	_, ok = solo.MaxBidExcluding("own")
	check.False(t, ok)
}
