package core

import "fmt"

// AuctionState is the verifier's own scoreboard. It is seeded with the same
// totals as the bidders but updated independently from the bids it is given.
type AuctionState struct {
	OwnCash           int `json:"own_cash"`
	OtherCash         int `json:"other_cash"`
	OwnQuantityWon    int `json:"own_quantity_won"`
	OtherQuantityWon  int `json:"other_quantity_won"`
	RemainingQuantity int `json:"remaining_quantity"`

	TotalInitialQuantity int `json:"total_initial_quantity"`
	InitialBaseCash      int `json:"initial_base_cash"`
}

// NewAuctionState returns the scoreboard at the start of an auction.
func NewAuctionState(totalQuantity, baseCash int) *AuctionState {
	return &AuctionState{
		OwnCash:              baseCash,
		OtherCash:            baseCash,
		RemainingQuantity:    totalQuantity,
		TotalInitialQuantity: totalQuantity,
		InitialBaseCash:      baseCash,
	}
}

// AuctionStateUpdater applies one round of bids to an AuctionState.
// The two evaluators are usually the same but can be swapped independently.
type AuctionStateUpdater struct {
	own   WinEvaluator
	other WinEvaluator
}

// NewAuctionStateUpdater uses DefaultWinEvaluator for any nil evaluator.
func NewAuctionStateUpdater(own, other WinEvaluator) AuctionStateUpdater {
	if own == nil {
		own = DefaultWinEvaluator{}
	}
	if other == nil {
		other = DefaultWinEvaluator{}
	}
	return AuctionStateUpdater{own: own, other: other}
}

// Update awards quantities, consumes supply and deducts both bids from cash.
// Both awards are computed before state is touched, so an evaluator error leaves state unchanged.
func (u AuctionStateUpdater) Update(state *AuctionState, ownBid, otherBid int) error {
	own, other := u.own, u.other
	if own == nil {
		own = DefaultWinEvaluator{}
	}
	if other == nil {
		other = DefaultWinEvaluator{}
	}

	ownWon, err := own.Evaluate(ownBid, otherBid)
	if err != nil {
		return fmt.Errorf("evaluate own award: %w", err)
	}
	otherWon, err := other.Evaluate(otherBid, ownBid)
	if err != nil {
		return fmt.Errorf("evaluate other award: %w", err)
	}

	state.OwnQuantityWon += ownWon
	state.OtherQuantityWon += otherWon
	state.RemainingQuantity -= ownWon + otherWon
	state.OwnCash -= ownBid
	state.OtherCash -= otherBid

	return nil
}
