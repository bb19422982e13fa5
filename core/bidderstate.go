package core

// BidderState is the ledger of one party: identity, remaining cash and quantity won.
// It is passed around by value; only the owning bidder mutates its own copy and
// the orchestrator republishes it into the BidderContext between rounds.
type BidderState struct {
	ID            string `json:"id"`
	Cash          int    `json:"cash"`
	QuantityWon   int    `json:"quantity_won"`
	TotalQuantity int    `json:"total_quantity"`
}

// NewBidderState returns a fresh ledger with nothing won yet.
func NewBidderState(id string, totalQuantity, cash int) (BidderState, error) {
	if id == "" {
		return BidderState{}, invalidArgument("bidder id must not be empty")
	}
	if totalQuantity < 0 || cash < 0 {
		return BidderState{}, invalidArgument("quantity and cash must be non-negative (quantity=%d, cash=%d)", totalQuantity, cash)
	}

	return BidderState{
		ID:            id,
		Cash:          cash,
		TotalQuantity: totalQuantity,
	}, nil
}

// RemainingQuantity is the part of the nominal supply this party has not won.
func (s BidderState) RemainingQuantity() int {
	return s.TotalQuantity - s.QuantityWon
}
