package core

// QuantityPerRound is the supply disposed of by one round under the default win rule.
const QuantityPerRound = 2

// WinEvaluator converts a pair of bids into the quantity awarded to the party that placed ownBid.
// It is called twice per round, once from each party's point of view.
type WinEvaluator interface {
	Evaluate(ownBid, otherBid int) (int, error)
}

// WinEvaluatorFunc adapts a plain function to the WinEvaluator interface.
type WinEvaluatorFunc func(ownBid, otherBid int) (int, error)

// Evaluate calls f(ownBid, otherBid).
func (f WinEvaluatorFunc) Evaluate(ownBid, otherBid int) (int, error) {
	return f(ownBid, otherBid)
}

// DefaultWinEvaluator awards both units to the higher bid and splits them on a tie.
type DefaultWinEvaluator struct{}

// Evaluate returns 2 if ownBid > otherBid, 1 on a tie and 0 otherwise.
// Negative bids are rejected with ErrInvalidArgument.
func (DefaultWinEvaluator) Evaluate(ownBid, otherBid int) (int, error) {
	if ownBid < 0 || otherBid < 0 {
		return 0, invalidArgument("bids must be non-negative (own=%d, other=%d)", ownBid, otherBid)
	}

	switch {
	case ownBid > otherBid:
		return QuantityPerRound, nil
	case ownBid == otherBid:
		return QuantityPerRound / 2, nil
	default:
		return 0, nil
	}
}
