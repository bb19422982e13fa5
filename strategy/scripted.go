package strategy

import "github.com/cloudx-io/sealedbid/core"

// Scripted replays a fixed list of bids, one per round. Entries <= 0 and rounds
// past the end of the list sit out. Bids are not checked against cash, so a
// script can reproduce a misbehaving strategy.
type Scripted struct {
	roundTracker
	bids []int
}

var _ BidderStrategy = (*Scripted)(nil)

// NewScripted copies bids and returns a strategy that replays them.
func NewScripted(bids ...int) *Scripted {
	s := &Scripted{bids: append([]int(nil), bids...)}
	s.Init(DefaultParameters())
	return s
}

// Constant returns a Scripted strategy bidding amount for the given number of rounds.
func Constant(amount, rounds int) *Scripted {
	bids := make([]int, rounds)
	for i := range bids {
		bids[i] = amount
	}
	return NewScripted(bids...)
}

func (s *Scripted) NextBid(own core.BidderState, _ core.ContextReader) (int, bool) {
	s.observe(own)

	if s.roundsExhausted() {
		return 0, false
	}

	idx := s.round - 1
	if idx < 0 || idx >= len(s.bids) || s.bids[idx] <= 0 {
		return 0, false
	}
	return s.bids[idx], true
}
