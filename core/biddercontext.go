package core

import "sort"

// RoundRecord maps each party id to the bid it placed in one round.
type RoundRecord struct {
	bids map[string]int
}

// NewRoundRecord copies bids into an immutable round record.
func NewRoundRecord(bids map[string]int) RoundRecord {
	copied := make(map[string]int, len(bids))
	for id, bid := range bids {
		copied[id] = bid
	}
	return RoundRecord{bids: copied}
}

// Bid returns the bid placed by id in this round.
func (r RoundRecord) Bid(id string) (int, bool) {
	bid, ok := r.bids[id]
	return bid, ok
}

// MaxBidExcluding returns the highest bid of the round placed by anyone other than id.
func (r RoundRecord) MaxBidExcluding(id string) (int, bool) {
	maxBid, found := 0, false
	for bidder, bid := range r.bids {
		if bidder == id {
			continue
		}
		if !found || bid > maxBid {
			maxBid = bid
			found = true
		}
	}
	return maxBid, found
}

// IDs returns the ids present in the round, sorted.
func (r RoundRecord) IDs() []string {
	ids := make([]string, 0, len(r.bids))
	for id := range r.bids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Bids returns a copy of the id -> bid mapping.
func (r RoundRecord) Bids() map[string]int {
	copied := make(map[string]int, len(r.bids))
	for id, bid := range r.bids {
		copied[id] = bid
	}
	return copied
}

// ContextReader is the read-only view of a BidderContext handed to strategies.
type ContextReader interface {
	State(id string) (BidderState, bool)
	States() []BidderState
	IDs() []string
	FilteredStates(excludeID string) []BidderState
	History() []RoundRecord
	Rounds() int
}

// BidderContext is the directory of every party's published state plus the
// chronological round history. The auction orchestrator is its only writer;
// strategies read it through ContextReader.
type BidderContext struct {
	states  map[string]BidderState
	order   []string
	history []RoundRecord
}

var _ ContextReader = (*BidderContext)(nil)

// NewBidderContext returns an empty context.
func NewBidderContext() *BidderContext {
	return &BidderContext{
		states: make(map[string]BidderState),
	}
}

// PutState publishes state, replacing any previous state with the same id.
func (c *BidderContext) PutState(state BidderState) {
	if _, exists := c.states[state.ID]; !exists {
		c.order = append(c.order, state.ID)
	}
	c.states[state.ID] = state
}

// AppendRound records one round at the end of the history.
func (c *BidderContext) AppendRound(record RoundRecord) {
	c.history = append(c.history, record)
}

// HasID reports whether a state with id has been published.
func (c *BidderContext) HasID(id string) bool {
	_, ok := c.states[id]
	return ok
}

func (c *BidderContext) State(id string) (BidderState, bool) {
	state, ok := c.states[id]
	return state, ok
}

// States returns every published state in first-publication order.
func (c *BidderContext) States() []BidderState {
	return c.FilteredStates("")
}

// IDs returns every known id in first-publication order.
func (c *BidderContext) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// FilteredStates returns every published state except the one with excludeID.
// An unknown excludeID yields all states.
func (c *BidderContext) FilteredStates(excludeID string) []BidderState {
	states := make([]BidderState, 0, len(c.order))
	for _, id := range c.order {
		if id == excludeID {
			continue
		}
		states = append(states, c.states[id])
	}
	return states
}

// History returns the recorded rounds, oldest first.
func (c *BidderContext) History() []RoundRecord {
	history := make([]RoundRecord, len(c.history))
	copy(history, c.history)
	return history
}

func (c *BidderContext) Rounds() int {
	return len(c.history)
}
