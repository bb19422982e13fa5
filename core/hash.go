package core

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// ComputeRoundHash hashes one round record.
//
// Formula: SHA256(round + "|" + sorted_id_bid_pairs + "|" + nonce)
// where sorted_id_bid_pairs = "id1:bid1|id2:bid2|..." (sorted by id)
func ComputeRoundHash(round int, record RoundRecord, nonce string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", round)
	for _, id := range record.IDs() {
		bid, _ := record.Bid(id)
		fmt.Fprintf(&b, "|%s:%d", id, bid)
	}
	fmt.Fprintf(&b, "|%s", nonce)

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", hash)
}

// ComputeTranscriptHash chains the round hashes of a whole history so that a
// reader holding the report and the nonce can check the round order was not altered.
//
// Formula: SHA256(nonce + "|" + round_hash_1 + "|" + ... + "|" + round_hash_n)
// Rounds are numbered from 1.
func ComputeTranscriptHash(history []RoundRecord, nonce string) string {
	data := nonce
	for i, record := range history {
		data += "|" + ComputeRoundHash(i+1, record, nonce)
	}
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
