// Package domain defines core types and collaborator interfaces for the pythsui client
package domain

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ClockObjectID is the well-known shared clock object referenced by
// time-dependent contract calls.
const ClockObjectID ObjectID = "0x0000000000000000000000000000000000000000000000000000000000000006"

// ObjectID identifies a piece of on-chain state. Immutable once obtained;
// package ids may go stale across contract upgrades and are re-resolved,
// never mutated in place.
type ObjectID string

// Valid reports whether the id is 0x-prefixed 32-byte hex.
func (id ObjectID) Valid() bool {
	raw, err := hexutil.Decode(string(id))

	return err == nil && len(raw) == 32
}

// NormalizeFeedID canonicalizes a hex feed identifier so that "0xABCD" and
// "abcd" address the same cache entry.
func NormalizeFeedID(feedID string) string {
	return strings.ToLower(strings.TrimPrefix(feedID, "0x"))
}

// FeedIDBytes decodes a (possibly 0x-prefixed) hex feed identifier.
func FeedIDBytes(feedID string) ([]byte, error) {
	raw, err := hex.DecodeString(NormalizeFeedID(feedID))
	if err != nil {
		return nil, &ValidationError{Reason: "feed id is not valid hex: " + feedID}
	}

	return raw, nil
}

// ObjectData is the structured view of one on-chain object as reported by
// the chain-state accessor.
type ObjectData struct {
	ID     ObjectID
	Type   string
	Fields map[string]any
}

// DynamicFieldName addresses one entry of an on-chain keyed collection.
type DynamicFieldName struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}
