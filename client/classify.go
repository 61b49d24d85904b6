package client

import (
	"bytes"

	"github.com/sljivkov/pythsui/domain"
)

// updateKind is the wire format of a set of update blobs. The two formats
// are mutually exclusive within one assembly call.
type updateKind int

const (
	// kindBatch: every blob is an independent proof message, one per feed.
	kindBatch updateKind = iota

	// kindAccumulator: a single self-describing container carrying one
	// proof message plus price data for possibly many feeds.
	kindAccumulator
)

// accumulatorMagic marks the start of an accumulator container ("PNAU").
var accumulatorMagic = []byte{0x50, 0x4e, 0x41, 0x55}

func isAccumulatorUpdate(blob []byte) bool {
	return len(blob) >= len(accumulatorMagic) && bytes.Equal(blob[:len(accumulatorMagic)], accumulatorMagic)
}

// classifyUpdates determines which update protocol applies to the blobs.
// Mixed sets and multiple accumulator containers are rejected before any
// assembly work happens.
func classifyUpdates(blobs [][]byte) (updateKind, error) {
	if len(blobs) == 0 {
		return kindBatch, &domain.ValidationError{Reason: "no update data provided"}
	}

	accumulators := 0
	for _, blob := range blobs {
		if isAccumulatorUpdate(blob) {
			accumulators++
		}
	}

	switch {
	case accumulators == 0:
		return kindBatch, nil
	case accumulators != len(blobs):
		return kindBatch, &domain.ValidationError{Reason: "mixed formats, accumulator and batch updates cannot share a transaction"}
	case len(blobs) > 1:
		return kindBatch, &domain.ValidationError{Reason: "unsupported: multiple accumulator messages"}
	default:
		return kindAccumulator, nil
	}
}
