package client

import (
	"encoding/binary"
	"fmt"

	"github.com/sljivkov/pythsui/domain"
)

const (
	accumulatorMajorVersion = 1
	proofTypeWormholeMerkle = 0
)

// extractVAA pulls the single embedded proof message out of an accumulator
// container. Layout: magic(4) | major(1) | minor(1) | trailerSize(1) |
// trailer | proofType(1) | vaaSize(2, big-endian) | vaa | price data.
func extractVAA(blob []byte) ([]byte, error) {
	if !isAccumulatorUpdate(blob) {
		return nil, &domain.ValidationError{Reason: "not an accumulator message"}
	}

	offset := len(accumulatorMagic)
	if len(blob) < offset+3 {
		return nil, &domain.ValidationError{Reason: "accumulator message truncated before header"}
	}

	major := blob[offset]
	if major != accumulatorMajorVersion {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("unsupported accumulator major version %d", major)}
	}

	// Minor version bumps are compatible; the trailer they may add is
	// skipped wholesale.
	trailerSize := int(blob[offset+2])
	offset += 3 + trailerSize

	if len(blob) < offset+3 {
		return nil, &domain.ValidationError{Reason: "accumulator message truncated before proof"}
	}

	proofType := blob[offset]
	if proofType != proofTypeWormholeMerkle {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("unknown accumulator proof type %d", proofType)}
	}

	vaaSize := int(binary.BigEndian.Uint16(blob[offset+1 : offset+3]))
	offset += 3

	if len(blob) < offset+vaaSize {
		return nil, &domain.ValidationError{Reason: "accumulator message truncated inside proof"}
	}

	return blob[offset : offset+vaaSize], nil
}
