package client

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sljivkov/pythsui/domain"
)

const (
	pythStateID     = domain.ObjectID("0xpythstate")
	wormholeStateID = domain.ObjectID("0xwormholestate")
	pythPackageID   = domain.ObjectID("0xpythpkg")
	wormholePkgID   = domain.ObjectID("0xwormholepkg")
	priceTableID    = domain.ObjectID("0xpricetable")
)

// MockReader implements domain.StateReader for testing
type MockReader struct {
	mock.Mock
}

func (m *MockReader) GetObject(ctx context.Context, id domain.ObjectID) (*domain.ObjectData, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ObjectData), args.Error(1)
}

func (m *MockReader) GetDynamicFieldObject(
	ctx context.Context, parent domain.ObjectID, name domain.DynamicFieldName,
) (*domain.ObjectData, error) {
	args := m.Called(ctx, parent, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ObjectData), args.Error(1)
}

func pythStateObject() *domain.ObjectData {
	return &domain.ObjectData{
		ID: pythStateID,
		Fields: map[string]any{
			"base_update_fee": "1000",
			"upgrade_cap": map[string]any{
				"fields": map[string]any{"package": string(pythPackageID)},
			},
		},
	}
}

func wormholeStateObject() *domain.ObjectData {
	return &domain.ObjectData{
		ID: wormholeStateID,
		Fields: map[string]any{
			"upgrade_cap": map[string]any{
				"fields": map[string]any{"package": string(wormholePkgID)},
			},
		},
	}
}

func priceTableField() *domain.ObjectData {
	return &domain.ObjectData{
		ID:   priceTableID,
		Type: "0x2::table::Table<" + string(pythPackageID) + "::price_identifier::PriceIdentifier, 0x2::object::ID>",
	}
}

func priceTableEntry(infoID domain.ObjectID) *domain.ObjectData {
	return &domain.ObjectData{
		ID:     "0xentry",
		Fields: map[string]any{"value": string(infoID)},
	}
}

// priceTableName matches the lookup of the feed registry table itself.
func priceTableName() any {
	return mock.MatchedBy(func(name domain.DynamicFieldName) bool {
		return name.Type == "vector<u8>" && name.Value == "price_info"
	})
}

// feedKeyName matches the registry lookup for one feed identifier.
func feedKeyName(feedID string) any {
	want, _ := domain.FeedIDBytes(feedID)

	return mock.MatchedBy(func(name domain.DynamicFieldName) bool {
		if name.Type != string(pythPackageID)+"::price_identifier::PriceIdentifier" {
			return false
		}

		value, ok := name.Value.(map[string]any)
		if !ok {
			return false
		}

		got, ok := value["bytes"].([]int)
		if !ok || len(got) != len(want) {
			return false
		}

		for i := range got {
			if got[i] != int(want[i]) {
				return false
			}
		}

		return true
	})
}

// accumulatorBlob builds a well-formed accumulator container embedding the
// given proof message.
func accumulatorBlob(vaa []byte, trailer []byte) []byte {
	blob := append([]byte{}, accumulatorMagic...)
	blob = append(blob, accumulatorMajorVersion, 0, byte(len(trailer)))
	blob = append(blob, trailer...)
	blob = append(blob, proofTypeWormholeMerkle, byte(len(vaa)>>8), byte(len(vaa)))
	blob = append(blob, vaa...)

	// Trailing per-feed price data, opaque to the assembler.
	return append(blob, 0xde, 0xad, 0xbe, 0xef)
}
