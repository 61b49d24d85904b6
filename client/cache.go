package client

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/sljivkov/pythsui/domain"
	"github.com/sljivkov/pythsui/logger"
)

const (
	priceTableWrapperPrefix = "0x2::table::Table<"
	priceTableWrapperSuffix = "::price_identifier::PriceIdentifier, 0x2::object::ID>"
)

// PriceTableInfo locates the on-chain table mapping feed identifiers to
// price-info objects, together with the package prefix of its key type.
type PriceTableInfo struct {
	ID        domain.ObjectID
	FieldType string
}

// MetadataCache lazily resolves slow-changing on-chain identifiers and
// memoizes them for the lifetime of the owning client. Values are immutable
// once set; a redundant concurrent read costs at most one wasted fetch.
// Package ids are deliberately cached across contract upgrades (known
// staleness window, accepted for read volume).
type MetadataCache struct {
	reader      domain.StateReader
	pythStateID domain.ObjectID
	log         *logrus.Entry

	mu       sync.Mutex
	packages map[domain.ObjectID]domain.ObjectID
	baseFee  *uint64
	table    *PriceTableInfo
	feeds    *gocache.Cache // normalized feed id -> domain.ObjectID
}

// NewMetadataCache creates an empty cache reading through the given accessor.
func NewMetadataCache(reader domain.StateReader, pythStateID domain.ObjectID) *MetadataCache {
	return &MetadataCache{
		reader:      reader,
		pythStateID: pythStateID,
		log:         logger.NewSublogger("metadata-cache"),
		packages:    make(map[domain.ObjectID]domain.ObjectID),
		feeds:       gocache.New(gocache.NoExpiration, 0),
	}
}

// upgradeCapFields is the expected shape of an upgradeable deployed-state
// object's content.
type upgradeCapFields struct {
	UpgradeCap struct {
		Fields struct {
			Package string `mapstructure:"package"`
		} `mapstructure:"fields"`
	} `mapstructure:"upgrade_cap"`
}

// PackageID resolves the currently-active code version of the contract
// deployed at stateID by following its upgrade-capability reference.
func (c *MetadataCache) PackageID(ctx context.Context, stateID domain.ObjectID) (domain.ObjectID, error) {
	c.mu.Lock()
	cached, ok := c.packages[stateID]
	c.mu.Unlock()

	if ok {
		return cached, nil
	}

	data, err := c.reader.GetObject(ctx, stateID)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", &domain.ResolutionError{ObjectID: stateID, Reason: "state object does not exist"}
	}

	var fields upgradeCapFields
	if err := mapstructure.Decode(data.Fields, &fields); err != nil {
		return "", &domain.ResolutionError{ObjectID: stateID, Reason: fmt.Sprintf("unexpected state object shape: %v", err)}
	}
	if fields.UpgradeCap.Fields.Package == "" {
		return "", &domain.ResolutionError{ObjectID: stateID, Reason: "upgrade capability not found, object is not an upgradeable state"}
	}

	packageID := domain.ObjectID(fields.UpgradeCap.Fields.Package)
	c.log.WithField("state", stateID).WithField("package", packageID).Debug("Resolved package id")

	c.mu.Lock()
	c.packages[stateID] = packageID
	c.mu.Unlock()

	return packageID, nil
}

// BaseUpdateFee resolves the per-feed update fee from the deployed state.
func (c *MetadataCache) BaseUpdateFee(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	cached := c.baseFee
	c.mu.Unlock()

	if cached != nil {
		return *cached, nil
	}

	data, err := c.reader.GetObject(ctx, c.pythStateID)
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, &domain.ResolutionError{ObjectID: c.pythStateID, Reason: "state object does not exist"}
	}

	fee, err := parseUint(data.Fields["base_update_fee"])
	if err != nil {
		return 0, &domain.ResolutionError{ObjectID: c.pythStateID, Reason: fmt.Sprintf("base update fee: %v", err)}
	}

	c.log.WithField("fee", fee).Debug("Resolved base update fee")

	c.mu.Lock()
	c.baseFee = &fee
	c.mu.Unlock()

	return fee, nil
}

// PriceTableInfo resolves the location and key-type prefix of the feed
// registry table.
func (c *MetadataCache) PriceTableInfo(ctx context.Context) (PriceTableInfo, error) {
	c.mu.Lock()
	cached := c.table
	c.mu.Unlock()

	if cached != nil {
		return *cached, nil
	}

	data, err := c.reader.GetDynamicFieldObject(ctx, c.pythStateID, domain.DynamicFieldName{
		Type:  "vector<u8>",
		Value: "price_info",
	})
	if err != nil {
		return PriceTableInfo{}, err
	}
	if data == nil {
		return PriceTableInfo{}, &domain.ResolutionError{
			ObjectID: c.pythStateID,
			Reason:   "price table not found, contract may not be initialized on this chain",
		}
	}

	fieldType, err := parsePriceTableType(data.Type)
	if err != nil {
		return PriceTableInfo{}, &domain.ResolutionError{ObjectID: data.ID, Reason: err.Error()}
	}

	info := PriceTableInfo{ID: data.ID, FieldType: fieldType}
	c.log.WithField("table", info.ID).WithField("fieldType", info.FieldType).Debug("Resolved price table")

	c.mu.Lock()
	c.table = &info
	c.mu.Unlock()

	return info, nil
}

// PriceInfoObjectID resolves the object holding the latest price for one
// feed. Absence means the feed has not been created yet and is reported as
// found == false, not as an error.
func (c *MetadataCache) PriceInfoObjectID(ctx context.Context, feedID string) (domain.ObjectID, bool, error) {
	normalized := domain.NormalizeFeedID(feedID)
	if cached, ok := c.feeds.Get(normalized); ok {
		return cached.(domain.ObjectID), true, nil
	}

	feedBytes, err := domain.FeedIDBytes(feedID)
	if err != nil {
		return "", false, err
	}

	table, err := c.PriceTableInfo(ctx)
	if err != nil {
		return "", false, err
	}

	// The table key is a byte-array wrapper around the feed identifier.
	key := make([]int, len(feedBytes))
	for i, v := range feedBytes {
		key[i] = int(v)
	}

	data, err := c.reader.GetDynamicFieldObject(ctx, table.ID, domain.DynamicFieldName{
		Type:  table.FieldType + "::price_identifier::PriceIdentifier",
		Value: map[string]any{"bytes": key},
	})
	if err != nil {
		return "", false, err
	}
	if data == nil {
		return "", false, nil
	}

	value, ok := data.Fields["value"].(string)
	if !ok {
		return "", false, &domain.ResolutionError{ObjectID: data.ID, Reason: "unexpected price table entry shape"}
	}

	id := domain.ObjectID(value)
	c.feeds.Set(normalized, id, gocache.NoExpiration)
	c.log.WithField("feed", normalized).WithField("object", id).Debug("Resolved price info object")

	return id, true, nil
}

// parsePriceTableType strips the generic table wrapper from the reported
// field type and returns the key-type package prefix. The wrapper text is
// pinned; a format change on chain should fail loudly here.
func parsePriceTableType(typeStr string) (string, error) {
	rest, ok := strings.CutPrefix(typeStr, priceTableWrapperPrefix)
	if !ok {
		return "", fmt.Errorf("unexpected price table type %q", typeStr)
	}

	fieldType, ok := strings.CutSuffix(rest, priceTableWrapperSuffix)
	if !ok || fieldType == "" {
		return "", fmt.Errorf("unexpected price table type %q", typeStr)
	}

	return fieldType, nil
}

// parseUint accepts the two encodings the RPC layer reports for u64 fields:
// decimal strings and JSON numbers.
func parseUint(value any) (uint64, error) {
	switch v := value.(type) {
	case string:
		return strconv.ParseUint(v, 10, 64)
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return 0, fmt.Errorf("field is not an unsigned integer: %v", v)
		}

		return uint64(v), nil
	case nil:
		return 0, fmt.Errorf("field is missing")
	default:
		return 0, fmt.Errorf("unsupported field encoding %T", value)
	}
}
