// Package client assembles price-update transactions for an on-chain
// price-feed registry. It builds ordered contract-call sequences only;
// signing and submission belong to the surrounding application.
package client

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sljivkov/pythsui/domain"
	"github.com/sljivkov/pythsui/logger"
)

// PythClient builds the contract-call sequences that publish signed price
// updates into the feed registry. One client may serve many transactions,
// but a single transaction builder must never be shared across concurrent
// assembly calls.
type PythClient struct {
	cache           *MetadataCache
	pythStateID     domain.ObjectID
	wormholeStateID domain.ObjectID
	log             *logrus.Entry
}

// New creates a client reading chain state through the given accessor.
func New(reader domain.StateReader, pythStateID, wormholeStateID domain.ObjectID) *PythClient {
	return &PythClient{
		cache:           NewMetadataCache(reader, pythStateID),
		pythStateID:     pythStateID,
		wormholeStateID: wormholeStateID,
		log:             logger.NewSublogger("pyth-client"),
	}
}

// Cache exposes the metadata resolvers backing this client.
func (c *PythClient) Cache() *MetadataCache {
	return c.cache
}

// proofToken is the linear "hot potato" value threaded through the per-feed
// update calls. It is consumed exactly once per hand-off; a second
// consumption is an assembly bug, not a recoverable condition.
type proofToken struct {
	arg   domain.Argument
	spent bool
}

func (t *proofToken) consume() domain.Argument {
	if t.spent {
		panic("proof token consumed twice")
	}
	t.spent = true

	return t.arg
}

// verifyVAAs appends one verification call per proof message. The Nth
// returned handle corresponds to the Nth message.
func (c *PythClient) verifyVAAs(ctx context.Context, b domain.TxBuilder, messages [][]byte) ([]domain.Argument, error) {
	wormholePkg, err := c.cache.PackageID(ctx, c.wormholeStateID)
	if err != nil {
		return nil, err
	}

	handles := make([]domain.Argument, 0, len(messages))

	for _, message := range messages {
		raw, err := b.Pure(message)
		if err != nil {
			return nil, err
		}

		handle := b.MoveCall(string(wormholePkg)+"::vaa::parse_and_verify", nil, []domain.Argument{
			b.SharedObject(c.wormholeStateID, false),
			raw,
			b.SharedObject(domain.ClockObjectID, false),
		})
		handles = append(handles, handle)
	}

	return handles, nil
}

// ingestUpdates appends the single call that turns verified messages into
// the first proof token, per the classified wire format.
func (c *PythClient) ingestUpdates(
	ctx context.Context, b domain.TxBuilder, kind updateKind, blobs [][]byte,
) (*proofToken, error) {
	pythPkg, err := c.cache.PackageID(ctx, c.pythStateID)
	if err != nil {
		return nil, err
	}

	state := b.SharedObject(c.pythStateID, true)
	clock := b.SharedObject(domain.ClockObjectID, false)

	if kind == kindAccumulator {
		vaa, err := extractVAA(blobs[0])
		if err != nil {
			return nil, err
		}

		handles, err := c.verifyVAAs(ctx, b, [][]byte{vaa})
		if err != nil {
			return nil, err
		}

		raw, err := b.Pure(blobs[0])
		if err != nil {
			return nil, err
		}

		arg := b.MoveCall(string(pythPkg)+"::pyth::create_authenticated_price_infos_using_accumulator", nil,
			[]domain.Argument{state, raw, handles[0], clock})

		return &proofToken{arg: arg}, nil
	}

	handles, err := c.verifyVAAs(ctx, b, blobs)
	if err != nil {
		return nil, err
	}

	wormholePkg, err := c.cache.PackageID(ctx, c.wormholeStateID)
	if err != nil {
		return nil, err
	}

	vec := b.MakeMoveVec(string(wormholePkg)+"::vaa::VAA", handles)
	arg := b.MoveCall(string(pythPkg)+"::pyth::create_price_infos_hot_potato", nil,
		[]domain.Argument{state, vec, clock})

	return &proofToken{arg: arg}, nil
}

// allocateFeeCoins splits the funding coin into n fragments of the base
// update fee each, in feed-processing order. The split happens exactly once
// per update operation.
func (c *PythClient) allocateFeeCoins(ctx context.Context, b domain.TxBuilder, n int) ([]domain.Argument, error) {
	if n == 0 {
		return nil, nil
	}

	fee, err := c.cache.BaseUpdateFee(ctx)
	if err != nil {
		return nil, err
	}

	amounts := make([]uint64, n)
	for i := range amounts {
		amounts[i] = fee
	}

	return b.SplitCoins(amounts), nil
}

// UpdatePriceFeeds assembles the call sequence publishing the given updates
// into already-registered feeds, in the order given. Every feed must have a
// registered price-info object; an unregistered feed aborts assembly with a
// NotFoundError before any call is appended. Returns the price-info object
// ids touched, positionally aligned with feedIDs.
func (c *PythClient) UpdatePriceFeeds(
	ctx context.Context, b domain.TxBuilder, blobs [][]byte, feedIDs []string,
) ([]domain.ObjectID, error) {
	kind, err := classifyUpdates(blobs)
	if err != nil {
		return nil, err
	}

	// Resolve every feed up front so a missing registration never leaves
	// calls behind in the builder.
	infoIDs := make([]domain.ObjectID, 0, len(feedIDs))

	for _, feedID := range feedIDs {
		infoID, found, err := c.cache.PriceInfoObjectID(ctx, feedID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &domain.NotFoundError{FeedID: feedID}
		}

		infoIDs = append(infoIDs, infoID)
	}

	pythPkg, err := c.cache.PackageID(ctx, c.pythStateID)
	if err != nil {
		return nil, err
	}

	token, err := c.ingestUpdates(ctx, b, kind, blobs)
	if err != nil {
		return nil, err
	}

	coins, err := c.allocateFeeCoins(ctx, b, len(feedIDs))
	if err != nil {
		return nil, err
	}

	state := b.SharedObject(c.pythStateID, true)
	clock := b.SharedObject(domain.ClockObjectID, false)

	for i, infoID := range infoIDs {
		next := b.MoveCall(string(pythPkg)+"::pyth::update_single_price_feed", nil, []domain.Argument{
			state,
			token.consume(),
			b.SharedObject(infoID, true),
			coins[i],
			clock,
		})
		token = &proofToken{arg: next}
	}

	b.MoveCall(string(pythPkg)+"::hot_potato_vector::destroy",
		[]string{string(pythPkg) + "::price_info::PriceInfo"},
		[]domain.Argument{token.consume()})

	c.log.WithField("feeds", len(feedIDs)).Debug("Assembled price feed update")

	return infoIDs, nil
}

// CreatePriceFeeds assembles the call sequence registering the feeds carried
// by the given updates. Creation is a single terminal call per format, so no
// proof token is threaded. The new feeds become resolvable afterwards.
func (c *PythClient) CreatePriceFeeds(ctx context.Context, b domain.TxBuilder, blobs [][]byte) error {
	kind, err := classifyUpdates(blobs)
	if err != nil {
		return err
	}

	pythPkg, err := c.cache.PackageID(ctx, c.pythStateID)
	if err != nil {
		return err
	}

	state := b.SharedObject(c.pythStateID, true)
	clock := b.SharedObject(domain.ClockObjectID, false)

	if kind == kindAccumulator {
		vaa, err := extractVAA(blobs[0])
		if err != nil {
			return err
		}

		handles, err := c.verifyVAAs(ctx, b, [][]byte{vaa})
		if err != nil {
			return err
		}

		raw, err := b.Pure(blobs[0])
		if err != nil {
			return err
		}

		b.MoveCall(string(pythPkg)+"::pyth::create_price_feeds_using_accumulator", nil,
			[]domain.Argument{state, raw, handles[0], clock})

		return nil
	}

	handles, err := c.verifyVAAs(ctx, b, blobs)
	if err != nil {
		return err
	}

	wormholePkg, err := c.cache.PackageID(ctx, c.wormholeStateID)
	if err != nil {
		return err
	}

	vec := b.MakeMoveVec(string(wormholePkg)+"::vaa::VAA", handles)
	b.MoveCall(string(pythPkg)+"::pyth::create_price_feeds", nil,
		[]domain.Argument{state, vec, clock})

	c.log.WithField("updates", len(blobs)).Debug("Assembled price feed creation")

	return nil
}
