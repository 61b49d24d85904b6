package domain

import "context"

// StateReader is the read-only chain-state accessor. Implementations perform
// network reads only; an object that does not exist is reported as (nil, nil),
// never as an error.
type StateReader interface {
	// GetObject fetches one object with its structured content.
	GetObject(ctx context.Context, id ObjectID) (*ObjectData, error)

	// GetDynamicFieldObject fetches one entry of a keyed on-chain collection.
	GetDynamicFieldObject(ctx context.Context, parent ObjectID, name DynamicFieldName) (*ObjectData, error)
}

// ArgumentKind discriminates how an Argument references data inside the
// transaction under construction.
type ArgumentKind int

const (
	// ArgumentInput references the Index-th transaction input.
	ArgumentInput ArgumentKind = iota

	// ArgumentGasCoin references the funding coin of the transaction.
	ArgumentGasCoin

	// ArgumentResult references the output of the Index-th command.
	ArgumentResult

	// ArgumentNestedResult references output Sub of the Index-th command.
	ArgumentNestedResult
)

// Argument is a transaction-scoped reference to an input or to a previous
// command's output. It is only meaningful within the builder that issued it.
type Argument struct {
	Kind  ArgumentKind
	Index uint16
	Sub   uint16
}

// TxBuilder is the transaction-construction context this client appends
// contract calls to. Building never executes anything on chain.
type TxBuilder interface {
	// MoveCall appends a contract call and returns a handle to its result.
	MoveCall(target string, typeArgs []string, args []Argument) Argument

	// Pure embeds an inline byte value, subject to the builder's
	// per-argument size ceiling.
	Pure(value []byte) (Argument, error)

	// SharedObject references a shared on-chain object.
	SharedObject(id ObjectID, mutable bool) Argument

	// SplitCoins splits the funding coin into one fragment per amount,
	// returned in positional order.
	SplitCoins(amounts []uint64) []Argument

	// MakeMoveVec assembles previously obtained handles into one vector
	// argument of the given element type.
	MakeMoveVec(typeTag string, elems []Argument) Argument
}
