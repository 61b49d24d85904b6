// Package ptb provides an in-memory programmable-transaction builder. It
// records the ordered call sequence assembled by the client; serialization,
// signing and submission belong to the surrounding application.
package ptb

import (
	"fmt"

	"github.com/sljivkov/pythsui/domain"
)

// MaxPureArgumentSize is the per-argument ceiling for inline byte values in
// the reference deployment.
const MaxPureArgumentSize = 16 * 1024

// CommandKind discriminates recorded commands.
type CommandKind int

const (
	// CommandMoveCall is a contract call.
	CommandMoveCall CommandKind = iota

	// CommandSplitCoins splits the funding coin into fragments.
	CommandSplitCoins

	// CommandMakeMoveVec aggregates handles into a vector argument.
	CommandMakeMoveVec
)

// Command is one recorded step of the transaction under construction.
type Command struct {
	Kind     CommandKind
	Target   string            // MoveCall: "pkg::module::function"
	TypeArgs []string          // MoveCall type arguments
	Args     []domain.Argument // MoveCall / MakeMoveVec operands
	Amounts  []uint64          // SplitCoins amounts
	ElemType string            // MakeMoveVec element type
}

// InputKind discriminates recorded transaction inputs.
type InputKind int

const (
	// InputPure is an inline byte value.
	InputPure InputKind = iota

	// InputSharedObject references a shared on-chain object.
	InputSharedObject
)

// Input is one recorded transaction input.
type Input struct {
	Kind    InputKind
	Bytes   []byte
	Object  domain.ObjectID
	Mutable bool
}

// Builder implements domain.TxBuilder by recording commands and inputs in
// order. It is not safe for concurrent use; one builder belongs to exactly
// one transaction being assembled.
type Builder struct {
	inputs   []Input
	commands []Command
}

// New returns an empty transaction builder.
func New() *Builder {
	return &Builder{}
}

// MoveCall appends a contract call and returns the handle to its result.
func (b *Builder) MoveCall(target string, typeArgs []string, args []domain.Argument) domain.Argument {
	b.commands = append(b.commands, Command{
		Kind:     CommandMoveCall,
		Target:   target,
		TypeArgs: typeArgs,
		Args:     args,
	})

	return domain.Argument{Kind: domain.ArgumentResult, Index: uint16(len(b.commands) - 1)}
}

// Pure embeds an inline byte value. Values above MaxPureArgumentSize are
// rejected before anything is recorded.
func (b *Builder) Pure(value []byte) (domain.Argument, error) {
	if len(value) > MaxPureArgumentSize {
		return domain.Argument{}, fmt.Errorf("pure argument of %d bytes exceeds the %d byte limit", len(value), MaxPureArgumentSize)
	}

	b.inputs = append(b.inputs, Input{Kind: InputPure, Bytes: value})

	return domain.Argument{Kind: domain.ArgumentInput, Index: uint16(len(b.inputs) - 1)}, nil
}

// SharedObject references a shared object, reusing an existing input for the
// same id. A mutable reference upgrades a previously immutable one.
func (b *Builder) SharedObject(id domain.ObjectID, mutable bool) domain.Argument {
	for i := range b.inputs {
		if b.inputs[i].Kind == InputSharedObject && b.inputs[i].Object == id {
			b.inputs[i].Mutable = b.inputs[i].Mutable || mutable

			return domain.Argument{Kind: domain.ArgumentInput, Index: uint16(i)}
		}
	}

	b.inputs = append(b.inputs, Input{Kind: InputSharedObject, Object: id, Mutable: mutable})

	return domain.Argument{Kind: domain.ArgumentInput, Index: uint16(len(b.inputs) - 1)}
}

// SplitCoins splits the funding coin into one fragment per amount. Fragments
// are returned in the order of the amounts.
func (b *Builder) SplitCoins(amounts []uint64) []domain.Argument {
	b.commands = append(b.commands, Command{
		Kind:    CommandSplitCoins,
		Args:    []domain.Argument{{Kind: domain.ArgumentGasCoin}},
		Amounts: amounts,
	})

	cmd := uint16(len(b.commands) - 1)
	frags := make([]domain.Argument, len(amounts))

	for i := range amounts {
		frags[i] = domain.Argument{Kind: domain.ArgumentNestedResult, Index: cmd, Sub: uint16(i)}
	}

	return frags
}

// MakeMoveVec aggregates handles into one vector argument.
func (b *Builder) MakeMoveVec(typeTag string, elems []domain.Argument) domain.Argument {
	b.commands = append(b.commands, Command{
		Kind:     CommandMakeMoveVec,
		ElemType: typeTag,
		Args:     elems,
	})

	return domain.Argument{Kind: domain.ArgumentResult, Index: uint16(len(b.commands) - 1)}
}

// Commands returns the recorded command sequence in assembly order.
func (b *Builder) Commands() []Command {
	return b.commands
}

// Inputs returns the recorded transaction inputs.
func (b *Builder) Inputs() []Input {
	return b.inputs
}
