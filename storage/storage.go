// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

// Package storage gives contract code written in Go persistent storage that
// is compatible, key for key and byte for byte, with the reference VM's
// storage model.
//
// Storage is logically a flat store of 256-bit values under 256-bit keys.
// Every key exists from the start and reads as the zero word until written,
// so there is no notion of a missing value. A contract declares named,
// typed entries against a Schema: the Schema assigns each entry one
// sequential base slot, and every access derives the concrete storage key
// from that slot and the caller's key path using the VM's keccak256
// composition rules (see Derive). Distinct entries can only collide on a
// keccak collision.
//
// Values whose canonical encoding fits one word are stored directly in the
// slot at the derived key. Wider and dynamically sized values are encoded
// with the canonical codec and laid out over consecutive keys in the
// keccak-derived region of their root key, dynamic ones behind a head word
// at the root recording the encoded byte length. The layout rules live in
// the direct and indirect accessors; entries pick one at declaration time
// from the codec's static shape.
package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Host is the word-addressed store that persists contract state. Load of a
// never-written key returns the zero word. A write is visible to later
// loads in the same invocation; making an invocation's writes atomic
// (committed or discarded as a unit) is the host's job, through its
// snapshot or transaction mechanism, and is not re-implemented above it.
type Host interface {
	Load(key common.Hash) (common.Hash, error)
	Store(key common.Hash, value common.Hash) error
}

// Slot is the base position the Schema assigns a declared entry. Slots are
// handed out sequentially from zero in declaration order and never reused.
type Slot common.Hash

// Word returns the slot as the 32-byte word the derivation rules consume.
func (s Slot) Word() common.Hash {
	return common.Hash(s)
}

func (s Slot) String() string {
	v := new(uint256.Int).SetBytes(s[:])
	if v.IsUint64() {
		return fmt.Sprintf("%d", v.Uint64())
	}
	return common.Hash(s).Hex()
}

func slotOf(n uint64) Slot {
	return Slot(uintWord(n))
}
