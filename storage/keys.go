// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// MapKey derives the storage key of mapping key word k under parent:
// keccak256(k || parent). The parent is the mapping's slot word for a
// first-level mapping, or an already derived key when mappings nest.
func MapKey(parent common.Hash, k common.Hash) common.Hash {
	return crypto.Keccak256Hash(k[:], parent[:])
}

// ArrayBase derives the start of parent's element region: keccak256(parent).
func ArrayBase(parent common.Hash) common.Hash {
	return crypto.Keccak256Hash(parent[:])
}

// Offset adds n to a key using wrapping 256-bit arithmetic. Array element i
// lives at Offset(ArrayBase(parent), i), and multi-word values address
// their continuation words the same way.
func Offset(key common.Hash, n uint64) common.Hash {
	k := new(uint256.Int).SetBytes(key[:])
	k.AddUint64(k, n)
	return common.Hash(k.Bytes32())
}

// Component is one step of a key path: either a mapping key word or an
// array index.
type Component struct {
	word    common.Hash
	index   uint64
	isIndex bool
}

// MapComponent is a mapping lookup by its one-word key encoding.
func MapComponent(keyWord common.Hash) Component {
	return Component{word: keyWord}
}

// IndexComponent is an array lookup by element index.
func IndexComponent(i uint64) Component {
	return Component{index: i, isIndex: true}
}

// Derive resolves a key path against a base slot by folding the derivation
// rules left to right: an empty path yields the slot word itself, a mapping
// component hashes keccak256(key || parent), and an array component
// addresses keccak256(parent) + i. Derive reads nothing and writes nothing,
// so equal inputs always produce equal keys.
func Derive(slot Slot, path ...Component) common.Hash {
	key := common.Hash(slot)
	for _, c := range path {
		if c.isIndex {
			key = Offset(ArrayBase(key), c.index)
		} else {
			key = MapKey(key, c.word)
		}
	}
	return key
}

func uintWord(n uint64) common.Hash {
	return common.Hash(uint256.NewInt(n).Bytes32())
}

func wordToUint(h common.Hash) (uint64, bool) {
	v := new(uint256.Int).SetBytes(h[:])
	if !v.IsUint64() {
		return 0, false
	}
	return v.Uint64(), true
}

func wordsFor(size uint64) uint64 {
	return (size + common.HashLength - 1) / common.HashLength
}
