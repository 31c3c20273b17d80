// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/micalabs/mica/codec"
)

// Mapping is a declared mapping from K to V. Every key of the mapping
// exists from the start and reads as V's zero value until written, so
// there is no membership test and no iteration: the mapping is a total
// function, like the reference VM's.
type Mapping[K any, V any] struct {
	name string
	slot Slot
	keys codec.Codec[K]
	acc  accessor[V]
}

// NewMapping declares a mapping entry. The key codec must report a fixed
// one-word encoding (ints, bool, address, bytes32): that word is what the
// derivation rule hashes, and it is what makes keys derived here match
// keys derived by contracts compiled for the VM. A wider or dynamic key
// codec is a definition-time bug and panics.
func NewMapping[K any, V any](s *Schema, name string, kc codec.Codec[K], vc codec.Codec[V], opts ...DeclareOption) *Mapping[K, V] {
	requireKeyCodec(s, name, kc)
	o := buildOptions(opts)
	slot := s.declare(name, ShapeMapping, o)
	return &Mapping[K, V]{
		name: name,
		slot: slot,
		keys: kc,
		acc:  newAccessor[V](name, vc, o.maxEncoded),
	}
}

func (m *Mapping[K, V]) Name() string {
	return m.name
}

func (m *Mapping[K, V]) Slot() Slot {
	return m.slot
}

// Key derives the storage key for mapping key k:
// keccak256(word(k) || slot).
func (m *Mapping[K, V]) Key(k K) (common.Hash, error) {
	word, err := keyWord(m.name, m.keys, k)
	if err != nil {
		return common.Hash{}, err
	}
	return Derive(m.slot, MapComponent(word)), nil
}

func (m *Mapping[K, V]) Get(h Host, k K) (V, error) {
	var zero V
	root, err := m.Key(k)
	if err != nil {
		return zero, err
	}
	return m.acc.load(h, root)
}

func (m *Mapping[K, V]) Set(h Host, k K, value V) error {
	root, err := m.Key(k)
	if err != nil {
		return err
	}
	return m.acc.store(h, root, value)
}

// Clear resets one key of the mapping to V's zero value.
func (m *Mapping[K, V]) Clear(h Host, k K) error {
	root, err := m.Key(k)
	if err != nil {
		return err
	}
	return m.acc.clear(h, root)
}

// NestedMapping is a declared mapping(K1 => mapping(K2 => V)): rule-2
// derivation folded twice, innermost key first. Deeper nestings compose
// the same way through Derive and the component API.
type NestedMapping[K1 any, K2 any, V any] struct {
	name  string
	slot  Slot
	keys1 codec.Codec[K1]
	keys2 codec.Codec[K2]
	acc   accessor[V]
}

func NewNestedMapping[K1 any, K2 any, V any](s *Schema, name string, kc1 codec.Codec[K1], kc2 codec.Codec[K2], vc codec.Codec[V], opts ...DeclareOption) *NestedMapping[K1, K2, V] {
	requireKeyCodec(s, name, kc1)
	requireKeyCodec(s, name, kc2)
	o := buildOptions(opts)
	slot := s.declare(name, ShapeNestedMapping, o)
	return &NestedMapping[K1, K2, V]{
		name:  name,
		slot:  slot,
		keys1: kc1,
		keys2: kc2,
		acc:   newAccessor[V](name, vc, o.maxEncoded),
	}
}

func (m *NestedMapping[K1, K2, V]) Name() string {
	return m.name
}

func (m *NestedMapping[K1, K2, V]) Slot() Slot {
	return m.slot
}

// Key derives keccak256(word(k2) || keccak256(word(k1) || slot)).
func (m *NestedMapping[K1, K2, V]) Key(k1 K1, k2 K2) (common.Hash, error) {
	word1, err := keyWord(m.name, m.keys1, k1)
	if err != nil {
		return common.Hash{}, err
	}
	word2, err := keyWord(m.name, m.keys2, k2)
	if err != nil {
		return common.Hash{}, err
	}
	return Derive(m.slot, MapComponent(word1), MapComponent(word2)), nil
}

func (m *NestedMapping[K1, K2, V]) Get(h Host, k1 K1, k2 K2) (V, error) {
	var zero V
	root, err := m.Key(k1, k2)
	if err != nil {
		return zero, err
	}
	return m.acc.load(h, root)
}

func (m *NestedMapping[K1, K2, V]) Set(h Host, k1 K1, k2 K2, value V) error {
	root, err := m.Key(k1, k2)
	if err != nil {
		return err
	}
	return m.acc.store(h, root, value)
}

func (m *NestedMapping[K1, K2, V]) Clear(h Host, k1 K1, k2 K2) error {
	root, err := m.Key(k1, k2)
	if err != nil {
		return err
	}
	return m.acc.clear(h, root)
}

// keyWord encodes a mapping key into the one 32-byte word the derivation
// rule hashes.
func keyWord[K any](entry string, c codec.Codec[K], k K) (common.Hash, error) {
	enc, err := c.Encode(k)
	if err != nil {
		return common.Hash{}, fmt.Errorf("storage: encoding key of entry %q: %w", entry, err)
	}
	if len(enc) != common.HashLength {
		return common.Hash{}, fmt.Errorf(
			"storage: key codec of entry %q produced %d bytes, want %d",
			entry, len(enc), common.HashLength,
		)
	}
	return common.BytesToHash(enc), nil
}

func requireKeyCodec[K any](s *Schema, entry string, c codec.Codec[K]) {
	size, fixed := c.FixedSize()
	if !fixed || size != common.HashLength {
		panic(fmt.Sprintf(
			"storage: entry %q of schema %q needs a fixed one-word key codec, got fixed=%v size=%d",
			entry, s.Name(), fixed, size,
		))
	}
}
