// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/micalabs/mica/codec"
)

// Array is a declared dynamic array of E. Elements live at
// keccak256(slot) + i, the VM's layout for dynamic arrays, and element
// access is unchecked: reading an index that was never written returns E's
// zero value, like any other never-written storage. The length word at the
// slot itself is a convention kept by Push and Pop, not a bound the
// accessors enforce.
type Array[E any] struct {
	name  string
	slot  Slot
	elems accessor[E]
}

func NewArray[E any](s *Schema, name string, ec codec.Codec[E], opts ...DeclareOption) *Array[E] {
	o := buildOptions(opts)
	slot := s.declare(name, ShapeArray, o)
	return &Array[E]{
		name:  name,
		slot:  slot,
		elems: newAccessor[E](name, ec, o.maxEncoded),
	}
}

func (a *Array[E]) Name() string {
	return a.name
}

func (a *Array[E]) Slot() Slot {
	return a.slot
}

// Key derives the storage key of element i: keccak256(slot) + i.
func (a *Array[E]) Key(i uint64) common.Hash {
	return Derive(a.slot, IndexComponent(i))
}

func (a *Array[E]) Get(h Host, i uint64) (E, error) {
	return a.elems.load(h, a.Key(i))
}

func (a *Array[E]) Set(h Host, i uint64, value E) error {
	return a.elems.store(h, a.Key(i), value)
}

// Clear resets element i to E's zero value.
func (a *Array[E]) Clear(h Host, i uint64) error {
	return a.elems.clear(h, a.Key(i))
}

// Length reads the length word at the array's slot.
func (a *Array[E]) Length(h Host) (uint64, error) {
	return lengthAt(h, a.name, common.Hash(a.slot))
}

// Push appends value at the current length and bumps the length word.
func (a *Array[E]) Push(h Host, value E) error {
	length, err := a.Length(h)
	if err != nil {
		return err
	}
	if err := a.Set(h, length, value); err != nil {
		return err
	}
	return h.Store(common.Hash(a.slot), uintWord(length+1))
}

// Pop removes and returns the last element, clearing its storage. Popping
// an empty array is an error.
func (a *Array[E]) Pop(h Host) (E, error) {
	var zero E
	length, err := a.Length(h)
	if err != nil {
		return zero, err
	}
	if length == 0 {
		return zero, fmt.Errorf("storage: pop from empty array %q", a.name)
	}
	value, err := a.Get(h, length-1)
	if err != nil {
		return zero, err
	}
	if err := a.Clear(h, length-1); err != nil {
		return zero, err
	}
	return value, h.Store(common.Hash(a.slot), uintWord(length-1))
}

// NestedArray is a declared array of arrays of E. Element (i, j) lives at
// keccak256(keccak256(slot) + i) + j: each dimension's derived key is the
// next dimension's parent. Row i's length word lives at the row's own key,
// keccak256(slot) + i, mirroring the length-at-slot convention of the
// outer array.
type NestedArray[E any] struct {
	name  string
	slot  Slot
	elems accessor[E]
}

func NewNestedArray[E any](s *Schema, name string, ec codec.Codec[E], opts ...DeclareOption) *NestedArray[E] {
	o := buildOptions(opts)
	slot := s.declare(name, ShapeNestedArray, o)
	return &NestedArray[E]{
		name:  name,
		slot:  slot,
		elems: newAccessor[E](name, ec, o.maxEncoded),
	}
}

func (a *NestedArray[E]) Name() string {
	return a.name
}

func (a *NestedArray[E]) Slot() Slot {
	return a.slot
}

// Key derives the storage key of element (i, j).
func (a *NestedArray[E]) Key(i, j uint64) common.Hash {
	return Derive(a.slot, IndexComponent(i), IndexComponent(j))
}

func (a *NestedArray[E]) Get(h Host, i, j uint64) (E, error) {
	return a.elems.load(h, a.Key(i, j))
}

func (a *NestedArray[E]) Set(h Host, i, j uint64, value E) error {
	return a.elems.store(h, a.Key(i, j), value)
}

// Length reads the outer length word at the array's slot.
func (a *NestedArray[E]) Length(h Host) (uint64, error) {
	return lengthAt(h, a.name, common.Hash(a.slot))
}

// RowLength reads row i's length word at the row's key.
func (a *NestedArray[E]) RowLength(h Host, i uint64) (uint64, error) {
	return lengthAt(h, a.name, Derive(a.slot, IndexComponent(i)))
}

// AppendRow bumps the outer length and returns the index of the new,
// empty row.
func (a *NestedArray[E]) AppendRow(h Host) (uint64, error) {
	length, err := a.Length(h)
	if err != nil {
		return 0, err
	}
	return length, h.Store(common.Hash(a.slot), uintWord(length+1))
}

// PushRow appends value to row i and bumps that row's length word.
func (a *NestedArray[E]) PushRow(h Host, i uint64, value E) error {
	rowKey := Derive(a.slot, IndexComponent(i))
	length, err := lengthAt(h, a.name, rowKey)
	if err != nil {
		return err
	}
	if err := a.Set(h, i, length, value); err != nil {
		return err
	}
	return h.Store(rowKey, uintWord(length+1))
}

// MappedArray is a declared mapping(K => E[]): rule-2 derivation for the
// key, then rule-4 addressing inside the keyed array. The keyed array's
// length word lives at the mapping's derived key.
type MappedArray[K any, E any] struct {
	name  string
	slot  Slot
	keys  codec.Codec[K]
	elems accessor[E]
}

func NewMappedArray[K any, E any](s *Schema, name string, kc codec.Codec[K], ec codec.Codec[E], opts ...DeclareOption) *MappedArray[K, E] {
	requireKeyCodec(s, name, kc)
	o := buildOptions(opts)
	slot := s.declare(name, ShapeMappedArray, o)
	return &MappedArray[K, E]{
		name:  name,
		slot:  slot,
		keys:  kc,
		elems: newAccessor[E](name, ec, o.maxEncoded),
	}
}

func (a *MappedArray[K, E]) Name() string {
	return a.name
}

func (a *MappedArray[K, E]) Slot() Slot {
	return a.slot
}

// Key derives the storage key of element i of the array under k:
// keccak256(keccak256(word(k) || slot)) + i.
func (a *MappedArray[K, E]) Key(k K, i uint64) (common.Hash, error) {
	word, err := keyWord(a.name, a.keys, k)
	if err != nil {
		return common.Hash{}, err
	}
	return Derive(a.slot, MapComponent(word), IndexComponent(i)), nil
}

func (a *MappedArray[K, E]) Get(h Host, k K, i uint64) (E, error) {
	var zero E
	root, err := a.Key(k, i)
	if err != nil {
		return zero, err
	}
	return a.elems.load(h, root)
}

func (a *MappedArray[K, E]) Set(h Host, k K, i uint64, value E) error {
	root, err := a.Key(k, i)
	if err != nil {
		return err
	}
	return a.elems.store(h, root, value)
}

// Length reads the length word of the array under k.
func (a *MappedArray[K, E]) Length(h Host, k K) (uint64, error) {
	word, err := keyWord(a.name, a.keys, k)
	if err != nil {
		return 0, err
	}
	return lengthAt(h, a.name, Derive(a.slot, MapComponent(word)))
}

// Push appends value to the array under k and bumps its length word.
func (a *MappedArray[K, E]) Push(h Host, k K, value E) error {
	word, err := keyWord(a.name, a.keys, k)
	if err != nil {
		return err
	}
	arrayKey := Derive(a.slot, MapComponent(word))
	length, err := lengthAt(h, a.name, arrayKey)
	if err != nil {
		return err
	}
	if err := a.elems.store(h, Offset(ArrayBase(arrayKey), length), value); err != nil {
		return err
	}
	return h.Store(arrayKey, uintWord(length+1))
}

// lengthAt reads a length word and rejects one that does not fit uint64,
// which only happens when something other than the length convention wrote
// the word.
func lengthAt(h Host, entry string, key common.Hash) (uint64, error) {
	word, err := h.Load(key)
	if err != nil {
		return 0, err
	}
	length, ok := wordToUint(word)
	if !ok {
		return 0, &ShapeMismatchError{
			Entry: entry,
			Key:   key,
			Err:   fmt.Errorf("length word %v does not fit uint64", word),
		}
	}
	return length, nil
}
