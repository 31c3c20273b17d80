// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/micalabs/mica/codec"
)

// Value is a single declared value of type T: a plain word for one-word
// encodings, a struct or other composite laid out by the indirect
// accessors otherwise. The entry itself is immutable; all state lives in
// the Host passed to each call.
type Value[T any] struct {
	name string
	slot Slot
	acc  accessor[T]
}

// NewValue declares a value entry in the schema and binds it to the next
// base slot (or the slot pinned with At).
func NewValue[T any](s *Schema, name string, c codec.Codec[T], opts ...DeclareOption) *Value[T] {
	o := buildOptions(opts)
	shape := ShapeValue
	if !isDirect(c) {
		shape = ShapeStruct
	}
	slot := s.declare(name, shape, o)
	return &Value[T]{
		name: name,
		slot: slot,
		acc:  newAccessor(name, c, o.maxEncoded),
	}
}

func (v *Value[T]) Name() string {
	return v.name
}

func (v *Value[T]) Slot() Slot {
	return v.slot
}

// Key is the storage key the entry's root word lives at: the slot word
// itself, since a value entry has no key path.
func (v *Value[T]) Key() common.Hash {
	return Derive(v.slot)
}

func (v *Value[T]) Get(h Host) (T, error) {
	return v.acc.load(h, v.Key())
}

func (v *Value[T]) Set(h Host, value T) error {
	return v.acc.store(h, v.Key(), value)
}

// Clear returns the entry to never-written all-zero storage.
func (v *Value[T]) Clear(h Host) error {
	return v.acc.clear(h, v.Key())
}
