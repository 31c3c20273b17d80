// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/micalabs/mica/codec"
)

func declareTestSchema() *Schema {
	s := NewSchema("token")
	NewMapping[common.Address, uint64](s, "balances", codec.Address(), codec.Uint64())
	NewNestedMapping[common.Address, common.Address, uint64](s, "allowances", codec.Address(), codec.Address(), codec.Uint64())
	NewValue[uint64](s, "total-supply", codec.Uint64())
	NewArray[common.Hash](s, "checkpoints", codec.Hash())
	NewValue[string](s, "name", codec.String())
	return s
}

func TestSlotAssignmentIsSequential(t *testing.T) {
	s := declareTestSchema()
	decls := s.Declarations()
	if len(decls) != 5 {
		Fail(t, "wrong declaration count", len(decls))
	}
	for i, decl := range decls {
		if decl.Slot != slotOf(uint64(i)) {
			Fail(t, "entry got the wrong slot", decl.Name, decl.Slot)
		}
	}
}

func TestSlotAssignmentIsDeterministic(t *testing.T) {
	first := declareTestSchema().Declarations()
	second := declareTestSchema().Declarations()
	for i := range first {
		if first[i] != second[i] {
			Fail(t, "re-declaring the schema moved an entry", first[i], second[i])
		}
	}
}

func TestSlotOf(t *testing.T) {
	s := declareTestSchema()
	slot, ok := s.SlotOf("total-supply")
	if !ok || slot != slotOf(2) {
		Fail(t, "lookup by name failed", slot, ok)
	}
	if _, ok := s.SlotOf("no-such-entry"); ok {
		Fail(t, "lookup of undeclared name succeeded")
	}
}

func TestManualSlotOverride(t *testing.T) {
	s := NewSchema("pinned")
	pinned := NewValue[uint64](s, "high", codec.Uint64(), At(40))
	if pinned.Slot() != slotOf(40) {
		Fail(t, "At did not pin the slot", pinned.Slot())
	}
	next := NewValue[uint64](s, "low", codec.Uint64())
	if next.Slot() != slotOf(0) {
		Fail(t, "sequential assignment disturbed by a pinned entry", next.Slot())
	}
}

func TestSequentialSkipsPinnedSlot(t *testing.T) {
	s := NewSchema("pinned")
	NewValue[uint64](s, "pinned", codec.Uint64(), At(1))
	NewValue[uint64](s, "a", codec.Uint64())
	b := NewValue[uint64](s, "b", codec.Uint64())
	if b.Slot() != slotOf(2) {
		Fail(t, "sequential assignment reused a pinned slot", b.Slot())
	}
}

func TestMisdeclarationPanics(t *testing.T) {
	requirePanic(t, "duplicate name", func() {
		s := NewSchema("bad")
		NewValue[uint64](s, "twice", codec.Uint64())
		NewValue[bool](s, "twice", codec.Bool())
	})
	requirePanic(t, "slot collision", func() {
		s := NewSchema("bad")
		NewValue[uint64](s, "a", codec.Uint64())
		NewValue[uint64](s, "b", codec.Uint64(), At(0))
	})
	requirePanic(t, "empty name", func() {
		s := NewSchema("bad")
		NewValue[uint64](s, "", codec.Uint64())
	})
	requirePanic(t, "dynamic mapping key", func() {
		s := NewSchema("bad")
		NewMapping[string, uint64](s, "by-name", codec.String(), codec.Uint64())
	})
}

func TestDeclarationString(t *testing.T) {
	s := declareTestSchema()
	decl := s.Declarations()[0]
	if decl.String() != "mapping balances @ slot 0" {
		Fail(t, "unexpected declaration rendering", decl.String())
	}
}
