// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import "fmt"

// Shape says how an entry composes storage keys. It is diagnostic only:
// the derivation rules themselves live in Derive and the entry types.
type Shape uint8

const (
	ShapeValue Shape = iota
	ShapeStruct
	ShapeMapping
	ShapeNestedMapping
	ShapeArray
	ShapeNestedArray
	ShapeMappedArray
)

func (s Shape) String() string {
	switch s {
	case ShapeValue:
		return "value"
	case ShapeStruct:
		return "struct"
	case ShapeMapping:
		return "mapping"
	case ShapeNestedMapping:
		return "nested-mapping"
	case ShapeArray:
		return "array"
	case ShapeNestedArray:
		return "nested-array"
	case ShapeMappedArray:
		return "mapped-array"
	default:
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
}

// Declaration records one named entry and the base slot it was assigned.
type Declaration struct {
	Name  string
	Shape Shape
	Slot  Slot
}

func (d Declaration) String() string {
	return fmt.Sprintf("%v %v @ slot %v", d.Shape, d.Name, d.Slot)
}

// Schema assigns base slots to a contract's declared entries. Slots are
// handed out sequentially in declaration order, one per entry no matter how
// large the entry's type is, so reordering declarations renumbers them and
// changes where existing data is found. Schemas are built once at contract
// definition time and are not safe for concurrent mutation.
//
// Misdeclarations (duplicate names, slot collisions) panic rather than
// return errors: they are definition-time bugs, and no contract with a
// malformed schema should come up at all.
type Schema struct {
	name   string
	decls  []Declaration
	byName map[string]int
	bySlot map[Slot]int
	next   uint64
}

func NewSchema(name string) *Schema {
	return &Schema{
		name:   name,
		byName: make(map[string]int),
		bySlot: make(map[Slot]int),
	}
}

func (s *Schema) Name() string {
	return s.name
}

// Declarations returns the declared entries in declaration order.
func (s *Schema) Declarations() []Declaration {
	decls := make([]Declaration, len(s.decls))
	copy(decls, s.decls)
	return decls
}

// SlotOf looks an entry's base slot up by name.
func (s *Schema) SlotOf(name string) (Slot, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Slot{}, false
	}
	return s.decls[i].Slot, true
}

func (s *Schema) declare(name string, shape Shape, o *declareOptions) Slot {
	if name == "" {
		panic(fmt.Sprintf("storage: unnamed entry in schema %q", s.name))
	}
	if _, ok := s.byName[name]; ok {
		panic(fmt.Sprintf("storage: entry %q declared twice in schema %q", name, s.name))
	}
	var n uint64
	if o.slot != nil {
		n = *o.slot
	} else {
		for {
			n = s.next
			s.next++
			if _, taken := s.bySlot[slotOf(n)]; !taken {
				break
			}
		}
	}
	slot := slotOf(n)
	if prev, ok := s.bySlot[slot]; ok {
		panic(fmt.Sprintf(
			"storage: entry %q and entry %q both claim slot %v of schema %q",
			name, s.decls[prev].Name, slot, s.name,
		))
	}
	s.byName[name] = len(s.decls)
	s.bySlot[slot] = len(s.decls)
	s.decls = append(s.decls, Declaration{Name: name, Shape: shape, Slot: slot})
	return slot
}

type declareOptions struct {
	slot       *uint64
	maxEncoded uint64
}

// DeclareOption adjusts how an entry is declared.
type DeclareOption func(*declareOptions)

// At pins the entry to a specific base slot instead of the next sequential
// one, for schemas that must line up with storage laid out elsewhere.
// Declaring two entries at the same slot panics.
func At(slot uint64) DeclareOption {
	return func(o *declareOptions) {
		pinned := slot
		o.slot = &pinned
	}
}

// WithMaxEncoded overrides the entry's layout bound, the largest encoding
// in bytes that Set will lay out over storage. The default is
// DefaultMaxEncoded.
func WithMaxEncoded(limit uint64) DeclareOption {
	return func(o *declareOptions) {
		o.maxEncoded = limit
	}
}

func buildOptions(opts []DeclareOption) *declareOptions {
	o := &declareOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
