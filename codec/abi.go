// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package codec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// typeCodec encodes a single value of ABI type typ. The Go type T must be
// the type geth's abi package binds to that ABI type (uint64 for "uint64",
// *big.Int for "uint256", common.Address for "address", a struct with
// fields in component order for tuples, and so on).
type typeCodec[T any] struct {
	typ  abi.Type
	args abi.Arguments
}

// ForType builds a codec for a single ABI type, e.g. "uint64", "address",
// "bytes32", "string", "uint256[]".
func ForType[T any](abiType string) (Codec[T], error) {
	typ, err := abi.NewType(abiType, "", nil)
	if err != nil {
		return nil, fmt.Errorf("parsing abi type %q: %w", abiType, err)
	}
	return newTypeCodec[T](typ), nil
}

// MustForType is ForType for statically known type strings; it panics on a
// malformed type.
func MustForType[T any](abiType string) Codec[T] {
	c, err := ForType[T](abiType)
	if err != nil {
		panic(err)
	}
	return c
}

// Tuple builds a codec for a struct type from its ABI components. T's
// exported fields must appear in component order under the camel-cased
// component names (the same contract geth's generated bindings follow).
func Tuple[T any](components ...abi.ArgumentMarshaling) (Codec[T], error) {
	typ, err := abi.NewType("tuple", "", components)
	if err != nil {
		return nil, fmt.Errorf("parsing tuple components: %w", err)
	}
	return newTypeCodec[T](typ), nil
}

// MustTuple is Tuple for statically known components; it panics on
// malformed ones.
func MustTuple[T any](components ...abi.ArgumentMarshaling) Codec[T] {
	c, err := Tuple[T](components...)
	if err != nil {
		panic(err)
	}
	return c
}

func newTypeCodec[T any](typ abi.Type) *typeCodec[T] {
	return &typeCodec[T]{
		typ:  typ,
		args: abi.Arguments{{Type: typ}},
	}
}

func (c *typeCodec[T]) Encode(value T) ([]byte, error) {
	data, err := c.args.Pack(value)
	if err != nil {
		return nil, fmt.Errorf("encoding %v: %w", c.typ, err)
	}
	return data, nil
}

func (c *typeCodec[T]) Decode(data []byte) (T, error) {
	var zero T
	out, err := c.args.Unpack(data)
	if err != nil {
		return zero, fmt.Errorf("decoding %v: %w", c.typ, err)
	}
	converted, ok := abi.ConvertType(out[0], new(T)).(*T)
	if !ok {
		return zero, fmt.Errorf("decoding %v: abi value does not convert to %T", c.typ, zero)
	}
	return *converted, nil
}

func (c *typeCodec[T]) FixedSize() (int, bool) {
	if isDynamic(c.typ) {
		return 0, false
	}
	return staticSize(c.typ), true
}

// isDynamic mirrors the reference ABI's notion of a dynamically sized
// type: strings, byte strings, slices, and any array or tuple that
// contains one.
func isDynamic(t abi.Type) bool {
	switch t.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy:
		return true
	case abi.ArrayTy:
		return isDynamic(*t.Elem)
	case abi.TupleTy:
		for _, elem := range t.TupleElems {
			if isDynamic(*elem) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// staticSize is the encoded width of a static type: 32 for elementary
// types, the element sum for static arrays and tuples.
func staticSize(t abi.Type) int {
	switch t.T {
	case abi.ArrayTy:
		if t.Elem.T == abi.ArrayTy || t.Elem.T == abi.TupleTy {
			return t.Size * staticSize(*t.Elem)
		}
		return t.Size * 32
	case abi.TupleTy:
		total := 0
		for _, elem := range t.TupleElems {
			total += staticSize(*elem)
		}
		return total
	default:
		return 32
	}
}
