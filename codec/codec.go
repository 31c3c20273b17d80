// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

// Package codec converts typed Go values to and from the canonical byte
// layout shared with the reference VM's ABI. Contract storage uses these
// encodings for both slot contents and mapping-key words, which is what
// keeps storage written here legible to companion contracts compiled for
// the VM from other source languages.
package codec

import "errors"

// Codec converts values of one static type to and from their canonical
// encoding.
//
// FixedSize reports the constant width of every encoding of T, in bytes.
// ok is false for types whose encoding varies by value (strings, byte
// strings, dynamic arrays, and any tuple containing one); such types are
// only usable through the multi-slot storage path.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
	FixedSize() (size int, ok bool)
}

// ErrOutOfRange reports a value that cannot be represented in its declared
// encoded type, such as a negative or 257-bit big.Int offered to uint256.
var ErrOutOfRange = errors.New("value out of range for encoded type")
