// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/micalabs/mica/codec"
)

// DefaultMaxEncoded is the layout bound an entry gets unless declared with
// WithMaxEncoded: the largest encoding, in bytes, the indirect accessors
// will lay out over storage.
const DefaultMaxEncoded = 1 << 16

// accessor moves one logical value between memory and the storage words
// reachable from a derived root key.
type accessor[T any] interface {
	load(h Host, root common.Hash) (T, error)
	store(h Host, root common.Hash, value T) error
	clear(h Host, root common.Hash) error
}

// newAccessor picks an entry's layout from its codec's static shape: one
// direct word for fixed encodings that fit a slot, a headless run of words
// for wider fixed encodings, and a length-headed run for dynamic ones. The
// choice is made once at declaration time and never revisited, so the same
// declaration always addresses storage the same way.
func newAccessor[T any](entry string, c codec.Codec[T], maxEncoded uint64) accessor[T] {
	if maxEncoded == 0 {
		maxEncoded = DefaultMaxEncoded
	}
	size, fixed := c.FixedSize()
	if !fixed {
		return &dynamicAccessor[T]{entry: entry, codec: c, maxEncoded: maxEncoded}
	}
	if size <= common.HashLength {
		return &directAccessor[T]{entry: entry, codec: c, size: size}
	}
	if uint64(size) > maxEncoded {
		panic(fmt.Sprintf(
			"storage: entry %q has a fixed %d byte encoding, over its %d byte layout bound",
			entry, size, maxEncoded,
		))
	}
	return &staticAccessor[T]{entry: entry, codec: c, size: size}
}

// isDirect reports whether the codec's values take the single-word path.
func isDirect[T any](c codec.Codec[T]) bool {
	size, fixed := c.FixedSize()
	return fixed && size <= common.HashLength
}
