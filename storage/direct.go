// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/micalabs/mica/codec"
)

// directAccessor stores values whose fixed-width encoding fits one word.
// The encoding sits right-aligned in the word, the alignment the derivation
// rules use for key words, so the all-zero word of never-written storage is
// exactly the encoding of the type's zero value.
type directAccessor[T any] struct {
	entry string
	codec codec.Codec[T]
	size  int
}

func (a *directAccessor[T]) load(h Host, root common.Hash) (T, error) {
	var zero T
	word, err := h.Load(root)
	if err != nil {
		return zero, err
	}
	value, err := a.codec.Decode(word[common.HashLength-a.size:])
	if err != nil {
		return zero, &ShapeMismatchError{Entry: a.entry, Key: root, Err: err}
	}
	return value, nil
}

func (a *directAccessor[T]) store(h Host, root common.Hash, value T) error {
	enc, err := a.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("storage: encoding entry %q: %w", a.entry, err)
	}
	if len(enc) > common.HashLength {
		return &EncodingOverflowError{Entry: a.entry, Size: uint64(len(enc)), Limit: common.HashLength}
	}
	return h.Store(root, common.BytesToHash(enc))
}

func (a *directAccessor[T]) clear(h Host, root common.Hash) error {
	return h.Store(root, common.Hash{})
}
