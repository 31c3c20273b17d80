// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/micalabs/mica/codec"
)

// staticAccessor stores values with a fixed encoding wider than one word.
// The encoding occupies ceil(size/32) consecutive words in the
// keccak-derived region of the root key, with no head word: the all-zero
// words of never-written storage are the encoding of the zero value, so
// reads need no presence metadata.
type staticAccessor[T any] struct {
	entry string
	codec codec.Codec[T]
	size  int
}

func (a *staticAccessor[T]) load(h Host, root common.Hash) (T, error) {
	var zero T
	buf, err := loadRegion(h, root, uint64(a.size))
	if err != nil {
		return zero, err
	}
	value, err := a.codec.Decode(buf)
	if err != nil {
		return zero, &ShapeMismatchError{Entry: a.entry, Key: root, Err: err}
	}
	return value, nil
}

func (a *staticAccessor[T]) store(h Host, root common.Hash, value T) error {
	enc, err := a.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("storage: encoding entry %q: %w", a.entry, err)
	}
	if len(enc) != a.size {
		return fmt.Errorf(
			"storage: codec for entry %q produced %d bytes, declared fixed width is %d",
			a.entry, len(enc), a.size,
		)
	}
	return storeRegion(h, root, enc)
}

func (a *staticAccessor[T]) clear(h Host, root common.Hash) error {
	return clearRegion(h, root, 0, wordsFor(uint64(a.size)))
}

// dynamicAccessor stores values whose encoded width varies: a head word at
// the root records the encoded byte length, and the payload occupies
// consecutive words in the root's keccak-derived region. A zero head means
// the value was never written (or was cleared) and short-circuits to the
// type's zero value; legitimate canonical encodings are never empty, so a
// written head is never zero.
type dynamicAccessor[T any] struct {
	entry      string
	codec      codec.Codec[T]
	maxEncoded uint64
}

func (a *dynamicAccessor[T]) load(h Host, root common.Hash) (T, error) {
	var zero T
	head, err := h.Load(root)
	if err != nil {
		return zero, err
	}
	if head == (common.Hash{}) {
		return zero, nil
	}
	size, ok := wordToUint(head)
	if !ok || size > a.maxEncoded {
		return zero, &ShapeMismatchError{
			Entry: a.entry,
			Key:   root,
			Err:   fmt.Errorf("unusable length word %v", head),
		}
	}
	buf, err := loadRegion(h, root, size)
	if err != nil {
		return zero, err
	}
	value, err := a.codec.Decode(buf)
	if err != nil {
		return zero, &ShapeMismatchError{Entry: a.entry, Key: root, Err: err}
	}
	return value, nil
}

func (a *dynamicAccessor[T]) store(h Host, root common.Hash, value T) error {
	enc, err := a.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("storage: encoding entry %q: %w", a.entry, err)
	}
	if uint64(len(enc)) > a.maxEncoded {
		return &EncodingOverflowError{Entry: a.entry, Size: uint64(len(enc)), Limit: a.maxEncoded}
	}
	prevWords, err := a.payloadWords(h, root)
	if err != nil {
		return err
	}
	if err := storeRegion(h, root, enc); err != nil {
		return err
	}
	// zero stale words a previous, longer encoding left behind
	if err := clearRegion(h, root, wordsFor(uint64(len(enc))), prevWords); err != nil {
		return err
	}
	return h.Store(root, uintWord(uint64(len(enc))))
}

func (a *dynamicAccessor[T]) clear(h Host, root common.Hash) error {
	prevWords, err := a.payloadWords(h, root)
	if err != nil {
		return err
	}
	if err := clearRegion(h, root, 0, prevWords); err != nil {
		return err
	}
	return h.Store(root, common.Hash{})
}

// payloadWords is how many payload words the current head word claims,
// capped at the layout bound so a corrupted head cannot send the sweep off
// over unbounded storage.
func (a *dynamicAccessor[T]) payloadWords(h Host, root common.Hash) (uint64, error) {
	head, err := h.Load(root)
	if err != nil {
		return 0, err
	}
	size, ok := wordToUint(head)
	if !ok || size > a.maxEncoded {
		return wordsFor(a.maxEncoded), nil
	}
	return wordsFor(size), nil
}

// loadRegion reads size bytes from the consecutive words starting at the
// root's keccak-derived region.
func loadRegion(h Host, root common.Hash, size uint64) ([]byte, error) {
	base := ArrayBase(root)
	buf := make([]byte, 0, wordsFor(size)*common.HashLength)
	for i := uint64(0); i < wordsFor(size); i++ {
		word, err := h.Load(Offset(base, i))
		if err != nil {
			return nil, err
		}
		buf = append(buf, word[:]...)
	}
	return buf[:size], nil
}

// storeRegion writes data over the consecutive words starting at the
// root's keccak-derived region, zero-filling the tail of the last word.
func storeRegion(h Host, root common.Hash, data []byte) error {
	base := ArrayBase(root)
	for i := uint64(0); len(data) > 0; i++ {
		var word common.Hash
		n := copy(word[:], data)
		data = data[n:]
		if err := h.Store(Offset(base, i), word); err != nil {
			return err
		}
	}
	return nil
}

// clearRegion zeroes the payload words in [from, to) of the root's
// keccak-derived region.
func clearRegion(h Host, root common.Hash, from, to uint64) error {
	base := ArrayBase(root)
	for i := from; i < to; i++ {
		if err := h.Store(Offset(base, i), common.Hash{}); err != nil {
			return err
		}
	}
	return nil
}
