// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ShapeMismatchError reports stored bytes that no longer decode into an
// entry's declared type, which in practice means the declaration changed
// after data was written under the old one. Absent data is never a shape
// mismatch: never-written storage decodes to the type's zero value.
type ShapeMismatchError struct {
	Entry string
	Key   common.Hash
	Err   error
}

func (e *ShapeMismatchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage: entry %q at %v holds bytes of the wrong shape", e.Entry, e.Key)
	}
	return fmt.Sprintf("storage: entry %q at %v holds bytes of the wrong shape: %v", e.Entry, e.Key, e.Err)
}

func (e *ShapeMismatchError) Unwrap() error {
	return e.Err
}

// EncodingOverflowError reports a value whose encoding is larger than the
// entry's layout bound, so it cannot be written without trampling storage
// the entry does not own.
type EncodingOverflowError struct {
	Entry string
	Size  uint64
	Limit uint64
}

func (e *EncodingOverflowError) Error() string {
	return fmt.Sprintf("storage: encoding of entry %q is %d bytes, over its %d byte layout bound", e.Entry, e.Size, e.Limit)
}
