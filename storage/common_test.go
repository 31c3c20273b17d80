// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/micalabs/mica/util/testhelpers"
)

func Require(t *testing.T, err error, printables ...interface{}) {
	t.Helper()
	testhelpers.RequireImpl(t, err, printables...)
}

func Fail(t *testing.T, printables ...interface{}) {
	t.Helper()
	testhelpers.FailImpl(t, printables...)
}

func requirePanic(t *testing.T, testCase interface{}, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			Fail(t, "panic expected", testCase)
		}
	}()
	f()
}

// testHost is a flat in-memory word store with the zero-default read
// contract the real hosts provide.
type testHost struct {
	words map[common.Hash]common.Hash
}

func newTestHost() *testHost {
	return &testHost{words: make(map[common.Hash]common.Hash)}
}

func (h *testHost) Load(key common.Hash) (common.Hash, error) {
	return h.words[key], nil
}

func (h *testHost) Store(key common.Hash, value common.Hash) error {
	if value == (common.Hash{}) {
		delete(h.words, key)
		return nil
	}
	h.words[key] = value
	return nil
}

func (h *testHost) written() int {
	return len(h.words)
}
