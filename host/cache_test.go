// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package host

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/micalabs/mica/codec"
	"github.com/micalabs/mica/storage"
	"github.com/micalabs/mica/util/testhelpers"
)

// countingHost records how many words reach it.
type countingHost struct {
	words  map[common.Hash]common.Hash
	loads  int
	stores int
}

func newCountingHost() *countingHost {
	return &countingHost{words: make(map[common.Hash]common.Hash)}
}

func (h *countingHost) Load(key common.Hash) (common.Hash, error) {
	h.loads++
	return h.words[key], nil
}

func (h *countingHost) Store(key common.Hash, value common.Hash) error {
	h.stores++
	h.words[key] = value
	return nil
}

func TestCacheBuffersWrites(t *testing.T) {
	inner := newCountingHost()
	cache := NewCache(inner)

	key := testhelpers.RandomHash()
	value := testhelpers.RandomHash()
	Require(t, cache.Store(key, value))
	if inner.stores != 0 {
		Fail(t, "store reached the inner host before flush")
	}
	got, err := cache.Load(key)
	Require(t, err)
	if got != value {
		Fail(t, "cache does not serve its own writes", got)
	}

	Require(t, cache.Flush())
	if inner.words[key] != value {
		Fail(t, "flush did not write through", inner.words[key])
	}
}

func TestCacheLoadsOnce(t *testing.T) {
	inner := newCountingHost()
	key := testhelpers.RandomHash()
	value := testhelpers.RandomHash()
	Require(t, inner.Store(key, value))
	inner.stores = 0

	cache := NewCache(inner)
	for i := 0; i < 5; i++ {
		got, err := cache.Load(key)
		Require(t, err)
		if got != value {
			Fail(t, "wrong cached value", got)
		}
	}
	if inner.loads != 1 {
		Fail(t, "cache re-read the inner host", inner.loads)
	}
}

func TestCacheFlushSkipsCleanEntries(t *testing.T) {
	inner := newCountingHost()
	key := testhelpers.RandomHash()
	value := testhelpers.RandomHash()
	Require(t, inner.Store(key, value))
	inner.stores = 0

	cache := NewCache(inner)
	if _, err := cache.Load(key); err != nil {
		Require(t, err)
	}
	// writing the known value back leaves the entry clean
	Require(t, cache.Store(key, value))
	Require(t, cache.Flush())
	if inner.stores != 0 {
		Fail(t, "flush wrote a clean entry", inner.stores)
	}
}

func TestCacheClearDropsWrites(t *testing.T) {
	inner := newCountingHost()
	cache := NewCache(inner)

	key := testhelpers.RandomHash()
	Require(t, cache.Store(key, testhelpers.RandomHash()))
	cache.Clear()
	Require(t, cache.Flush())
	if inner.stores != 0 {
		Fail(t, "cleared write still flushed", inner.stores)
	}
	got, err := cache.Load(key)
	Require(t, err)
	if got != (common.Hash{}) {
		Fail(t, "cleared write still cached", got)
	}
}

func TestCacheFlushWritesEverything(t *testing.T) {
	inner := newCountingHost()
	cache := NewCache(inner)

	rand := testhelpers.NewPseudoRandomDataSource(t, 0)
	written := make(map[common.Hash]common.Hash)
	for i := 0; i < 64; i++ {
		key := rand.GetHash()
		value := rand.GetHash()
		written[key] = value
		Require(t, cache.Store(key, value))
	}
	Require(t, cache.Flush())
	if inner.stores != len(written) {
		Fail(t, "wrong number of flushed words", inner.stores, len(written))
	}
	for key, value := range written {
		if inner.words[key] != value {
			Fail(t, "flushed word mismatch", key)
		}
	}
}

// an invocation's storage work goes through the cache; flush is the
// commit, clear is the abort
func TestCacheBacksSchema(t *testing.T) {
	s := storage.NewSchema("token")
	balances := storage.NewMapping[common.Address, uint64](s, "balances", codec.Address(), codec.Uint64())
	inner := newCountingHost()
	cache := NewCache(inner)

	owner := testhelpers.RandomAddress()
	Require(t, balances.Set(cache, owner, 100))
	if inner.stores != 0 {
		Fail(t, "invocation wrote through before commit")
	}
	Require(t, cache.Flush())

	direct, err := balances.Get(inner, owner)
	Require(t, err)
	if direct != 100 {
		Fail(t, "committed balance not in the inner host", direct)
	}
}
