// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package host

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/micalabs/mica/storage"
)

var (
	cacheHitCounter   = metrics.NewRegisteredCounter("mica/host/cache/hit", nil)
	cacheMissCounter  = metrics.NewRegisteredCounter("mica/host/cache/miss", nil)
	cacheFlushCounter = metrics.NewRegisteredCounter("mica/host/cache/flush", nil)
)

type cacheEntry struct {
	Value common.Hash
	Known *common.Hash
}

func (e cacheEntry) dirty() bool {
	return e.Known == nil || e.Value != *e.Known
}

// Cache is a write-back buffer over another Host. Loads fill the cache
// from the inner host; stores stay in the cache until Flush writes the
// dirty entries through, or Clear drops them, which is the abort path of
// an invocation when the inner host has no transactions of its own.
type Cache struct {
	inner storage.Host
	cache map[common.Hash]cacheEntry
}

func NewCache(inner storage.Host) *Cache {
	return &Cache{
		inner: inner,
		cache: make(map[common.Hash]cacheEntry),
	}
}

func (c *Cache) Load(key common.Hash) (common.Hash, error) {
	if entry, ok := c.cache[key]; ok {
		cacheHitCounter.Inc(1)
		return entry.Value, nil
	}
	cacheMissCounter.Inc(1)
	value, err := c.inner.Load(key)
	if err != nil {
		return common.Hash{}, err
	}
	known := value
	c.cache[key] = cacheEntry{Value: value, Known: &known}
	return value, nil
}

func (c *Cache) Store(key common.Hash, value common.Hash) error {
	entry := c.cache[key]
	entry.Value = value // the known value does not change until Flush
	c.cache[key] = entry
	return nil
}

// Flush writes every dirty entry through to the inner host, in key order
// so the write sequence is deterministic.
func (c *Cache) Flush() error {
	keys := make([]common.Hash, 0, len(c.cache))
	for key, entry := range c.cache {
		if entry.dirty() {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	for _, key := range keys {
		entry := c.cache[key]
		if err := c.inner.Store(key, entry.Value); err != nil {
			return err
		}
		known := entry.Value
		entry.Known = &known
		c.cache[key] = entry
		cacheFlushCounter.Inc(1)
	}
	return nil
}

// Clear drops all cached entries, buffered writes included.
func (c *Cache) Clear() {
	c.cache = make(map[common.Hash]cacheEntry)
}
