// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/micalabs/mica/codec"
)

func TestQueueFIFO(t *testing.T) {
	s := NewSchema("outbox")
	queue := NewQueue[common.Hash](s, "pending", codec.Hash())
	h := newTestHost()

	empty, err := queue.IsEmpty(h)
	Require(t, err)
	if !empty {
		Fail(t, "fresh queue not empty")
	}
	front, err := queue.Peek(h)
	Require(t, err)
	if front != nil {
		Fail(t, "peek of empty queue returned an item", front)
	}
	got, err := queue.Get(h)
	Require(t, err)
	if got != nil {
		Fail(t, "get from empty queue returned an item", got)
	}

	first := common.HexToHash("0x01")
	second := common.HexToHash("0x02")
	third := common.HexToHash("0x03")
	Require(t, queue.Put(h, first))
	Require(t, queue.Put(h, second))
	Require(t, queue.Put(h, third))

	size, err := queue.Size(h)
	Require(t, err)
	if size != 3 {
		Fail(t, "wrong size", size)
	}

	front, err = queue.Peek(h)
	Require(t, err)
	if front == nil || *front != first {
		Fail(t, "peek returned the wrong item", front)
	}

	for _, want := range []common.Hash{first, second, third} {
		got, err := queue.Get(h)
		Require(t, err)
		if got == nil || *got != want {
			Fail(t, "items left the queue out of order", got, want)
		}
	}
	empty, err = queue.IsEmpty(h)
	Require(t, err)
	if !empty {
		Fail(t, "drained queue not empty")
	}
}

// two handles built from the same schema observe one queue
func TestQueueSharedState(t *testing.T) {
	declare := func() *Queue[uint64] {
		s := NewSchema("outbox")
		return NewQueue[uint64](s, "pending", codec.Uint64())
	}
	writer := declare()
	reader := declare()
	h := newTestHost()

	Require(t, writer.Put(h, 7))
	Require(t, writer.Put(h, 8))

	got, err := reader.Get(h)
	Require(t, err)
	if got == nil || *got != 7 {
		Fail(t, "second handle missed the first item", got)
	}
	size, err := writer.Size(h)
	Require(t, err)
	if size != 1 {
		Fail(t, "first handle missed the removal", size)
	}
}

func TestQueueStorageFootprint(t *testing.T) {
	s := NewSchema("outbox")
	queue := NewQueue[uint64](s, "pending", codec.Uint64())
	h := newTestHost()

	Require(t, queue.Put(h, 1))
	item, err := queue.Get(h)
	Require(t, err)
	if item == nil || *item != 1 {
		Fail(t, "round trip failed", item)
	}
	// drained: only the equal counters remain written
	if h.written() > 2 {
		Fail(t, "drained queue left items behind", h.written())
	}
}
