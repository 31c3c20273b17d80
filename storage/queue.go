// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package storage

import "github.com/micalabs/mica/codec"

// Queue is a FIFO over storage, declared as three ordinary schema entries:
// the next-get and next-put counters and an items mapping keyed by
// position. Never-written counters are both zero, so a fresh queue is
// empty with no initialization write.
type Queue[T any] struct {
	nextGet *Value[uint64]
	nextPut *Value[uint64]
	items   *Mapping[uint64, T]
}

func NewQueue[T any](s *Schema, name string, c codec.Codec[T]) *Queue[T] {
	return &Queue[T]{
		nextGet: NewValue[uint64](s, name+".next-get", codec.Uint64()),
		nextPut: NewValue[uint64](s, name+".next-put", codec.Uint64()),
		items:   NewMapping[uint64, T](s, name+".items", codec.Uint64(), c),
	}
}

func (q *Queue[T]) IsEmpty(h Host) (bool, error) {
	put, err := q.nextPut.Get(h)
	if err != nil {
		return false, err
	}
	get, err := q.nextGet.Get(h)
	if err != nil {
		return false, err
	}
	return put == get, nil
}

func (q *Queue[T]) Size(h Host) (uint64, error) {
	put, err := q.nextPut.Get(h)
	if err != nil {
		return 0, err
	}
	get, err := q.nextGet.Get(h)
	if err != nil {
		return 0, err
	}
	return put - get, nil
}

// Peek returns the front item without removing it, or nil iff the queue is
// empty.
func (q *Queue[T]) Peek(h Host) (*T, error) {
	empty, err := q.IsEmpty(h)
	if err != nil || empty {
		return nil, err
	}
	next, err := q.nextGet.Get(h)
	if err != nil {
		return nil, err
	}
	value, err := q.items.Get(h, next)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// Get removes and returns the front item, clearing its storage, or
// returns nil iff the queue is empty.
func (q *Queue[T]) Get(h Host) (*T, error) {
	empty, err := q.IsEmpty(h)
	if err != nil || empty {
		return nil, err
	}
	next, err := q.nextGet.Get(h)
	if err != nil {
		return nil, err
	}
	value, err := q.items.Get(h, next)
	if err != nil {
		return nil, err
	}
	if err := q.items.Clear(h, next); err != nil {
		return nil, err
	}
	return &value, q.nextGet.Set(h, next+1)
}

// Put appends an item at the back of the queue.
func (q *Queue[T]) Put(h Host, value T) error {
	next, err := q.nextPut.Get(h)
	if err != nil {
		return err
	}
	if err := q.items.Set(h, next, value); err != nil {
		return err
	}
	return q.nextPut.Set(h, next+1)
}
