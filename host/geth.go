// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

// Package host provides storage.Host adapters: a geth StateDB under a
// contract account, a durable badger store, and a write-back cache that
// layers over either.
package host

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	stateLoadCounter  = metrics.NewRegisteredCounter("mica/host/state/load", nil)
	stateStoreCounter = metrics.NewRegisteredCounter("mica/host/state/store", nil)
)

// StorageAccount is the account whose storage holds contract state when no
// other account is specified.
var StorageAccount = common.HexToAddress("0xA11CA0FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF")

// StateHost persists words as the storage of one account in an
// Ethereum-compatible StateDB. Reads of never-written keys return the zero
// word, and the StateDB's snapshot mechanism gives invocations their
// commit-or-discard semantics.
type StateHost struct {
	account common.Address
	db      vm.StateDB
}

// NewStateHost wraps a StateDB under the given account. The account's
// nonce is set so the state layer will not treat it as empty and prune it.
func NewStateHost(db vm.StateDB, account common.Address) *StateHost {
	db.SetNonce(account, 1)
	return &StateHost{
		account: account,
		db:      db,
	}
}

// NewMemoryBacked builds a StateHost over an in-memory StateDB, for tests.
func NewMemoryBacked() *StateHost {
	return NewStateHost(NewMemoryBackedStateDB(), StorageAccount)
}

// NewMemoryBackedStateDB builds an empty in-memory StateDB.
func NewMemoryBackedStateDB() vm.StateDB {
	raw := rawdb.NewMemoryDatabase()
	db := state.NewDatabase(raw)
	statedb, err := state.New(common.Hash{}, db, nil)
	if err != nil {
		panic("failed to init empty statedb")
	}
	return statedb
}

func (s *StateHost) Load(key common.Hash) (common.Hash, error) {
	stateLoadCounter.Inc(1)
	return s.db.GetState(s.account, key), nil
}

func (s *StateHost) Store(key common.Hash, value common.Hash) error {
	stateStoreCounter.Inc(1)
	s.db.SetState(s.account, key, value)
	return nil
}

// Snapshot marks a revert point in the underlying StateDB.
func (s *StateHost) Snapshot() int {
	return s.db.Snapshot()
}

// RevertToSnapshot discards every write made since the snapshot was taken,
// the abort path of an invocation.
func (s *StateHost) RevertToSnapshot(id int) {
	s.db.RevertToSnapshot(id)
}
