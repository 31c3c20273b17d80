// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	flag "github.com/spf13/pflag"

	"github.com/micalabs/mica/util/stopwaiter"
)

var (
	badgerLoadCounter  = metrics.NewRegisteredCounter("mica/host/badger/load", nil)
	badgerStoreCounter = metrics.NewRegisteredCounter("mica/host/badger/store", nil)
)

type BadgerConfig struct {
	DataDir        string        `koanf:"data-dir"`
	SyncWrites     bool          `koanf:"sync-writes"`
	GCInterval     time.Duration `koanf:"gc-interval"`
	GCDiscardRatio float64       `koanf:"gc-discard-ratio"`
}

var DefaultBadgerConfig = BadgerConfig{
	DataDir:        "",
	SyncWrites:     false,
	GCInterval:     5 * time.Minute,
	GCDiscardRatio: 0.7,
}

func BadgerConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.String(prefix+".data-dir", DefaultBadgerConfig.DataDir, "directory in which to store the database")
	f.Bool(prefix+".sync-writes", DefaultBadgerConfig.SyncWrites, "fsync every write before acknowledging it")
	f.Duration(prefix+".gc-interval", DefaultBadgerConfig.GCInterval, "how often to run badger value-log garbage collection (0 = disable)")
	f.Float64(prefix+".gc-discard-ratio", DefaultBadgerConfig.GCDiscardRatio, "rewrite a value-log file when at least this fraction of it is stale")
}

// BadgerHost is a durable flat word store over badger. Keys never written
// read as the zero word. Word writes through Store are individually
// durable; an invocation that must commit or discard as a unit goes
// through Begin and a transaction.
type BadgerHost struct {
	db         *badger.DB
	dirPath    string
	stopWaiter stopwaiter.StopWaiterSafe
}

func NewBadgerHost(ctx context.Context, config *BadgerConfig) (*BadgerHost, error) {
	opts := badger.DefaultOptions(config.DataDir).WithSyncWrites(config.SyncWrites)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	ret := &BadgerHost{
		db:      db,
		dirPath: config.DataDir,
	}
	if err := ret.stopWaiter.Start(ctx, ret); err != nil {
		return nil, err
	}
	err = ret.stopWaiter.LaunchThread(func(myCtx context.Context) {
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close badger host DB", "err", err)
			}
		}()
		if config.GCInterval <= 0 {
			<-myCtx.Done()
			return
		}
		ticker := time.NewTicker(config.GCInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for db.RunValueLogGC(config.GCDiscardRatio) == nil {
					select {
					case <-myCtx.Done():
						return
					default:
					}
				}
			case <-myCtx.Done():
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (b *BadgerHost) Load(key common.Hash) (common.Hash, error) {
	badgerLoadCounter.Inc(1)
	var ret common.Hash
	err := b.db.View(func(txn *badger.Txn) error {
		return loadWord(txn, key, &ret)
	})
	return ret, err
}

func (b *BadgerHost) Store(key common.Hash, value common.Hash) error {
	badgerStoreCounter.Inc(1)
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key.Bytes(), value.Bytes()))
	})
}

// Begin opens a read-write transaction. Until Commit, its writes are
// visible only through the transaction itself; Discard drops them, which
// is how an aborting invocation leaves no partial multi-word write behind.
func (b *BadgerHost) Begin() *BadgerTxn {
	return &BadgerTxn{txn: b.db.NewTransaction(true)}
}

// Scan calls fn for every stored word with the given key prefix, in key
// order, until fn returns an error or the store is exhausted.
func (b *BadgerHost) Scan(prefix []byte, fn func(key common.Hash, value common.Hash) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if len(item.Key()) != common.HashLength {
				continue
			}
			key := common.BytesToHash(item.Key())
			var value common.Hash
			err := item.Value(func(val []byte) error {
				if len(val) != common.HashLength {
					return fmt.Errorf("badger host: value under %v is %d bytes, want %d", key, len(val), common.HashLength)
				}
				value = common.BytesToHash(val)
				return nil
			})
			if err != nil {
				return err
			}
			if err := fn(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BadgerHost) Sync() error {
	return b.db.Sync()
}

func (b *BadgerHost) Close() error {
	return b.stopWaiter.StopAndWait()
}

func (b *BadgerHost) String() string {
	return "BadgerHost(" + b.dirPath + ")"
}

// BadgerTxn is one open transaction over a BadgerHost. It is itself a
// storage.Host: reads see the transaction's own writes, and nothing
// reaches the store until Commit.
type BadgerTxn struct {
	txn *badger.Txn
}

func (t *BadgerTxn) Load(key common.Hash) (common.Hash, error) {
	badgerLoadCounter.Inc(1)
	var ret common.Hash
	err := loadWord(t.txn, key, &ret)
	return ret, err
}

func (t *BadgerTxn) Store(key common.Hash, value common.Hash) error {
	badgerStoreCounter.Inc(1)
	return t.txn.SetEntry(badger.NewEntry(key.Bytes(), value.Bytes()))
}

func (t *BadgerTxn) Commit() error {
	return t.txn.Commit()
}

func (t *BadgerTxn) Discard() {
	t.txn.Discard()
}

func loadWord(txn *badger.Txn, key common.Hash, ret *common.Hash) error {
	item, err := txn.Get(key.Bytes())
	if errors.Is(err, badger.ErrKeyNotFound) {
		*ret = common.Hash{}
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		if len(val) != common.HashLength {
			return fmt.Errorf("badger host: value under %v is %d bytes, want %d", key, len(val), common.HashLength)
		}
		*ret = common.BytesToHash(val)
		return nil
	})
}
