// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	flag "github.com/spf13/pflag"

	"github.com/micalabs/mica/cmd/genericconf"
	"github.com/micalabs/mica/cmd/util"
	"github.com/micalabs/mica/codec"
	"github.com/micalabs/mica/host"
	"github.com/micalabs/mica/storage"
)

func main() {
	args := os.Args
	if len(args) < 2 {
		panic("Usage: micatool [key|read|write|scan|bench] ...")
	}

	var err error
	switch strings.ToLower(args[1]) {
	case "key":
		err = startKey(args[2:])
	case "read":
		err = startRead(args[2:])
	case "write":
		err = startWrite(args[2:])
	case "scan":
		err = startScan(args[2:])
	case "bench":
		err = startBench(args[2:])
	default:
		panic(fmt.Sprintf("Unknown tool '%s' specified, valid tools are 'key', 'read', 'write', 'scan', 'bench'", args[1]))
	}
	util.PrintErrorAndExit(err, printSampleUsage)
}

func printSampleUsage(name string) {
	fmt.Printf("Sample usage: %s key mapping --slot 0 --key 0x... \n", name)
}

// micatool key value|mapping|array ...

type KeyConfig struct {
	Slot  uint64                 `koanf:"slot"`
	Key   []string               `koanf:"key"`
	Index []uint64               `koanf:"index"`
	Conf  genericconf.ConfConfig `koanf:"conf"`
}

func parseKeyConfig(args []string) (*KeyConfig, error) {
	f := flag.NewFlagSet("key", flag.ContinueOnError)
	f.Uint64("slot", 0, "base slot of the declared entry")
	f.StringSlice("key", nil, "32-byte mapping key word as hex, repeated for nested mappings, applied outermost first")
	f.IntSlice("index", nil, "array index, repeated for nested arrays, applied after any mapping keys")
	genericconf.ConfConfigAddOptions("conf", f)

	k, err := util.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var config KeyConfig
	if err := util.EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	if config.Conf.Dump {
		return nil, util.DumpConfig(k, map[string]interface{}{})
	}
	return &config, nil
}

func startKey(args []string) error {
	if len(args) < 1 {
		return errors.New("micatool key needs a shape, valid shapes are 'value', 'mapping', 'array'")
	}
	shape := strings.ToLower(args[0])
	config, err := parseKeyConfig(args[1:])
	if err != nil {
		return err
	}
	key, err := keyFromConfig(shape, config)
	if err != nil {
		return err
	}
	fmt.Println(key.Hex())
	return nil
}

func keyFromConfig(shape string, config *KeyConfig) (common.Hash, error) {
	switch shape {
	case "value":
		if len(config.Key) != 0 || len(config.Index) != 0 {
			return common.Hash{}, errors.New("a value entry takes no key path")
		}
	case "mapping":
		if len(config.Key) == 0 {
			return common.Hash{}, errors.New("a mapping entry needs at least one --key")
		}
	case "array":
		if len(config.Index) == 0 {
			return common.Hash{}, errors.New("an array entry needs at least one --index")
		}
	default:
		return common.Hash{}, fmt.Errorf("micatool key '%s' not supported, valid shapes are 'value', 'mapping', 'array'", shape)
	}
	var path []storage.Component
	for _, word := range config.Key {
		decoded, err := hexWord(word)
		if err != nil {
			return common.Hash{}, err
		}
		path = append(path, storage.MapComponent(decoded))
	}
	for _, index := range config.Index {
		path = append(path, storage.IndexComponent(index))
	}
	slot := storage.Slot(common.BigToHash(new(big.Int).SetUint64(config.Slot)))
	return storage.Derive(slot, path...), nil
}

// micatool read

type ReadConfig struct {
	DataDir  string `koanf:"data-dir"`
	Key      string `koanf:"key"`
	LogLevel string `koanf:"log-level"`
	LogType  string `koanf:"log-type"`
}

func parseReadConfig(args []string) (*ReadConfig, error) {
	f := flag.NewFlagSet("read", flag.ContinueOnError)
	f.String("data-dir", "", "directory holding the badger store")
	f.String("key", "", "32-byte storage key as hex")
	f.String("log-level", "INFO", "log level, valid values are CRIT, ERROR, WARN, INFO, DEBUG, TRACE")
	f.String("log-type", "plaintext", "log type (plaintext or json)")

	k, err := util.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var config ReadConfig
	if err := util.EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func startRead(args []string) error {
	config, err := parseReadConfig(args)
	if err != nil {
		return err
	}
	if err := util.SetLogger(config.LogLevel, config.LogType); err != nil {
		return err
	}
	key, err := hexWord(config.Key)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx, config.DataDir)
	if err != nil {
		return err
	}
	defer closeStore(store)

	value, err := store.Load(key)
	if err != nil {
		return err
	}
	fmt.Println(value.Hex())
	return nil
}

// micatool write

type WriteConfig struct {
	DataDir  string `koanf:"data-dir"`
	Key      string `koanf:"key"`
	Value    string `koanf:"value"`
	LogLevel string `koanf:"log-level"`
	LogType  string `koanf:"log-type"`
}

func parseWriteConfig(args []string) (*WriteConfig, error) {
	f := flag.NewFlagSet("write", flag.ContinueOnError)
	f.String("data-dir", "", "directory holding the badger store")
	f.String("key", "", "32-byte storage key as hex")
	f.String("value", "", "32-byte value word as hex")
	f.String("log-level", "INFO", "log level, valid values are CRIT, ERROR, WARN, INFO, DEBUG, TRACE")
	f.String("log-type", "plaintext", "log type (plaintext or json)")

	k, err := util.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var config WriteConfig
	if err := util.EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func startWrite(args []string) error {
	config, err := parseWriteConfig(args)
	if err != nil {
		return err
	}
	if err := util.SetLogger(config.LogLevel, config.LogType); err != nil {
		return err
	}
	key, err := hexWord(config.Key)
	if err != nil {
		return err
	}
	value, err := hexWord(config.Value)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx, config.DataDir)
	if err != nil {
		return err
	}
	defer closeStore(store)

	txn := store.Begin()
	defer txn.Discard()
	if err := txn.Store(key, value); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	log.Info("wrote storage word", "key", key, "value", value)
	return nil
}

// micatool scan

type ScanConfig struct {
	DataDir  string `koanf:"data-dir"`
	Prefix   string `koanf:"prefix"`
	Limit    uint64 `koanf:"limit"`
	LogLevel string `koanf:"log-level"`
	LogType  string `koanf:"log-type"`
}

func parseScanConfig(args []string) (*ScanConfig, error) {
	f := flag.NewFlagSet("scan", flag.ContinueOnError)
	f.String("data-dir", "", "directory holding the badger store")
	f.String("prefix", "", "only list keys with this hex prefix")
	f.Uint64("limit", 0, "stop after this many entries (0 = no limit)")
	f.String("log-level", "INFO", "log level, valid values are CRIT, ERROR, WARN, INFO, DEBUG, TRACE")
	f.String("log-type", "plaintext", "log type (plaintext or json)")

	k, err := util.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var config ScanConfig
	if err := util.EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

var errScanDone = errors.New("scan done")

func startScan(args []string) error {
	config, err := parseScanConfig(args)
	if err != nil {
		return err
	}
	if err := util.SetLogger(config.LogLevel, config.LogType); err != nil {
		return err
	}
	prefix, err := hexutil.Decode("0x" + strings.TrimPrefix(config.Prefix, "0x"))
	if err != nil {
		return fmt.Errorf("bad --prefix: %w", err)
	}

	ctx := context.Background()
	store, err := openStore(ctx, config.DataDir)
	if err != nil {
		return err
	}
	defer closeStore(store)

	seen := uint64(0)
	err = store.Scan(prefix, func(key common.Hash, value common.Hash) error {
		fmt.Printf("%v %v\n", key.Hex(), value.Hex())
		seen++
		if config.Limit != 0 && seen >= config.Limit {
			return errScanDone
		}
		return nil
	})
	if errors.Is(err, errScanDone) {
		err = nil
	}
	return err
}

// micatool bench

type BenchConfig struct {
	Store       host.BadgerConfig             `koanf:"store"`
	Count       uint64                        `koanf:"count"`
	LogLevel    string                        `koanf:"log-level"`
	LogType     string                        `koanf:"log-type"`
	FileLogging genericconf.FileLoggingConfig `koanf:"file-logging"`

	Metrics       bool                            `koanf:"metrics"`
	MetricsServer genericconf.MetricsServerConfig `koanf:"metrics-server"`
	PProf         bool                            `koanf:"pprof"`
	PprofCfg      genericconf.PProf               `koanf:"pprof-cfg"`
}

func parseBenchConfig(args []string) (*BenchConfig, error) {
	f := flag.NewFlagSet("bench", flag.ContinueOnError)
	host.BadgerConfigAddOptions("store", f)
	f.Uint64("count", 10000, "number of mapping entries to write and read back")
	f.String("log-level", "INFO", "log level, valid values are CRIT, ERROR, WARN, INFO, DEBUG, TRACE")
	f.String("log-type", "plaintext", "log type (plaintext or json)")
	genericconf.FileLoggingConfigAddOptions("file-logging", f)
	f.Bool("metrics", false, "enable metrics")
	genericconf.MetricsServerAddOptions("metrics-server", f)
	f.Bool("pprof", false, "enable pprof")
	genericconf.PProfAddOptions("pprof-cfg", f)

	k, err := util.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var config BenchConfig
	if err := util.EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// startBench exercises a sample schema against a badger store through a
// write-back cache: count mapping writes, one flush, count reads back.
func startBench(args []string) error {
	config, err := parseBenchConfig(args)
	if err != nil {
		return err
	}
	err = genericconf.InitLog(config.LogType, config.LogLevel, &config.FileLogging, genericconf.DefaultPathResolver(""))
	if err != nil {
		return err
	}
	err = util.StartMetricsAndPProf(&util.MetricsPProfOpts{
		Metrics:       config.Metrics,
		MetricsServer: config.MetricsServer,
		PProf:         config.PProf,
		PprofCfg:      config.PprofCfg,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := host.NewBadgerHost(ctx, &config.Store)
	if err != nil {
		return err
	}
	defer closeStore(store)

	schema := storage.NewSchema("bench")
	balances := storage.NewMapping[common.Address, uint64](schema, "balances", codec.Address(), codec.Uint64())

	cache := host.NewCache(store)
	start := time.Now()
	for i := uint64(0); i < config.Count; i++ {
		if err := balances.Set(cache, benchAddress(i), i); err != nil {
			return err
		}
	}
	if err := cache.Flush(); err != nil {
		return err
	}
	wrote := time.Since(start)

	start = time.Now()
	for i := uint64(0); i < config.Count; i++ {
		value, err := balances.Get(cache, benchAddress(i))
		if err != nil {
			return err
		}
		if value != i {
			return fmt.Errorf("bench read back %d for entry %d", value, i)
		}
	}
	read := time.Since(start)

	log.Info("bench finished",
		"count", config.Count,
		"write", wrote, "write/s", float64(config.Count)/wrote.Seconds(),
		"read", read, "read/s", float64(config.Count)/read.Seconds(),
	)
	return store.Sync()
}

func benchAddress(i uint64) common.Address {
	var addr common.Address
	binary.BigEndian.PutUint64(addr[12:], i)
	return addr
}

func openStore(ctx context.Context, dataDir string) (*host.BadgerHost, error) {
	if dataDir == "" {
		return nil, errors.New("--data-dir is required")
	}
	config := host.DefaultBadgerConfig
	config.DataDir = dataDir
	return host.NewBadgerHost(ctx, &config)
}

func closeStore(store *host.BadgerHost) {
	if err := store.Close(); err != nil {
		log.Error("Failed to close store", "err", err)
	}
}

func hexWord(s string) (common.Hash, error) {
	if s == "" {
		return common.Hash{}, errors.New("missing 32-byte hex word")
	}
	decoded, err := hexutil.Decode("0x" + strings.TrimPrefix(s, "0x"))
	if err != nil {
		return common.Hash{}, err
	}
	if len(decoded) > common.HashLength {
		return common.Hash{}, fmt.Errorf("word %q is longer than 32 bytes", s)
	}
	return common.BytesToHash(decoded), nil
}
