// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package util

import (
	"strings"
	"testing"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/micalabs/mica/cmd/genericconf"
	"github.com/micalabs/mica/util/testhelpers"
)

type sampleStoreConfig struct {
	DataDir    string        `koanf:"data-dir"`
	GCInterval time.Duration `koanf:"gc-interval"`
}

type sampleConfig struct {
	Store sampleStoreConfig      `koanf:"store"`
	Count uint64                 `koanf:"count"`
	Conf  genericconf.ConfConfig `koanf:"conf"`
}

func sampleFlagSet() *flag.FlagSet {
	f := flag.NewFlagSet("sample", flag.ContinueOnError)
	f.String("store.data-dir", "", "directory of the store")
	f.Duration("store.gc-interval", time.Minute, "gc interval")
	f.Uint64("count", 0, "entry count")
	genericconf.ConfConfigAddOptions("conf", f)
	return f
}

func parseSample(t *testing.T, args []string) (*sampleConfig, error) {
	t.Helper()
	k, err := BeginCommonParse(sampleFlagSet(), args)
	if err != nil {
		return nil, err
	}
	var config sampleConfig
	if err := EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func TestParseFlags(t *testing.T) {
	args := strings.Split("--store.data-dir /tmp/mica --store.gc-interval 2m --count 42", " ")
	config, err := parseSample(t, args)
	Require(t, err)
	if config.Store.DataDir != "/tmp/mica" {
		Fail(t, "wrong data-dir", config.Store.DataDir)
	}
	if config.Store.GCInterval != 2*time.Minute {
		Fail(t, "wrong gc-interval", config.Store.GCInterval)
	}
	if config.Count != 42 {
		Fail(t, "wrong count", config.Count)
	}
}

func TestParseRejectsPositionalArgs(t *testing.T) {
	if _, err := parseSample(t, []string{"--count", "1", "stray"}); err == nil {
		Fail(t, "positional argument was accepted")
	}
}

func TestConfigString(t *testing.T) {
	args := []string{"--conf.string", `{"store":{"data-dir":"/from/json","gc-interval":"30s"},"count":7}`}
	config, err := parseSample(t, args)
	Require(t, err)
	if config.Store.DataDir != "/from/json" {
		Fail(t, "config string ignored", config.Store.DataDir)
	}
	// string durations go through the mapstructure hook
	if config.Store.GCInterval != 30*time.Second {
		Fail(t, "wrong gc-interval", config.Store.GCInterval)
	}
	if config.Count != 7 {
		Fail(t, "wrong count", config.Count)
	}
}

func TestFlagsOverruleConfigString(t *testing.T) {
	args := []string{
		"--conf.string", `{"count":7}`,
		"--count", "9",
	}
	config, err := parseSample(t, args)
	Require(t, err)
	if config.Count != 9 {
		Fail(t, "command line did not win", config.Count)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("MICA_STORE__DATA_DIR", "/from/env")
	config, err := parseSample(t, []string{"--conf.env-prefix", "MICA"})
	Require(t, err)
	if config.Store.DataDir != "/from/env" {
		Fail(t, "environment variable ignored", config.Store.DataDir)
	}
}

func TestUnknownKeyRejected(t *testing.T) {
	args := []string{"--conf.string", `{"no-such-option":true}`}
	if _, err := parseSample(t, args); err == nil {
		Fail(t, "unknown configuration key was accepted")
	}
}

func Require(t *testing.T, err error, printables ...interface{}) {
	t.Helper()
	testhelpers.RequireImpl(t, err, printables...)
}

func Fail(t *testing.T, printables ...interface{}) {
	t.Helper()
	testhelpers.FailImpl(t, printables...)
}
