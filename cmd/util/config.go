// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/mitchellh/mapstructure"
	flag "github.com/spf13/pflag"
)

// BeginCommonParse parses args against the flag set and layers the common
// configuration sources on top: flags first, then an optional env-prefix,
// config files, and a config string, with flags re-applied last so the
// command line always wins.
func BeginCommonParse(f *flag.FlagSet, args []string) (*koanf.Koanf, error) {
	if err := f.Parse(args); err != nil {
		return nil, err
	}
	if f.NArg() != 0 {
		return nil, fmt.Errorf("unexpected number of arguments: %d", f.NArg())
	}

	k := koanf.New(".")
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("error loading flags: %w", err)
	}
	if err := applyOverrides(f, k); err != nil {
		return nil, err
	}
	return k, nil
}

func applyOverrides(f *flag.FlagSet, k *koanf.Koanf) error {
	if err := loadEnvironmentVariables(k); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	for _, path := range k.Strings("conf.file") {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return fmt.Errorf("error loading config file %q: %w", path, err)
		}
	}

	if configString := k.String("conf.string"); configString != "" {
		if err := k.Load(rawbytes.Provider([]byte(configString)), json.Parser()); err != nil {
			return fmt.Errorf("error loading config string: %w", err)
		}
	}

	// flags overrule the file and string sources
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return fmt.Errorf("error reloading flags: %w", err)
	}
	return nil
}

func loadEnvironmentVariables(k *koanf.Koanf) error {
	envPrefix := k.String("conf.env-prefix")
	if envPrefix == "" {
		return nil
	}
	// FOO_STORE__DATA_DIR maps onto store.data-dir for prefix FOO
	return k.Load(env.Provider(envPrefix+"_", ".", func(key string) string {
		mapped := strings.ToLower(strings.TrimPrefix(key, envPrefix+"_"))
		mapped = strings.ReplaceAll(mapped, "__", ".")
		return strings.ReplaceAll(mapped, "_", "-")
	}), nil)
}

// EndCommonParse unmarshals the resolved configuration into config,
// rejecting any key the config struct has no field for.
func EndCommonParse(k *koanf.Koanf, config interface{}) error {
	decoderConfig := mapstructure.DecoderConfig{
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		Metadata:         nil,
		Result:           config,
		WeaklyTypedInput: true,
	}
	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{DecoderConfig: &decoderConfig}); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	return nil
}

// DumpConfig prints the resolved configuration as JSON and exits, with the
// dump flag itself and any caller-supplied fields (secrets, usually)
// blanked first.
func DumpConfig(k *koanf.Koanf, extraOverrideFields map[string]interface{}) error {
	overrideFields := map[string]interface{}{"conf.dump": false}
	for key, value := range extraOverrideFields {
		overrideFields[key] = value
	}
	if err := k.Load(confmap.Provider(overrideFields, "."), nil); err != nil {
		return fmt.Errorf("error removing extra parameters before dump: %w", err)
	}
	c, err := k.Marshal(json.Parser())
	if err != nil {
		return fmt.Errorf("unable to marshal config to JSON: %w", err)
	}
	fmt.Println(string(c))
	os.Exit(0)
	return nil
}

func PrintErrorAndExit(err error, usage func(string)) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		usage(os.Args[0])
		os.Exit(1)
	}
}
