package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "LOGASPECT_"

const maxConfigFileSize = 1024 * 1024

// ErrConfigTooLarge indicates a config file over the size limit.
var ErrConfigTooLarge = errors.New("config: file too large")

// Load reads configuration with the precedence, highest first:
//  1. environment variables prefixed with EnvPrefix
//  2. the YAML file at path, when path is not empty
//  3. Default
//
// Environment keys map to config keys by lowercasing and splitting the
// section off at the first underscore; observe subsections split once more:
//
//	LOGASPECT_ASPECT_EXECUTION_LEVEL  -> aspect.execution_level
//	LOGASPECT_SERVER_ADDR             -> server.addr
//	LOGASPECT_OBSERVE_LOGGING_LEVEL   -> observe.logging.level
//	LOGASPECT_OBSERVE_SERVICE_NAME    -> observe.service_name
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	// one byte over the limit tells an oversized file apart
	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(content) > maxConfigFileSize {
		return nil, fmt.Errorf("%w: %s", ErrConfigTooLarge, path)
	}
	return content, nil
}

var observeSections = []string{"tracing", "metrics", "logging"}

// envKey maps an environment variable name to a config key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	if section == "observe" {
		for _, sub := range observeSections {
			if rest, ok := strings.CutPrefix(field, sub+"_"); ok {
				return section + "." + sub + "." + rest
			}
		}
	}
	return section + "." + field
}
