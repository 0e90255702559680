package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REPATCH_"

// DefaultPath returns the user configuration file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "repatch", "config.toml")
}

// Load resolves the configuration. An explicit path must exist; with an
// empty path the user file at DefaultPath is used when present.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides resolves the configuration like Load, then applies
// overrides (dotted keys such as "write.retries") on top of everything.
func LoadWithOverrides(path string, overrides map[string]interface{}) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config file
	configPath := path
	if configPath == "" {
		configPath = DefaultPath()
		if _, err := os.Stat(configPath); err != nil {
			configPath = ""
		}
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", configPath).
				WithDetail("path", configPath)
		}
		logger.Debug().Str("path", configPath).Msg("Loaded config file")
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Command line
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges that the decoder cannot.
func (c *Config) Validate() error {
	switch c.Backup.Strategy {
	case BackupSuffix:
		if c.Backup.Suffix == "" {
			return errors.New(errors.ErrConfigValid, "backup.suffix must not be empty")
		}
	case BackupDir:
		if c.Backup.Dir == "" {
			return errors.New(errors.ErrConfigValid, "backup.dir is required with the dir strategy")
		}
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown backup.strategy %q", c.Backup.Strategy).
			WithHint("use \"suffix\" or \"dir\"")
	}

	if c.Engine.Timeout < 0 {
		return errors.New(errors.ErrConfigValid, "engine.timeout must not be negative")
	}
	if c.Write.Retries < 0 {
		return errors.New(errors.ErrConfigValid, "write.retries must not be negative")
	}
	return nil
}
