package config

import "time"

// Backup strategies
const (
	BackupSuffix = "suffix"
	BackupDir    = "dir"
)

// Config is the resolved application configuration.
type Config struct {
	Backup BackupConfig `koanf:"backup"`
	Engine EngineConfig `koanf:"engine"`
	Output OutputConfig `koanf:"output"`
	Write  WriteConfig  `koanf:"write"`
}

// BackupConfig controls where the pre-patch copy goes.
type BackupConfig struct {
	Strategy string `koanf:"strategy"`
	Suffix   string `koanf:"suffix"`
	Dir      string `koanf:"dir"`
}

// EngineConfig tunes the patch engine.
type EngineConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// OutputConfig selects how results are rendered.
type OutputConfig struct {
	Format string `koanf:"format"`
}

// WriteConfig controls retrying a write to a locked target.
type WriteConfig struct {
	Retries int           `koanf:"retries"`
	Delay   time.Duration `koanf:"delay"`
}
