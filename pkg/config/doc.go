// Package config handles configuration management for repatch.
// Configuration is layered: embedded defaults, then a TOML file, then
// REPATCH_* environment variables.
package config
