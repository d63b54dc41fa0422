// Package config reads the small set of environment variables that
// govern restore behavior, the way the teacher's CLI reads its own
// environment-driven settings.
package config

import (
	"github.com/hashicorp/go-hclog"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every variable this package reads, e.g.
// ARCHIVEKIT_LOG_LEVEL.
const envPrefix = "archivekit"

// Config carries the handful of settings a restore run needs that
// don't come from the archive itself.
type Config struct {
	// AnchorBase is joined with a caller-supplied relative anchor to
	// produce the absolute restore destination when the caller doesn't
	// already have an absolute path in hand.
	AnchorBase string `envconfig:"ANCHOR_BASE" default:"."`

	// LogLevel controls the verbosity of the structured logger.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// ForceCompressed declares archives opened via cachearchive.OpenBuffer
	// (localcache.Store.FetchBuffer) to be zstd-compressed, since they have
	// no ".zst" path suffix to sniff. It has no effect on cachearchive.Open.
	ForceCompressed bool `envconfig:"FORCE_COMPRESSED" default:"false"`
}

// FromEnvironment populates a Config from the process environment.
func FromEnvironment() (*Config, error) {
	var c Config
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// HCLogLevel converts LogLevel into the hclog.Level the logger package
// expects, defaulting to Info for anything hclog doesn't recognize.
func (c *Config) HCLogLevel() hclog.Level {
	level := hclog.LevelFromString(c.LogLevel)
	if level == hclog.NoLevel {
		return hclog.Info
	}
	return level
}
