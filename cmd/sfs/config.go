package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envVarPrefix = "SFS"

// Config holds the defaults for the global flags.
type Config struct {
	Disk   string `envconfig:"DISK"   default:"sfs.img"`
	Blocks uint64 `envconfig:"BLOCKS" default:"20"`
	Debug  uint64 `envconfig:"DEBUG"  default:"0"`
}

func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Disk == "" {
		return fmt.Errorf("missing required config: %s_DISK", envVarPrefix)
	}
	if c.Blocks < 2 {
		return fmt.Errorf("%s_BLOCKS: need at least 2 blocks, got %d",
			envVarPrefix, c.Blocks)
	}
	return nil
}
