package main

import (
	"github.com/dipdup-net/go-lib/config"

	"github.com/cryptip/tipjar/internal/controller"
)

// Config -
type Config struct {
	config.Config `yaml:",inline"`
	Tipjar        Tipjar `yaml:"tipjar"`
	LogLevel      string `yaml:"log_level" validate:"omitempty,oneof=debug trace info warn error fatal panic"`
}

// Substitute -
func (c *Config) Substitute() error {
	if err := c.Config.Substitute(); err != nil {
		return err
	}
	return nil
}

// Load -
func Load(filename string) (cfg Config, err error) {
	err = config.Parse(filename, &cfg)
	return
}

// Tipjar -
type Tipjar struct {
	Contract        string            `yaml:"contract" validate:"required"`
	Viewed          string            `yaml:"viewed" validate:"required"`
	WalletKey       string            `yaml:"wallet_key"`
	Node            string            `yaml:"node" validate:"required"`
	Feed            string            `yaml:"feed" validate:"required"`
	RefreshInterval uint64            `yaml:"refresh_interval" validate:"omitempty,min=1"`
	NameTTL         uint64            `yaml:"name_ttl" validate:"omitempty,min=1"`
	Names           map[string]string `yaml:"names"`
	Controller      controller.Config `yaml:"controller"`
	MaxCPU          int               `yaml:"max_cpu,omitempty" validate:"omitempty,min=1"`
}
