package main

import (
	"github.com/JeremyLoy/config"
	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/pkg/profile"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config of the dynq command. Values are read from the environment first,
// command line flags take precedence.
type Config struct {
	Scene    string `config:"DYNQ_SCENE"`
	Cycles   int    `config:"DYNQ_CYCLES"`
	LogLevel string `config:"DYNQ_LOG_LEVEL"`
	Profile  string `config:"DYNQ_PROFILE"`
	Space    string `config:"DYNQ_SPACE"`
	Metrics  bool   `config:"DYNQ_METRICS"`
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Cycles:   1,
		LogLevel: "info",
		Space:    "local",
	}

	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "read config from environment")
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Cycles < 0 {
		return eris.Errorf("cycles must not be negative, got %d", c.Cycles)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if _, err := c.DefaultSpace(); err != nil {
		return err
	}

	switch c.Profile {
	case "", "cpu", "mem":
	default:
		return eris.Errorf("unknown profile mode %q, expected cpu or mem", c.Profile)
	}

	return nil
}

func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, eris.Wrapf(err, "log level %q", c.LogLevel)
	}

	return level, nil
}

func (c Config) DefaultSpace() (spoke.Space, error) {
	space, ok := spoke.ParseSpace(c.Space)
	if !ok {
		return spoke.Local, eris.Errorf("unknown space %q, expected local or global", c.Space)
	}

	return space, nil
}

// StartProfile starts the configured profiler. The returned value must be stopped.
func (c Config) StartProfile() interface{ Stop() } {
	switch c.Profile {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."))
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."))
	default:
		return noProfile{}
	}
}

type noProfile struct{}

func (noProfile) Stop() {}
