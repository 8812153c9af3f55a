package main

import (
	"bytes"
	"testing"

	"github.com/oliverbestmann/dynquery/spoke"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func defaultConfig() Config {
	return Config{Cycles: 1, LogLevel: "info", Space: "local"}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DYNQ_SCENE", "scene.yaml")
	t.Setenv("DYNQ_CYCLES", "3")
	t.Setenv("DYNQ_SPACE", "global")

	cfg, err := LoadConfig()
	assert.NilError(t, err)

	assert.Equal(t, cfg.Scene, "scene.yaml")
	assert.Equal(t, cfg.Cycles, 3)
	assert.Equal(t, cfg.LogLevel, "info")

	space, err := cfg.DefaultSpace()
	assert.NilError(t, err)
	assert.Equal(t, space, spoke.Global)
}

func TestConfigValidate(t *testing.T) {
	assert.NilError(t, defaultConfig().Validate())

	cfg := defaultConfig()
	cfg.Profile = "gpu"
	assert.ErrorContains(t, cfg.Validate(), "unknown profile mode")

	cfg = defaultConfig()
	cfg.Space = "world"
	assert.ErrorContains(t, cfg.Validate(), "unknown space")

	cfg = defaultConfig()
	cfg.LogLevel = "loud"
	assert.ErrorContains(t, cfg.Validate(), "log level")

	cfg = defaultConfig()
	cfg.Cycles = -1
	assert.ErrorContains(t, cfg.Validate(), "must not be negative")
}

func TestRunCommand(t *testing.T) {
	var logs bytes.Buffer

	cmd := newRootCmd(defaultConfig(), &logs)
	cmd.SetArgs([]string{"run", "testdata/scene.yaml", "--cycles", "2", "--log-level", "debug", "--metrics"})

	assert.NilError(t, cmd.Execute())
	assert.Assert(t, is.Contains(logs.String(), "Scene done"))
	assert.Assert(t, is.Contains(logs.String(), "Cycle done"))
	assert.Assert(t, is.Contains(logs.String(), "dynquery_cycles_total"))
}

func TestRunCommandWithoutScene(t *testing.T) {
	var logs bytes.Buffer

	cmd := newRootCmd(defaultConfig(), &logs)
	cmd.SetArgs([]string{"run"})
	cmd.SetErr(&bytes.Buffer{})

	assert.ErrorContains(t, cmd.Execute(), "no scene given")
}

func TestAccessCommand(t *testing.T) {
	var out bytes.Buffer

	cmd := newRootCmd(defaultConfig(), &bytes.Buffer{})
	cmd.SetArgs([]string{"access", "testdata/scene.yaml"})
	cmd.SetOut(&out)

	assert.NilError(t, cmd.Execute())
	assert.Equal(t, out.String(), "touched <-> moving\nmoving <-> either\n")
}
