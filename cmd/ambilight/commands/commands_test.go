package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ambilight/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// flag variables outlive a single Execute
	cfgFile, logLevel, pretty, writeConfig = "", "", false, false
	patternName, holdFrames = "index_sweep", 30
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigWriteThenPrint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.yaml")
	out, err := execute(t, "config", "--write", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Strip, c.Strip)

	out, err = execute(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "count: 300")
}

func TestConfigMissingExplicitPath(t *testing.T) {
	_, err := execute(t, "config", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCalibrateUnknownPattern(t *testing.T) {
	_, err := execute(t, "calibrate", "--pattern", "plane_z")
	assert.Error(t, err)
}

func TestCalibrateOnSimStrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	c := config.Default()
	c.Strip.Driver = "sim"
	c.Strip.Count = 4
	c.Loop.FPS = 1000
	require.NoError(t, config.Save(path, c))

	_, err := execute(t, "calibrate", "--config", path, "--pattern", "halves", "--hold", "2")
	require.NoError(t, err)
}
