package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsNonPositiveConstants(t *testing.T) {
	c := Default()
	c.TGossip = 0
	assert.Error(t, c.Validate())
}

func TestValidateRejectsTRemoveBelowTFail(t *testing.T) {
	c := Default()
	c.TFail = 10
	c.TRemove = 5
	assert.Error(t, c.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	c := Default()
	c.LogLevel = "verbose"
	assert.Error(t, c.Validate())
}

func TestValidateRejectsEmptyBindAddr(t *testing.T) {
	c := Default()
	c.BindAddr = ""
	assert.Error(t, c.Validate())
}

func TestRegisterFlagsOverridesDefault(t *testing.T) {
	c := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{"--protocol.t-gossip=9"}))
	assert.Equal(t, int64(9), c.TGossip)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("t_gossip: 7\nbind_addr: \":9999\"\n"), 0o644))

	c := Default()
	require.NoError(t, LoadYAML(c, path))

	assert.Equal(t, int64(7), c.TGossip)
	assert.Equal(t, ":9999", c.BindAddr)
	assert.Equal(t, int64(5), c.TFail) // untouched fields keep their default
}
