package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parsed returns a command whose persistent flags were parsed from args.
func parsed(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	cmd := &cobra.Command{Use: "test"}
	cmd.PersistentFlags().AddFlagSet(rootCmd.PersistentFlags())
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.yaml")
	cfg, err := loadConfig(parsed(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Browser.NotebookURL, cfg.Browser.NotebookURL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("browser:\n  engine: playwright\n  profile_dir: /from/file\n"), 0600))
	t.Setenv(envProfile, "/from/env")

	cfg, err := loadConfig(parsed(t, "--config", path, "--engine", "rod", "--headless", "-v", "debug"))
	require.NoError(t, err)
	assert.Equal(t, config.EngineRod, cfg.Browser.Engine)
	assert.Equal(t, "/from/env", cfg.Browser.ProfileDir)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "debug", cfg.Logging.Verbosity)

	cfg, err = loadConfig(parsed(t, "--config", path, "--profile", "/from/flag"))
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.Browser.ProfileDir)
}

func TestLoadConfig_EnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("browser:\n  notebook_url: https://notebooklm.google.com/notebook/x\n"), 0600))
	t.Setenv(envConfig, path)

	cfg, err := loadConfig(parsed(t))
	require.NoError(t, err)
	assert.Equal(t, "https://notebooklm.google.com/notebook/x", cfg.Browser.NotebookURL)
}

func TestLoadConfig_InvalidEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.yaml")
	_, err := loadConfig(parsed(t, "--config", path, "--engine", "lynx"))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	flags = cliFlags{ConfigFile: path}
	var out bytes.Buffer
	configInitCmd.SetOut(&out)

	require.NoError(t, configInitCmd.RunE(configInitCmd, nil))
	assert.Contains(t, out.String(), path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Timeouts, cfg.Timeouts)

	assert.Error(t, configInitCmd.RunE(configInitCmd, nil), "existing file needs --force")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "auto", describe(messaging.Response{OK: true, Mode: "auto"}))
	assert.Equal(t, "failed [submit]: submit button not found",
		describe(messaging.Response{Mode: "failed", Step: "submit", Detail: "submit button not found"}))
	assert.Equal(t, "create_failed: notebook not ready", describe(messaging.Response{Mode: "create_failed", Detail: "notebook not ready"}))
	assert.Equal(t, "bad_url", describe(messaging.Response{Mode: "bad_url"}))
	assert.Equal(t, "failed", describe(messaging.Response{Detail: ""}))
}
