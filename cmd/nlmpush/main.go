// Package main provides nlmpush, which adds YouTube videos to a NotebookLM
// notebook by driving a signed-in Chromium profile.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Environment variables read after .env is loaded.
const (
	envConfig  = "NLMPUSH_CONFIG"
	envProfile = "NLMPUSH_PROFILE"
)

// cliFlags holds the persistent flags shared by every command.
type cliFlags struct {
	ConfigFile string
	Engine     string
	Profile    string
	Notebook   string
	Headless   bool
	Verbosity  string
}

var flags cliFlags

var rootCmd = &cobra.Command{
	Use:           "nlmpush",
	Short:         "Add YouTube videos to NotebookLM",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `nlmpush opens NotebookLM in a Chromium profile you are signed in to and
adds YouTube videos as notebook sources, one at a time or from a playlist.

Examples:
  nlmpush add https://www.youtube.com/watch?v=dQw4w9WgXcQ
  nlmpush playlist "https://www.youtube.com/playlist?list=PL..."
  nlmpush serve --addr 127.0.0.1:7733`,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.ConfigFile, "config", "", "Path to configuration file (YAML), default ~/.nlmpush/config.yaml")
	pf.StringVar(&flags.Engine, "engine", "", "Browser engine: playwright or rod")
	pf.StringVar(&flags.Profile, "profile", "", "Chromium profile directory signed in to NotebookLM")
	pf.StringVar(&flags.Notebook, "notebook", "", "Notebook or dashboard URL to open")
	pf.BoolVar(&flags.Headless, "headless", false, "Run the browser without a window")
	pf.StringVarP(&flags.Verbosity, "verbosity", "v", "", "Console verbosity: quiet, normal, verbose, debug")
}

func main() {
	// A missing .env is normal
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies environment and flag
// overrides. Flags win over the environment, which wins over the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := flags.ConfigFile
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if profile := os.Getenv(envProfile); profile != "" {
		cfg.Browser.ProfileDir = profile
	}

	pf := cmd.Flags()
	if pf.Changed("engine") {
		cfg.Browser.Engine = config.Engine(flags.Engine)
	}
	if pf.Changed("profile") {
		cfg.Browser.ProfileDir = flags.Profile
	}
	if pf.Changed("notebook") {
		cfg.Browser.NotebookURL = flags.Notebook
	}
	if pf.Changed("headless") {
		cfg.Browser.Headless = flags.Headless
	}
	if pf.Changed("verbosity") {
		cfg.Logging.Verbosity = flags.Verbosity
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
