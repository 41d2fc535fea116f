package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/gateway"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	serverURL  string
	dataDir    string
	cfg        = internal.DefaultConfig()
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audio-splitter",
	Short: "Cut long recordings into named MP3 segments",
	Long: `Upload a long recording, place markers at split points and export every
segment between them as its own MP3.

The backend (audio-splitter serve) stores projects and runs ffmpeg. The other
commands talk to it over HTTP.

Quick Start:
  audio-splitter serve                                   # Start the backend
  audio-splitter export set.wav -m 3:10 -m 7:45          # Split at two points
  audio-splitter export set.wav -m 3:10 --name 1=intro   # Name the first segment
  audio-splitter edit set.wav                            # Interactive session
  audio-splitter segments --duration 10:00 -m 4:00       # Preview offline`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if serverURL != "" {
			loaded.Client.ServerURL = serverURL
		}
		if dataDir != "" {
			loaded.Server.DataDir = dataDir
		}
		cfg = loaded

		level, _ := internal.ParseLogLevel(cfg.LogLevel)
		internal.SetLogLevel(level)
		if verbose {
			internal.SetVerbose(true)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newClient returns a backend client for the configured server
func newClient() *gateway.Client {
	timeout := cfg.Client.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return gateway.NewClient(cfg.Client.ServerURL, timeout)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.audio-splitter.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend URL (default http://localhost:8000)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Backend data directory (default ./data)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
