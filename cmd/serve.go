package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/media"
	"github.com/ChristianPRO1982/audio-splitter/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend API",
	Long: `Run the HTTP backend that stores uploads, serves audio and waveforms, and
cuts segments with ffmpeg. Data lives below --data-dir:

  <data-dir>/audio-splitter.db
  <data-dir>/projects/<id>/input
  <data-dir>/projects/<id>/outputs/
  <data-dir>/cache/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		paths, err := internal.NewStoragePaths(cfg.Server.DataDir)
		if err != nil {
			return err
		}

		var store *internal.Store
		err = internal.ShowProgressWithSteps(ctx, []internal.ProgressStep{
			{Message: "Preparing " + paths.DataDir, Fn: paths.EnsureLayout},
			{Message: "Opening database", Fn: func() error {
				db, err := internal.OpenDatabase(paths.DatabasePath())
				if err != nil {
					return err
				}
				store = internal.NewStore(db)
				return nil
			}},
		})
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		srv := server.New(cfg.Server, store, paths, media.NewRunner(cfg.Media))
		if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8000)")
}
