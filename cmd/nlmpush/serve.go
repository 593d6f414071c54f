package main

import (
	"github.com/shiromatz/yt-to-notebooklm/pkg/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep the browser open and accept messages over HTTP",
	Long: `Serve the message endpoint until interrupted.

  POST /v1/messages      SEND_URL, PROCESS_PLAYLIST, ADD_SOURCE, CLOSE_DIALOG,
                         PING or CREATE_NOTEBOOK; targetId defaults to the
                         notebook tab
  GET  /v1/badges        current badge of every source
  GET  /v1/badges/{tab}  badge of one source
  GET  /v1/tabs          open browser tabs
  POST /v1/tabs          open a tab, e.g. a playlist to use as sourceId
  DELETE /v1/tabs/{id}   close a tab
  GET  /healthz          liveness`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	s, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	// Finished playlist runs are reported as they complete
	go func() {
		for {
			select {
			case sum := <-s.summaries:
				s.console.Report(sum.Report())
			case <-ctx.Done():
				return
			}
		}
	}()

	srv := server.New(s.coord, s.badges, s.manager, s.log)
	srv.SetDefaultTarget(s.target.ID())
	s.console.Successf("Notebook tab %s ready, serving on %s", s.target.ID(), cfg.Server.Addr)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
