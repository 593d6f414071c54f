package main

import (
	"fmt"

	"github.com/shiromatz/yt-to-notebooklm/pkg/batch"
	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
	"github.com/spf13/cobra"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist URL",
	Short: "Add every video of a playlist or channel page",
	Long: `Open the listing page, collect its video links in page order and add
them to the notebook one at a time. The run stops early when the notebook
reaches its source limit. A JSON and Markdown report is written to the
configured report directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlaylist,
}

func init() {
	rootCmd.AddCommand(playlistCmd)
}

func runPlaylist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	s.console.Step("Opening " + args[0])
	source, err := s.manager.OpenTab(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to open playlist: %w", err)
	}
	defer func() { _ = s.manager.CloseTab(source.ID()) }()

	msg := s.message(messaging.TypeProcessPlaylist, "")
	msg.SourceID = source.ID()
	resp := s.coord.StartPlaylist(ctx, msg)
	if !resp.OK {
		return fmt.Errorf("playlist not started: %s", describe(resp))
	}
	s.console.Infof("Found %d videos", resp.Count)

	var sum *batch.Summary
	select {
	case sum = <-s.summaries:
	case <-ctx.Done():
		s.coord.Wait()
		sum = <-s.summaries
	}
	s.console.Report(sum.Report())

	if sum.Status == batch.StatusError {
		return fmt.Errorf("playlist run aborted: %s", sum.Error)
	}
	return nil
}
