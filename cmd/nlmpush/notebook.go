package main

import (
	"fmt"

	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
	"github.com/spf13/cobra"
)

var createNotebookCmd = &cobra.Command{
	Use:   "create-notebook",
	Short: "Create a new notebook from the NotebookLM dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		resp, err := s.coord.Handle(ctx, s.message(messaging.TypeCreateNotebook, ""))
		if err != nil {
			return err
		}
		if !resp.OK {
			return fmt.Errorf("create notebook: %s", resp.Detail)
		}

		url, err := s.target.URL(ctx)
		if err != nil {
			return err
		}
		s.console.Successf("Notebook created: %s", url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createNotebookCmd)
}
