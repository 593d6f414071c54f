package main

import (
	"fmt"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/automator"
	"github.com/shiromatz/yt-to-notebooklm/pkg/logging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add URL...",
	Short: "Add one or more videos to the notebook",
	Long: `Add each URL as a notebook source through the single-URL flow.

YouTube links are reduced to their canonical watch URL; other http(s)
links are added unchanged. Each URL is reported on its own; a full
notebook stops the remaining URLs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
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

	start := time.Now()
	report := logging.Report{Title: "ADD SUMMARY", Status: "DONE"}
	added := 0
	for _, raw := range args {
		s.console.Step("Adding " + raw)
		resp := s.coord.SendURL(ctx, s.message(messaging.TypeSendURL, raw))

		item := logging.ReportItem{Label: raw, OK: resp.OK, Detail: describe(resp)}
		report.Items = append(report.Items, item)
		if resp.OK {
			added++
			s.console.Successf("%s (%s)", raw, resp.Mode)
		} else {
			s.console.Errorf("%s: %s", raw, item.Detail)
		}

		if resp.LimitReached() {
			report.Status = "LIMIT"
			break
		}
		if ctx.Err() != nil {
			report.Status = "ERR"
			report.Error = ctx.Err().Error()
			break
		}
	}

	report.Duration = time.Since(start)
	report.Metrics = []logging.Metric{
		{Name: "URLs", Value: len(args)},
		{Name: "Added", Value: added},
	}
	s.console.Report(report)

	if added < len(args) {
		return fmt.Errorf("%d of %d urls were not added", len(args)-added, len(args))
	}
	return nil
}

// describe renders a response for the console.
func describe(resp messaging.Response) string {
	if resp.OK {
		return resp.Mode
	}
	if resp.Step != "" {
		return resp.Outcome().String()
	}
	if resp.Detail != "" {
		return fmt.Sprintf("%s: %s", resp.Mode, resp.Detail)
	}
	if resp.Mode == "" {
		return string(automator.ModeFailed)
	}
	return resp.Mode
}
