package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subsplice/internal/deps"
	"subsplice/internal/preflight"
	"subsplice/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, disk space, ffmpeg and the job database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failures := 0

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			configLine := ctx.configPath
			if configLine == "" {
				configLine = "defaults (no config file)"
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configLine, colorize))
			fmt.Fprintln(out, renderStatusLine("Strategy", statusInfo, cfg.Planner.Strategy, colorize))
			fmt.Fprintln(out, renderStatusLine("Mode", statusInfo, fmt.Sprintf("%s, %d worker(s)", cfg.Extraction.Mode, cfg.Extraction.Workers), colorize))

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, r := range preflight.RunAll(cmd.Context(), cfg) {
				if !r.Passed {
					failures++
				}
				fmt.Fprintln(out, renderCheck(r, colorize))
			}
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			for _, s := range statuses {
				if s.Available && s.Version != "" {
					fmt.Fprintln(out, renderStatusLine(s.Name+" version", statusInfo, s.Version, colorize))
				}
			}
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				fmt.Fprintf(out, "%sInstall %s or set tools.ffmpeg / tools.ffprobe\n", statusIndent, strings.Join(missing, " and "))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Job history", colorize) {
				fmt.Fprintln(out, line)
			}
			if !cfg.Jobs.Enabled {
				fmt.Fprintln(out, renderStatusLine("Database", statusInfo, "disabled", colorize))
			} else if store, err := ctx.openStore(); err != nil {
				failures++
				fmt.Fprintln(out, renderStatusLine("Database", statusError, err.Error(), colorize))
			} else {
				result, err := store.IntegrityCheck(cmd.Context())
				switch {
				case err != nil:
					failures++
					fmt.Fprintln(out, renderStatusLine("Database", statusError, err.Error(), colorize))
				case result != "ok":
					failures++
					fmt.Fprintln(out, renderStatusLine("Database", statusError, result, colorize))
				default:
					fmt.Fprintln(out, renderStatusLine("Database", statusOK, store.Path(), colorize))
				}
			}

			if failures > 0 {
				return services.Wrap(services.ErrConfiguration, "doctor", "check",
					fmt.Sprintf("%d check(s) failed", failures), nil)
			}
			return nil
		},
	}
}
