// SPDX-License-Identifier: MIT
package pinkeeper

import (
	"github.com/skaphos/pinkeeper/internal/engine"
	"github.com/skaphos/pinkeeper/internal/model"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [NAME|GLOB ...]",
	Short: "Advance pinned revisions and rewrite the registry block",
	Long: "Clones each selected repository, finds the branch containing its pin, and advances the pin " +
		"to the newest revision touching its watched paths. The host file is rewritten once, only when the registry changed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd, args, getBoolFlag(cmd, "dry-run"), false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [NAME|GLOB ...]",
	Short: "Report pins that would advance without rewriting anything",
	Long:  "Runs the same resolution pass as update as a dry run. Exits 1 when any pin would advance.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd, args, true, true)
	},
}

func runUpdate(cmd *cobra.Command, args []string, dryRun, check bool) error {
	debugf(cmd, "starting %s", cmd.Name())
	format := getStringFlag(cmd, "format")
	kind, err := parseOutputMode(format)
	if err != nil {
		return err
	}
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	eng, err := engineForCommand(cmd, rc)
	if err != nil {
		return err
	}

	only := selectionFromCommand(cmd, args, rc.cfg.Only)
	if len(only) > 0 {
		debugf(cmd, "selective run: %v", only)
	}
	report, err := eng.Run(cmd.Context(), engine.RunOptions{
		SourcePath: rc.sourcePath,
		DryRun:     dryRun,
		Update: engine.UpdateOptions{
			Only:        only,
			Concurrency: getIntFlag(cmd, "concurrency"),
			Timeout:     getIntFlag(cmd, "timeout"),
			OnOutcome: func(out model.Outcome) {
				infof(cmd, "%s", progressLine(out))
			},
		},
	})
	if err != nil {
		return err
	}
	for _, pattern := range report.Unmatched {
		infof(cmd, "warning: %q matched no repository", pattern)
	}
	if report.Written {
		infof(cmd, "updating source!")
	} else if report.Changed && !check {
		infof(cmd, "dry run: %s not written", rc.sourcePath)
	}

	setColorOutputMode(cmd, string(kind))
	if kind == outputKindTable {
		logOutputWriteFailure(cmd, cmd.Name()+" table", writeOutcomeTable(cmd, report.Outcomes, dryRun, getBoolFlag(cmd, "no-headers")))
	} else {
		logOutputWriteFailure(cmd, cmd.Name()+" "+string(kind), writeStructured(cmd, kind, report))
	}

	if check && report.Changed {
		raiseExitCode(exitUpdatesAvailable)
		infof(cmd, "updates available")
	}
	return nil
}

func init() {
	addResolveFlags(updateCmd)
	updateCmd.Flags().Bool("dry-run", false, "resolve and report without rewriting the source file")
	addResolveFlags(checkCmd)

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(checkCmd)
}
