package pinkeeper

import (
	"fmt"
	"strings"

	"github.com/skaphos/pinkeeper/internal/cliio"
	"github.com/skaphos/pinkeeper/internal/model"
	"github.com/skaphos/pinkeeper/internal/tableutil"
	"github.com/skaphos/pinkeeper/internal/termstyle"
	"github.com/spf13/cobra"
)

type outputKind string

const (
	outputKindTable outputKind = "table"
	outputKindJSON  outputKind = "json"
	outputKindYAML  outputKind = "yaml"
)

func parseOutputMode(format string) (outputKind, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", string(outputKindTable):
		return outputKindTable, nil
	case string(outputKindJSON):
		return outputKindJSON, nil
	case string(outputKindYAML), "yml":
		return outputKindYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// logOutputWriteFailure records non-fatal output write/flush failures.
// CLI consumers frequently pipe to tools that close early (for example `head`),
// so we log and continue instead of treating these as command failures.
func logOutputWriteFailure(cmd *cobra.Command, context string, err error) {
	if err == nil {
		return
	}
	debugf(cmd, "ignored output write failure (%s): %v", context, err)
}

// writeStructured renders v in a non-table format.
func writeStructured(cmd *cobra.Command, kind outputKind, v any) error {
	switch kind {
	case outputKindJSON:
		return cliio.WriteJSON(cmd.OutOrStdout(), v)
	case outputKindYAML:
		return cliio.WriteYAML(cmd.OutOrStdout(), v)
	default:
		return fmt.Errorf("unsupported structured format %q", kind)
	}
}

func writeOutcomeTable(cmd *cobra.Command, outcomes []model.Outcome, dryRun, noHeaders bool) error {
	pathLimit := adaptiveCellLimit(cmd, 48, 28, 16)
	rows := make([][]string, 0, len(outcomes))
	for _, out := range outcomes {
		branch := out.Branch
		if branch == "" {
			branch = tableutil.None
		}
		rows = append(rows, []string{
			out.Record.Name,
			termstyle.Colorize(colorOutputEnabled, displayOutcome(out.Kind, dryRun), termstyle.ForOutcome(out.Kind, dryRun)),
			out.Old,
			out.New,
			branch,
			tableutil.JoinCell(out.Record.WatchedPaths, pathLimit),
		})
	}
	return cliio.WriteTable(cmd.OutOrStdout(), true, noHeaders,
		[]string{"NAME", "OUTCOME", "OLD", "NEW", "BRANCH", "PATHS"}, rows)
}

func writeRecordsTable(cmd *cobra.Command, records []model.RepoRecord, noHeaders bool) error {
	pathLimit := adaptiveCellLimit(cmd, 64, 36, 20)
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{rec.Name, rec.Version, tableutil.JoinCell(rec.WatchedPaths, pathLimit)})
	}
	return cliio.WriteTable(cmd.OutOrStdout(), true, noHeaders, []string{"NAME", "VERSION", "PATHS"}, rows)
}

func displayOutcome(kind model.OutcomeKind, dryRun bool) string {
	if kind == model.OutcomeAdvanced && dryRun {
		return "pending"
	}
	return string(kind)
}

// progressLine is the per-repository stderr line written during a pass.
func progressLine(out model.Outcome) string {
	switch out.Kind {
	case model.OutcomeAdvanced:
		return fmt.Sprintf("%s ... %s => %s", out.Record.Name, out.Old, out.New)
	case model.OutcomeSkipped:
		return fmt.Sprintf("%s ... skipped", out.Record.Name)
	default:
		return fmt.Sprintf("%s ... up to date!", out.Record.Name)
	}
}
