package pinkeeper

import (
	"github.com/skaphos/pinkeeper/internal/strutil"
	"github.com/spf13/cobra"
)

const (
	formatUsage    = "output format: table, json, yaml"
	noHeadersUsage = "when using table format, do not print headers"
	onlyUsage      = "comma-separated repository names or globs to resolve (default: config only list, else all)"
)

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "o", "table", formatUsage)
}

func addNoHeadersFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("no-headers", false, noHeadersUsage)
}

func addSourceFlag(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "host source file holding the registry block (overrides config source_file)")
}

func addResolveFlags(cmd *cobra.Command) {
	addSourceFlag(cmd)
	cmd.Flags().String("only", "", onlyUsage)
	cmd.Flags().Int("concurrency", 0, "repositories resolved in parallel (default from config)")
	cmd.Flags().Int("timeout", 0, "per-repository timeout in seconds; 0 uses the config value, negative disables it")
	cmd.Flags().String("vcs", "", "remote query backend: git or hg (default from config)")
	cmd.Flags().String("base-url", "", "remote base URL repository names are joined to (overrides config remote.base_url)")
	addFormatFlag(cmd)
	addNoHeadersFlag(cmd)
}

func getStringFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func getIntFlag(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

// selectionFromCommand merges positional names and --only. When both are
// empty the config default applies.
func selectionFromCommand(cmd *cobra.Command, args []string, fallback []string) []string {
	selected := strutil.SplitAll(args)
	selected = append(selected, strutil.SplitCSV(getStringFlag(cmd, "only"))...)
	if len(selected) == 0 {
		return fallback
	}
	return selected
}
