package pinkeeper

import (
	"fmt"

	"github.com/skaphos/pinkeeper/internal/model"
	"github.com/skaphos/pinkeeper/internal/pinfile"
	"github.com/skaphos/pinkeeper/internal/registry"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list [NAME ...]",
	Aliases: []string{"ls"},
	Short:   "Print the parsed registry",
	Long:    "Prints every pinned repository, or only the named ones in the order given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseOutputMode(getStringFlag(cmd, "format"))
		if err != nil {
			return err
		}
		rc, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		file, err := pinfile.ReadFile(rc.sourcePath, rc.cfg.PinfileOptions())
		if err != nil {
			return err
		}
		reg := registry.New(file.Records)
		if err := reg.Validate(); err != nil {
			infof(cmd, "warning: %v", err)
		}

		if len(args) > 0 {
			picked := make([]model.RepoRecord, 0, len(args))
			for _, name := range args {
				rec := reg.Find(name)
				if rec == nil {
					return fmt.Errorf("unknown repository %s", name)
				}
				picked = append(picked, *rec)
			}
			reg = registry.New(picked)
		}

		setColorOutputMode(cmd, string(kind))
		if kind == outputKindTable {
			logOutputWriteFailure(cmd, "list table", writeRecordsTable(cmd, reg.Records, getBoolFlag(cmd, "no-headers")))
		} else {
			logOutputWriteFailure(cmd, "list "+string(kind), writeStructured(cmd, kind, reg))
		}
		debugf(cmd, "list completed: %d repos", len(reg.Records))
		return nil
	},
}

func init() {
	addSourceFlag(listCmd)
	addFormatFlag(listCmd)
	addNoHeadersFlag(listCmd)

	rootCmd.AddCommand(listCmd)
}
