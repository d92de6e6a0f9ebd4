// SPDX-License-Identifier: MIT
package pinkeeper

import (
	"fmt"
	"os"

	"github.com/skaphos/pinkeeper/internal/cliio"
	"github.com/skaphos/pinkeeper/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a pinkeeper configuration",
	Long:  "Creates a pinkeeper config file in the current directory by default. Use a .toml path with --config for TOML.",
	RunE: func(cmd *cobra.Command, args []string) error {
		force := getBoolFlag(cmd, "force")

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		cfgPath, err := config.InitConfigPath(configOverride(cmd), cwd)
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfgPath); err == nil && !force {
			confirmed, err := cliio.PromptYesNo(cmd.ErrOrStderr(), cmd.InOrStdin(), fmt.Sprintf("Overwrite existing config %s? [y/N]: ", cfgPath))
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("config already exists at %q (use --force to overwrite)", cfgPath)
			}
		}

		cfg := config.DefaultConfig()
		if source := getStringFlag(cmd, "file"); source != "" {
			cfg.SourceFile = source
		}
		if base := getStringFlag(cmd, "base-url"); base != "" {
			cfg.Remote.BaseURL = base
		}
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", cfgPath); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing config without prompting")
	initCmd.Flags().String("file", "", "source_file to record, relative to the config directory")
	initCmd.Flags().String("base-url", "", "remote base URL to record")

	rootCmd.AddCommand(initCmd)
}
