package pinkeeper

import (
	"fmt"
	"os"

	"github.com/skaphos/pinkeeper/internal/config"
	"github.com/skaphos/pinkeeper/internal/engine"
	"github.com/skaphos/pinkeeper/internal/vcs"
	"github.com/spf13/cobra"
)

// newQuery is overridable in tests.
var newQuery = vcs.NewForSelection

// runtimeContext is the resolved config and host file for one command run.
type runtimeContext struct {
	cfg        *config.Config
	cfgPath    string
	cfgFound   bool
	sourcePath string
}

func configOverride(_ *cobra.Command) string {
	return flagConfig
}

// loadRuntime resolves the config file and the host source path. The --file
// flag wins over source_file, and is taken relative to the working directory.
func loadRuntime(cmd *cobra.Command) (*runtimeContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfgPath, err := config.ResolveConfigPath(configOverride(cmd), cwd)
	if err != nil {
		return nil, err
	}
	cfg, found, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}
	if found {
		debugf(cmd, "using config %s", cfgPath)
	} else {
		debugf(cmd, "no config at %s, using defaults", cfgPath)
	}

	rc := &runtimeContext{cfg: cfg, cfgPath: cfgPath, cfgFound: found}
	if file := getStringFlag(cmd, "file"); file != "" {
		rc.sourcePath = config.ResolveSourcePath("", cwd, file)
	} else if found {
		rc.sourcePath = config.ResolveSourcePath(cfgPath, "", cfg.SourceFile)
	} else {
		rc.sourcePath = config.ResolveSourcePath("", cwd, cfg.SourceFile)
	}
	if rc.sourcePath == "" {
		return nil, fmt.Errorf("no source file configured (set source_file in %s or pass --file)", cfgPath)
	}
	debugf(cmd, "using source %s", rc.sourcePath)
	return rc, nil
}

// engineForCommand builds an engine whose query backend follows --vcs, then
// remote.vcs from config. --base-url likewise overrides remote.base_url.
func engineForCommand(cmd *cobra.Command, rc *runtimeContext) (*engine.Engine, error) {
	selection := getStringFlag(cmd, "vcs")
	if selection == "" {
		selection = rc.cfg.Remote.VCS
	}
	if base := getStringFlag(cmd, "base-url"); base != "" {
		rc.cfg.Remote.BaseURL = base
	}
	query, err := newQuery(selection)
	if err != nil {
		return nil, err
	}
	debugf(cmd, "remote query backend %s at %s", query.Name(), rc.cfg.Remote.BaseURL)
	return engine.New(rc.cfg, query), nil
}
