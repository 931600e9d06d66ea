package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/zorro901/presenotion/internal/adapters/secondary/config"
	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/services"
)

var workDir string

// newConfigService wires the TOML loader and merger
func newConfigService() *services.ConfigService {
	return services.NewConfigService(config.NewTOMLLoader(), config.NewConfigMerger())
}

// collectFlags returns the changed flags ApplyFlags understands. Unchanged
// flags are left out so they never mask config file values.
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := cmd.Flags()

	for _, name := range []string{"port", "base-font-size"} {
		if set.Lookup(name) != nil && set.Changed(name) {
			v, _ := set.GetInt(name)
			flags[name] = v
		}
	}
	for _, name := range []string{"host", "browser", "remote-browser", "log-level"} {
		if set.Lookup(name) != nil && set.Changed(name) {
			v, _ := set.GetString(name)
			flags[name] = v
		}
	}
	for _, name := range []string{"no-browser", "headful", "watch"} {
		if set.Lookup(name) != nil && set.Changed(name) {
			v, _ := set.GetBool(name)
			flags[name] = v
		}
	}

	return flags
}

// loadConfig resolves the layered configuration for cmd
func loadConfig(cmd *cobra.Command) (*entities.Config, error) {
	dir := workDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		dir = wd
	}

	cfg, err := newConfigService().LoadConfig(cmd.Context(), dir, collectFlags(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage presenotion configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default global configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigInit(cmd, config.NewTOMLLoader())
	},
}

func runConfigInit(cmd *cobra.Command, loader *config.TOMLLoader) error {
	svc := services.NewConfigService(loader, config.NewConfigMerger())
	path := loader.GetGlobalPath()

	if err := svc.CreateGlobalConfig(cmd.Context()); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("config already exists at %s", path)
		}
		return fmt.Errorf("creating config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the global and local configuration paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := workDir
		if dir == "" {
			dir = "."
		}
		loader := config.NewTOMLLoader()
		fmt.Fprintf(cmd.OutOrStdout(), "global: %s\nlocal:  %s\n", loader.GetGlobalPath(), loader.GetLocalPath(dir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}
