package cli

import (
	"fmt"

	"github.com/dl-alexandre/gdsync/internal/config"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Commands for managing gdsync configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective configuration: defaults, then the config file, then GDSYNC_* environment variables",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Use 'config show' to see available keys",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	Long:  "Reset all configuration settings to their default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigReset,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
}

// configView renders every key of cfg; secrets come back masked from Get
func configView(cfg *config.Config) keyValueView {
	view := keyValueView{}
	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		view = append(view, keyValue{Key: key, Value: value})
	}
	return view
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	return newOutput(cmd).WriteSuccess("config.show", configView(appConfig))
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)
	key, value := args[0], args[1]

	// start from the file, not the env-overlaid view, so env values aren't persisted
	cfg, err := loadFileConfig()
	if err != nil {
		return out.Fail("config.set", err, utils.ErrCodeUnknown)
	}
	if err := cfg.Set(key, value); err != nil {
		return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).
			WithContext("key", key).
			Build())
	}

	if err := cfg.Save(globalFlags.Config); err != nil {
		return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeUnknown,
			fmt.Sprintf("Failed to save configuration: %v", err)).Build())
	}

	shown, _ := cfg.Get(key)
	out.Log("Configuration updated: %s = %s", key, shown)
	return out.WriteSuccess("config.set", keyValueView{{Key: key, Value: shown}})
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)

	cfg := config.DefaultConfig()
	if err := cfg.Save(globalFlags.Config); err != nil {
		return out.WriteError("config.reset", utils.NewCLIError(utils.ErrCodeUnknown,
			fmt.Sprintf("Failed to reset configuration: %v", err)).Build())
	}

	out.Log("Configuration reset to defaults")
	return out.WriteSuccess("config.reset", configView(cfg))
}

func loadFileConfig() (*config.Config, error) {
	return config.LoadFile(globalFlags.Config)
}
