package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dl-alexandre/gdsync/internal/config"
	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/dl-alexandre/gdsync/pkg/version"
	"github.com/spf13/cobra"
)

var (
	globalFlags types.GlobalFlags
	logger      logging.Logger = logging.NewNoOpLogger()
	appConfig                  = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "gdsync",
	Short: "Synchronize local folders with Google Drive",
	Long: `gdsync keeps pairs of folders in sync. Each side of a pair is a local
directory or a Google Drive folder, and a profile names the pairs and the
sync mode (mirror, one-way-lr, one-way-rl, two-way).

All commands support JSON output for automation and scripting.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateGlobalFlags(); err != nil {
			return err
		}

		cfg, err := config.Load(globalFlags.Config)
		if err != nil {
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build())
		}
		appConfig = cfg
		if globalFlags.OutputFormat == "" {
			globalFlags.OutputFormat = cfg.DefaultOutputFormat
		}

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logConfig := logging.DefaultLogConfig()
		logConfig.Level = level
		logConfig.OutputFile = cfg.LogFile
		logConfig.EnableConsole = !globalFlags.Quiet && cfg.LogLevel != "quiet"
		logConfig.EnableDebug = globalFlags.Debug
		logConfig.EnableColor = cfg.ColorOutput
		if globalFlags.LogFile != "" {
			logConfig.OutputFile = globalFlags.LogFile
		}
		if globalFlags.Verbose {
			logConfig.Level = logging.DEBUG
		}
		if globalFlags.OutputFormat == types.OutputFormatJSON && !globalFlags.Verbose && !globalFlags.Debug {
			logConfig.EnableConsole = false
		}

		logger, err = logging.NewLogger(logConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "Print the version, commit and build information of gdsync",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newOutput(cmd).WriteSuccess("version", versionView{version.Get()})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar((*string)(&globalFlags.OutputFormat), "output", "", "Output format (json, table); defaults to the configured format")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.JSON, "json", false, "Output in JSON format (alias for --output json)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Config, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&globalFlags.ProfilesDir, "profiles-dir", "", "Directory holding sync profiles")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "Path to log file")

	rootCmd.AddCommand(versionCmd)
}

func validateGlobalFlags() error {
	// Handle --json flag as alias for --output json
	if globalFlags.JSON {
		globalFlags.OutputFormat = types.OutputFormatJSON
	}

	switch globalFlags.OutputFormat {
	case "", types.OutputFormatJSON, types.OutputFormatTable:
		return nil
	}
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
		fmt.Sprintf("invalid output format: %s", globalFlags.OutputFormat)).Build())
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	err := rootCmd.Execute()
	_ = logger.Close()

	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", utils.ErrorMessage(err))
	}
	return exitCode(err)
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() types.GlobalFlags {
	return globalFlags
}

// GetLogger returns the global logger
func GetLogger() logging.Logger {
	return logger
}

func newOutput(cmd *cobra.Command) *OutputWriter {
	return NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet, globalFlags.Verbose).
		WithStreams(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func getConfigDir() (string, error) {
	return config.GetConfigDir()
}

func getProfilesDir() (string, error) {
	if globalFlags.ProfilesDir != "" {
		return globalFlags.ProfilesDir, nil
	}
	return appConfig.GetProfilesDir()
}
