package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ghprovision/pkg/config"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "ghprovision",
	Short: "Provision GitHub repository labels, milestones and issues from YAML",
	Long: `ghprovision is a command-line tool that configures a GitHub repository from a
declarative YAML file. It creates the labels, milestones and issues the file
declares and that the repository does not have yet. Existing entities are never
modified or deleted, so running it again is safe.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Settings file (default is $HOME/.ghprovision/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: auto, text, json")

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
}

// settingsPath returns the settings file selected by --config or the default
func settingsPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.GetConfigPath()
}

// loadSettings loads the settings file and applies the log flags on top
func loadSettings() (*config.Config, error) {
	var settings *config.Config
	var err error
	if cfgFile != "" {
		settings, err = config.LoadConfigFromPath(cfgFile)
	} else {
		settings, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ghprovision settings: %w", err)
	}

	if logLevel != "" {
		settings.Log.Level = logLevel
	}
	if logFormat != "" {
		settings.Log.Format = logFormat
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ghprovision settings: %w", err)
	}

	return settings, nil
}
