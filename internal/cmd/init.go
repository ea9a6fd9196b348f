package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ghprovision/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ghprovision settings",
	Long:  "Create a default settings file for ghprovision",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	configPath, err := settingsPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  Configuration file already exists at: %s", configPath)))
		fmt.Fprint(out, "Do you want to overwrite it? (y/N): ")
		var response string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &response) // Ignore error for user input
		if !strings.EqualFold(strings.TrimSpace(response), "y") {
			fmt.Fprintln(out, "Configuration initialization cancelled.")
			return nil
		}
	}

	settings := config.Default()
	if cfgFile != "" {
		err = settings.SaveConfigToPath(cfgFile)
	} else {
		err = settings.SaveConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Configuration file created at: %s", configPath)))
	fmt.Fprintln(out, "📝 Add your GitHub username and token under the github key, or export")
	fmt.Fprintf(out, "   %s_GITHUB_USERNAME and GITHUB_TOKEN.\n", config.EnvPrefix)

	return nil
}
