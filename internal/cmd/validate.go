package cmd

import (
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"ghprovision/pkg/github"
)

type validateOptions struct {
	username   string
	password   string
	repository string
}

var validateOpts validateOptions

var validateCmd = &cobra.Command{
	Use:   "validate <config-file.yaml>",
	Short: "Validate a repository configuration file",
	Long: `Validate a repository configuration file without changing anything.

Offline validation (always performed):
• YAML syntax and structure
• Required names and titles, label colors
• Duplicate names and titles, references to undeclared milestones and labels

Online validation (with --repo-name and credentials):
• The repository is accessible
• Every issue milestone is declared or already exists
• Every issue label is declared or already exists

Examples:
  ghprovision validate repository.yaml
  ghprovision validate repository.yaml -r octocat/hello-world -u octocat -p ghp_xxx`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateOpts.username, "username", "u", "", "GitHub username")
	validateCmd.Flags().StringVarP(&validateOpts.password, "password", "p", "", "GitHub password or personal access token")
	validateCmd.Flags().StringVarP(&validateOpts.repository, "repo-name", "r", "", "Repository to validate against (owner/name)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := args[0]

	fmt.Fprintf(out, "🔍 Validating configuration file: %s\n", configFile)

	repoConfig, err := github.LoadRepositoryConfigurationFromFile(configFile)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Fprintln(out, successStyle.Render("✓ YAML syntax and structure validation passed"))
	fmt.Fprintf(out, "📋 %d label(s), %d milestone(s), %d issue(s)\n",
		len(repoConfig.Labels), len(repoConfig.Milestones), len(repoConfig.Issues))
	displayWarnings(out, repoConfig.Warnings())

	if validateOpts.repository == "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, successStyle.Render("✅ Configuration file is valid (offline validation only)"))
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, err := withRunLogger(cmd.Context(), cmd.ErrOrStderr(), settings.Log.Level, settings.Log.Format)
	if err != nil {
		return err
	}

	creds, err := github.ResolveCredentials(github.Credentials{
		Username: validateOpts.username,
		Password: validateOpts.password,
	}, settings)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(github.GetAuthInstructions()))
		return err
	}

	client, err := newAPIClient(ctx, creds)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	clog.FromContext(ctx).With("repository", validateOpts.repository).Debug("Validating against live repository")

	warnings, err := github.NewValidator(client).ValidateRemote(ctx, validateOpts.repository, repoConfig)
	displayWarnings(out, warnings)
	if err != nil {
		return fmt.Errorf("configuration validation failed for %s: %w", validateOpts.repository, err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Configuration file is valid for %s", validateOpts.repository)))
	return nil
}
