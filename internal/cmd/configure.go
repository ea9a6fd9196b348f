package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"ghprovision/pkg/github"
)

// errMissingArguments is returned when a mandatory value could not be resolved
var errMissingArguments = errors.New("missing required arguments")

type configureOptions struct {
	username   string
	password   string
	repository string
	configFile string
	dryRun     bool
}

var configureOpts configureOptions

// newAPIClient is replaced in tests
var newAPIClient = func(ctx context.Context, creds github.Credentials) (github.APIClient, error) {
	client, err := github.NewClient(ctx, creds)
	if err != nil {
		return nil, err
	}
	return client, nil
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Create missing labels, milestones and issues in a repository",
	Long: `Configure a GitHub repository from a YAML file.

Labels are processed first, then milestones, then issues. Every entity that
already exists in the repository (matched by name or title, ignoring case) is
left untouched; every other entity is created. Closed milestones and closed
issues count as existing, so a declared issue whose title matches a closed
issue is not created again. An issue whose milestone cannot be found stops
the run.

The username and password may also come from the settings file or from the
GHPROVISION_GITHUB_USERNAME and GITHUB_TOKEN environment variables. The password
may be a personal access token.

Examples:
  ghprovision configure -u octocat -p ghp_xxx -r octocat/hello-world -f repository.yaml
  ghprovision configure -r octocat/hello-world -f repository.yaml --dry-run`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVarP(&configureOpts.username, "username", "u", "", "GitHub username")
	configureCmd.Flags().StringVarP(&configureOpts.password, "password", "p", "", "GitHub password or personal access token")
	configureCmd.Flags().StringVarP(&configureOpts.repository, "repo-name", "r", "", "Full name of the repository to configure (owner/name)")
	configureCmd.Flags().StringVarP(&configureOpts.configFile, "configuration-file", "f", "", "Path to the YAML configuration file")
	configureCmd.Flags().BoolVar(&configureOpts.dryRun, "dry-run", false, "Show what would be created without changing anything")
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, err := withRunLogger(cmd.Context(), cmd.ErrOrStderr(), settings.Log.Level, settings.Log.Format)
	if err != nil {
		return err
	}
	log := clog.FromContext(ctx)

	creds, credErr := github.ResolveCredentials(github.Credentials{
		Username: configureOpts.username,
		Password: configureOpts.password,
	}, settings)

	opts := configureOpts
	opts.username = creds.Username
	opts.password = creds.Password
	if credErr != nil || opts.missing() {
		printParsedArguments(cmd.ErrOrStderr(), opts)
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return errMissingArguments
	}

	repoConfig, err := github.LoadRepositoryConfigurationFromFile(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load repository configuration: %w", err)
	}
	displayWarnings(out, repoConfig.Warnings())

	client, err := newAPIClient(ctx, creds)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}
	reconciler := github.NewReconciler(client)

	if err := reconciler.Validate(repoConfig); err != nil {
		return err
	}

	log.With("repository", opts.repository, "file", opts.configFile, "dry_run", opts.dryRun).
		Debug("Resolved configure request")

	var plan *github.ReconciliationPlan
	if opts.dryRun {
		plan, err = reconciler.Plan(ctx, opts.repository, repoConfig)
	} else {
		plan, err = reconciler.Configure(ctx, opts.repository, repoConfig)
	}
	displayPlan(out, plan, opts.dryRun)

	if stats, ok := client.(interface{ RateLimiterStats() github.RateLimiterStats }); ok {
		s := stats.RateLimiterStats()
		log.With("remaining", s.RemainingRequests, "waits", s.TotalWaits, "delay", s.TotalDelayTime.String()).
			Debug("GitHub API rate limit")
	}

	if err != nil {
		if errors.Is(err, github.ErrRepositoryNotFound) {
			fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(github.GetAuthInstructions()))
		}
		return err
	}

	if !opts.dryRun {
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Repository %s configured", plan.Repository.FullName)))
	}
	return nil
}

func (o configureOptions) missing() bool {
	return strings.TrimSpace(o.username) == "" ||
		strings.TrimSpace(o.password) == "" ||
		strings.TrimSpace(o.repository) == "" ||
		strings.TrimSpace(o.configFile) == ""
}

// printParsedArguments echoes what was understood from the command line,
// masking the password
func printParsedArguments(w io.Writer, o configureOptions) {
	fmt.Fprintln(w, errorStyle.Render("Failed to interpret your request. Here are the parsed commands."))
	fmt.Fprintf(w, "  username:           %s\n", valueOrMissing(o.username))
	fmt.Fprintf(w, "  password:           %s\n", maskedOrMissing(o.password))
	fmt.Fprintf(w, "  repo-name:          %s\n", valueOrMissing(o.repository))
	fmt.Fprintf(w, "  configuration-file: %s\n\n", valueOrMissing(o.configFile))
}

func valueOrMissing(value string) string {
	if strings.TrimSpace(value) == "" {
		return "<missing>"
	}
	return value
}

func maskedOrMissing(value string) string {
	if strings.TrimSpace(value) == "" {
		return "<missing>"
	}
	return "********"
}
