package github

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"ghprovision/pkg/config"
)

// ErrMissingCredentials is returned when no password or token can be resolved
var ErrMissingCredentials = errors.New("no GitHub credentials found")

// Credentials identify the caller against the GitHub API. Password may hold
// an account password or a personal access token.
type Credentials struct {
	Username string
	Password string
	BaseURL  string
}

// ResolveCredentials fills in whatever the caller left empty, first from the
// GITHUB_TOKEN environment variable and then from the settings file.
func ResolveCredentials(creds Credentials, cfg *config.Config) (Credentials, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	creds.Password = strings.TrimSpace(creds.Password)

	if creds.Password == "" {
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			creds.Password = strings.TrimSpace(token)
		}
	}

	if cfg != nil {
		if creds.Username == "" {
			creds.Username = strings.TrimSpace(cfg.GitHub.Username)
		}
		if creds.Password == "" {
			creds.Password = strings.TrimSpace(cfg.GitHub.Token)
		}
		if creds.BaseURL == "" {
			creds.BaseURL = strings.TrimSpace(cfg.GitHub.BaseURL)
		}
	}

	if creds.Password == "" {
		return creds, ErrMissingCredentials
	}

	return creds, nil
}

// HTTPClient returns an HTTP client that authenticates every request. Basic
// authentication is used when a username is set, a bearer token otherwise.
func (c Credentials) HTTPClient(ctx context.Context) *http.Client {
	if c.Username != "" {
		transport := &github.BasicAuthTransport{
			Username: c.Username,
			Password: c.Password,
		}
		return transport.Client()
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: c.Password},
	)
	return oauth2.NewClient(ctx, ts)
}

// GetAuthInstructions returns instructions for setting up GitHub authentication
func GetAuthInstructions() string {
	return `GitHub authentication is required. Please provide credentials using one of the following methods:

1. Command line flags:
   ghprovision configure --username <user> --password <password-or-token> ...

2. Environment variables (Recommended for CI/CD):
   export GHPROVISION_GITHUB_USERNAME="your_username"
   export GITHUB_TOKEN="your_personal_access_token"

3. Configuration File:
   Add the following to ~/.ghprovision/config.yaml:

   github:
     username: "your_username"
     token: "your_personal_access_token"

To create a personal access token:
1. Go to GitHub Settings > Developer settings > Personal access tokens
2. Click "Generate new token (classic)"
3. Select the repo scope (or public_repo for public repositories only)
4. Copy the generated token and use it with one of the methods above`
}
