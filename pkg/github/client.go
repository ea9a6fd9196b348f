package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
)

// Client implements the APIClient interface using the GitHub REST API
type Client struct {
	client  *github.Client
	limiter RateLimiter
}

// NewClient creates a new GitHub API client for the given credentials
func NewClient(ctx context.Context, creds Credentials) (*Client, error) {
	client := github.NewClient(creds.HTTPClient(ctx))
	client.UserAgent = "ghprovision"

	if creds.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(creds.BaseURL, creds.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", creds.BaseURL, err)
		}
	}

	return &Client{
		client:  client,
		limiter: NewRateLimiter(nil),
	}, nil
}

// RateLimiterStats returns the pacing statistics collected so far
func (c *Client) RateLimiterStats() RateLimiterStats {
	return c.limiter.Stats()
}

// call runs a single API request behind the rate limiter
func (c *Client) call(ctx context.Context, resource string, operation func() (*github.Response, error)) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return WrapGitHubError(err, resource)
	}

	resp, err := operation()
	if resp != nil {
		c.limiter.Update(resp.Rate)
	}
	if err != nil {
		return WrapGitHubError(err, resource)
	}
	return nil
}

// ListRepositories lists all repositories the authenticated user can access
func (c *Client) ListRepositories(ctx context.Context) ([]Repository, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Affiliation: "owner,collaborator,organization_member",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allRepositories []Repository
	for {
		var repos []*github.Repository
		var resp *github.Response
		err := c.call(ctx, "repositories", func() (*github.Response, error) {
			var err error
			repos, resp, err = c.client.Repositories.ListByAuthenticatedUser(ctx, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, repo := range repos {
			allRepositories = append(allRepositories, convertGitHubRepository(repo))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepositories, nil
}

// ListLabels lists all labels of a repository
func (c *Client) ListLabels(ctx context.Context, owner, name string) ([]Label, error) {
	opts := &github.ListOptions{PerPage: 100}

	var allLabels []Label
	for {
		var labels []*github.Label
		var resp *github.Response
		err := c.call(ctx, fmt.Sprintf("labels for %s/%s", owner, name), func() (*github.Response, error) {
			var err error
			labels, resp, err = c.client.Issues.ListLabels(ctx, owner, name, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, label := range labels {
			allLabels = append(allLabels, convertGitHubLabel(label))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allLabels, nil
}

// GetLabel retrieves a single label by name. A missing label yields an
// ErrorTypeNotFound error. The name is sent as one escaped path segment so
// names such as "kind/bug" or "question?" resolve.
func (c *Client) GetLabel(ctx context.Context, owner, name, label string) (*Label, error) {
	var found *github.Label

	err := c.call(ctx, fmt.Sprintf("label %s in %s/%s", label, owner, name), func() (*github.Response, error) {
		var resp *github.Response
		var err error
		found, resp, err = c.client.Issues.GetLabel(ctx, owner, name, url.PathEscape(label))
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	converted := convertGitHubLabel(found)
	return &converted, nil
}

// CreateLabel creates a label in a repository
func (c *Client) CreateLabel(ctx context.Context, owner, name string, label Label) (*Label, error) {
	request := &github.Label{
		Name:  github.String(label.Name),
		Color: github.String(strings.TrimPrefix(label.Color, "#")),
	}
	if label.Description != "" {
		request.Description = github.String(label.Description)
	}

	var created *github.Label

	err := c.call(ctx, fmt.Sprintf("label %s in %s/%s", label.Name, owner, name), func() (*github.Response, error) {
		var resp *github.Response
		var err error
		created, resp, err = c.client.Issues.CreateLabel(ctx, owner, name, request)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	converted := convertGitHubLabel(created)
	return &converted, nil
}

// ListMilestones lists all open and closed milestones of a repository
func (c *Client) ListMilestones(ctx context.Context, owner, name string) ([]Milestone, error) {
	opts := &github.MilestoneListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allMilestones []Milestone
	for {
		var milestones []*github.Milestone
		var resp *github.Response
		err := c.call(ctx, fmt.Sprintf("milestones for %s/%s", owner, name), func() (*github.Response, error) {
			var err error
			milestones, resp, err = c.client.Issues.ListMilestones(ctx, owner, name, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, milestone := range milestones {
			allMilestones = append(allMilestones, convertGitHubMilestone(milestone))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allMilestones, nil
}

// CreateMilestone creates a milestone and returns it with its assigned number
func (c *Client) CreateMilestone(ctx context.Context, owner, name string, milestone Milestone) (*Milestone, error) {
	request := &github.Milestone{
		Title: github.String(milestone.Title),
	}
	if milestone.Description != "" {
		request.Description = github.String(milestone.Description)
	}

	var created *github.Milestone

	err := c.call(ctx, fmt.Sprintf("milestone %s in %s/%s", milestone.Title, owner, name), func() (*github.Response, error) {
		var resp *github.Response
		var err error
		created, resp, err = c.client.Issues.CreateMilestone(ctx, owner, name, request)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	converted := convertGitHubMilestone(created)
	return &converted, nil
}

// ListIssues lists all open and closed issues of a repository. Pull requests,
// which the issues endpoint also returns, are skipped.
func (c *Client) ListIssues(ctx context.Context, owner, name string) ([]Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allIssues []Issue
	for {
		var issues []*github.Issue
		var resp *github.Response
		err := c.call(ctx, fmt.Sprintf("issues for %s/%s", owner, name), func() (*github.Response, error) {
			var err error
			issues, resp, err = c.client.Issues.ListByRepo(ctx, owner, name, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			allIssues = append(allIssues, convertGitHubIssue(issue))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allIssues, nil
}

// CreateIssue creates an issue and returns it with its assigned number
func (c *Client) CreateIssue(ctx context.Context, owner, name string, issue IssueRequest) (*Issue, error) {
	labels := append([]string{}, issue.Labels...)
	request := &github.IssueRequest{
		Title:  github.String(issue.Title),
		Body:   github.String(issue.Body),
		Labels: &labels,
	}
	if issue.Milestone > 0 {
		request.Milestone = github.Int(issue.Milestone)
	}

	var created *github.Issue

	err := c.call(ctx, fmt.Sprintf("issue %s in %s/%s", issue.Title, owner, name), func() (*github.Response, error) {
		var resp *github.Response
		var err error
		created, resp, err = c.client.Issues.Create(ctx, owner, name, request)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	converted := convertGitHubIssue(created)
	return &converted, nil
}

// convertGitHubRepository converts a GitHub API repository to our internal type
func convertGitHubRepository(repo *github.Repository) Repository {
	return Repository{
		ID:       repo.GetID(),
		Owner:    repo.GetOwner().GetLogin(),
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
		Private:  repo.GetPrivate(),
	}
}

func convertGitHubLabel(label *github.Label) Label {
	return Label{
		Name:        label.GetName(),
		Color:       label.GetColor(),
		Description: label.GetDescription(),
	}
}

func convertGitHubMilestone(milestone *github.Milestone) Milestone {
	return Milestone{
		Number:      milestone.GetNumber(),
		Title:       milestone.GetTitle(),
		Description: milestone.GetDescription(),
	}
}

func convertGitHubIssue(issue *github.Issue) Issue {
	converted := Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
	}
	if issue.Milestone != nil {
		converted.Milestone = issue.Milestone.GetTitle()
	}
	for _, label := range issue.Labels {
		converted.Labels = append(converted.Labels, label.GetName())
	}
	return converted
}
