package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
)

// Validator checks a configuration against the live repository without
// modifying anything
type Validator struct {
	client APIClient
}

// NewValidator creates a new validator with GitHub API access
func NewValidator(client APIClient) *Validator {
	return &Validator{client: client}
}

// ValidateRemote performs structural validation followed by live checks:
// the repository must be accessible and every issue's milestone must be
// declared in the file or exist in the repository. Issue labels that are
// neither declared nor live are reported as warnings.
func (v *Validator) ValidateRemote(ctx context.Context, repositoryName string, config *RepositoryConfiguration) ([]ValidationWarning, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := FindRepository(ctx, v.client, repositoryName)
	if err != nil {
		return nil, err
	}
	log := clog.FromContext(ctx).With("repository", repo.FullName)

	milestones, err := v.liveMilestones(ctx, repo)
	if err != nil {
		return nil, err
	}
	for _, milestone := range config.Milestones {
		milestones[strings.ToLower(milestone.Title)] = true
	}

	labels, err := v.liveLabels(ctx, repo)
	if err != nil {
		return nil, err
	}
	for _, label := range config.Labels {
		labels[strings.ToLower(label.Name)] = true
	}

	var validationErrors ValidationErrors
	var warnings []ValidationWarning

	for i, issue := range config.Issues {
		field := fmt.Sprintf("issues[%d]", i)
		if !milestones[strings.ToLower(issue.MilestoneName)] {
			validationErrors.Add(field+".milestoneName", issue.MilestoneName,
				fmt.Sprintf("milestone is neither declared nor present in %s", repo.FullName))
		}
		for _, name := range issue.Labels {
			if !labels[strings.ToLower(name)] {
				warnings = append(warnings, ValidationWarning{
					Field:   field + ".labels",
					Message: fmt.Sprintf("label '%s' is neither declared nor present in %s", name, repo.FullName),
				})
			}
		}
	}

	log.With("errors", len(validationErrors), "warnings", len(warnings)).Debug("Validated configuration against live repository")

	if validationErrors.HasErrors() {
		return warnings, &GitHubError{
			Type:     ErrorTypeValidation,
			Message:  validationErrors.Error(),
			Cause:    validationErrors,
			Resource: repo.FullName,
		}
	}

	return warnings, nil
}

func (v *Validator) liveMilestones(ctx context.Context, repo *Repository) (map[string]bool, error) {
	milestones, err := v.client.ListMilestones(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	titles := make(map[string]bool, len(milestones))
	for _, milestone := range milestones {
		titles[strings.ToLower(milestone.Title)] = true
	}
	return titles, nil
}

func (v *Validator) liveLabels(ctx context.Context, repo *Repository) (map[string]bool, error) {
	labels, err := v.client.ListLabels(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	names := make(map[string]bool, len(labels))
	for _, label := range labels {
		names[strings.ToLower(label.Name)] = true
	}
	return names, nil
}
