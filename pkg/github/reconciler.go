package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
)

// checklistMarker is an unchecked markdown task list item
const checklistMarker = "- [ ]"

// reconciler implements the Reconciler interface
type reconciler struct {
	client APIClient
}

// NewReconciler creates a new reconciler instance
func NewReconciler(client APIClient) Reconciler {
	return &reconciler{
		client: client,
	}
}

// Configure creates every declared label, milestone and issue missing from
// the repository, in that order. Existing entities are never modified. The
// first error aborts the run; the returned plan holds the decisions taken
// up to that point.
func (r *reconciler) Configure(ctx context.Context, repositoryName string, config *RepositoryConfiguration) (*ReconciliationPlan, error) {
	if config == nil {
		return nil, errEmptyConfiguration()
	}

	repo, err := FindRepository(ctx, r.client, repositoryName)
	if err != nil {
		return nil, err
	}

	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("repository", repo.FullName))
	log := clog.FromContext(ctx)
	log.Infof("Starting with default configuration for repository %s", repositoryName)

	plan := &ReconciliationPlan{Repository: repo}

	for _, label := range config.Labels {
		change, err := r.configureLabel(ctx, repo, label)
		if err != nil {
			return plan, err
		}
		plan.Labels = append(plan.Labels, change)
	}

	for _, milestone := range config.Milestones {
		change, err := r.configureMilestone(ctx, repo, milestone)
		if err != nil {
			return plan, err
		}
		plan.Milestones = append(plan.Milestones, change)
	}

	for _, issue := range config.Issues {
		change, err := r.configureIssue(ctx, repo, issue)
		if err != nil {
			return plan, err
		}
		plan.Issues = append(plan.Issues, change)
	}

	log.Infof("Finished configuring repository %s", repositoryName)
	return plan, nil
}

// Plan computes the decisions Configure would take without creating anything.
// Milestones planned for creation satisfy issue references.
func (r *reconciler) Plan(ctx context.Context, repositoryName string, config *RepositoryConfiguration) (*ReconciliationPlan, error) {
	if config == nil {
		return nil, errEmptyConfiguration()
	}

	repo, err := FindRepository(ctx, r.client, repositoryName)
	if err != nil {
		return nil, err
	}

	plan := &ReconciliationPlan{Repository: repo}

	liveLabels, err := r.client.ListLabels(ctx, repo.Owner, repo.Name)
	if err != nil {
		return plan, fmt.Errorf("failed to list labels: %w", err)
	}
	labels := make(map[string]bool, len(liveLabels))
	for _, label := range liveLabels {
		labels[strings.ToLower(label.Name)] = true
	}
	for _, label := range config.Labels {
		key := strings.ToLower(label.Name)
		if labels[key] {
			plan.Labels = append(plan.Labels, Change{Kind: KindLabel, Type: ChangeTypeExists, Key: label.Name})
			continue
		}
		labels[key] = true
		plan.Labels = append(plan.Labels, Change{Kind: KindLabel, Type: ChangeTypeCreate, Key: label.Name})
	}

	liveMilestones, err := r.client.ListMilestones(ctx, repo.Owner, repo.Name)
	if err != nil {
		return plan, fmt.Errorf("failed to list milestones: %w", err)
	}
	milestones := make(map[string]int, len(liveMilestones))
	for _, milestone := range liveMilestones {
		key := strings.ToLower(milestone.Title)
		if _, seen := milestones[key]; !seen {
			milestones[key] = milestone.Number
		}
	}
	for _, milestone := range config.Milestones {
		key := strings.ToLower(milestone.Title)
		if number, ok := milestones[key]; ok {
			plan.Milestones = append(plan.Milestones, Change{Kind: KindMilestone, Type: ChangeTypeExists, Key: milestone.Title, Number: number})
			continue
		}
		milestones[key] = 0
		plan.Milestones = append(plan.Milestones, Change{Kind: KindMilestone, Type: ChangeTypeCreate, Key: milestone.Title})
	}

	liveIssues, err := r.client.ListIssues(ctx, repo.Owner, repo.Name)
	if err != nil {
		return plan, fmt.Errorf("failed to list issues: %w", err)
	}
	issues := make(map[string]int, len(liveIssues))
	for _, issue := range liveIssues {
		key := strings.ToLower(issue.Title)
		if _, seen := issues[key]; !seen {
			issues[key] = issue.Number
		}
	}
	for _, issue := range config.Issues {
		key := strings.ToLower(issue.Title)
		if number, ok := issues[key]; ok {
			plan.Issues = append(plan.Issues, Change{Kind: KindIssue, Type: ChangeTypeExists, Key: issue.Title, Number: number})
			continue
		}
		if _, ok := milestones[strings.ToLower(issue.MilestoneName)]; !ok {
			return plan, milestoneNotFound(issue)
		}
		issues[key] = 0
		plan.Issues = append(plan.Issues, Change{Kind: KindIssue, Type: ChangeTypeCreate, Key: issue.Title})
	}

	return plan, nil
}

// Validate validates the configuration structure
func (r *reconciler) Validate(config *RepositoryConfiguration) error {
	if config == nil {
		return errEmptyConfiguration()
	}
	return config.Validate()
}

func errEmptyConfiguration() error {
	return NewGitHubError(ErrorTypeValidation, "configuration is empty", nil)
}

// FindRepository resolves a full repository name, ignoring case, against the
// repositories the caller can access.
func FindRepository(ctx context.Context, client APIClient, repositoryName string) (*Repository, error) {
	repos, err := client.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	for _, repo := range repos {
		if !strings.EqualFold(repo.FullName, repositoryName) {
			continue
		}
		found := repo
		if found.Owner == "" || found.Name == "" {
			found.Owner, found.Name, _ = strings.Cut(found.FullName, "/")
		}
		return &found, nil
	}

	return nil, fmt.Errorf("repository '%s' was not found, make sure you are a collaborator on the repository: %w",
		repositoryName, ErrRepositoryNotFound)
}

func (r *reconciler) configureLabel(ctx context.Context, repo *Repository, label Label) (Change, error) {
	log := clog.FromContext(ctx).With("kind", string(KindLabel), "key", label.Name)
	change := Change{Kind: KindLabel, Key: label.Name}

	_, err := r.client.GetLabel(ctx, repo.Owner, repo.Name, label.Name)
	switch {
	case err == nil:
		log.Infof("Label '%s' already exists", label.Name)
		change.Type = ChangeTypeExists
		return change, nil
	case !IsNotFound(err):
		return change, fmt.Errorf("failed to look up label '%s': %w", label.Name, err)
	}

	created, err := r.client.CreateLabel(ctx, repo.Owner, repo.Name, label)
	if err != nil {
		return change, fmt.Errorf("failed to create label '%s': %w", label.Name, err)
	}

	log.Infof("Label '%s' created", created.Name)
	change.Type = ChangeTypeCreate
	return change, nil
}

func (r *reconciler) configureMilestone(ctx context.Context, repo *Repository, milestone Milestone) (Change, error) {
	log := clog.FromContext(ctx).With("kind", string(KindMilestone), "key", milestone.Title)
	change := Change{Kind: KindMilestone, Key: milestone.Title}

	existing, err := r.findMilestone(ctx, repo, milestone.Title)
	if err != nil {
		return change, err
	}
	if existing != nil {
		log.With("number", existing.Number).Infof("Milestone '%s' already exists (Number: %d)", existing.Title, existing.Number)
		change.Type = ChangeTypeExists
		change.Number = existing.Number
		return change, nil
	}

	created, err := r.client.CreateMilestone(ctx, repo.Owner, repo.Name, milestone)
	if err != nil {
		return change, fmt.Errorf("failed to create milestone '%s': %w", milestone.Title, err)
	}

	log.With("number", created.Number).Infof("Milestone '%s' created (Number: %d)", created.Title, created.Number)
	change.Type = ChangeTypeCreate
	change.Number = created.Number
	return change, nil
}

func (r *reconciler) configureIssue(ctx context.Context, repo *Repository, issue IssueConfig) (Change, error) {
	log := clog.FromContext(ctx).With("kind", string(KindIssue), "key", issue.Title)
	change := Change{Kind: KindIssue, Key: issue.Title}

	existing, err := r.findIssue(ctx, repo, issue.Title)
	if err != nil {
		return change, err
	}
	if existing != nil {
		log.With("number", existing.Number).Infof("Issue '%s' already exists (#%d)", existing.Title, existing.Number)
		change.Type = ChangeTypeExists
		change.Number = existing.Number
		return change, nil
	}

	milestone, err := r.findMilestone(ctx, repo, issue.MilestoneName)
	if err != nil {
		return change, err
	}
	if milestone == nil {
		return change, milestoneNotFound(issue)
	}

	request := IssueRequest{
		Title:     issue.Title,
		Body:      NormalizeChecklist(issue.Description),
		Milestone: milestone.Number,
		Labels:    issue.Labels,
	}

	created, err := r.client.CreateIssue(ctx, repo.Owner, repo.Name, request)
	if err != nil {
		return change, fmt.Errorf("failed to create issue '%s': %w", issue.Title, err)
	}

	log.With("number", created.Number, "milestone", milestone.Number).
		Infof("Issue '%s' created (#%d)", created.Title, created.Number)
	change.Type = ChangeTypeCreate
	change.Number = created.Number
	return change, nil
}

// findMilestone returns the first live milestone whose title matches,
// ignoring case, or nil when there is none.
func (r *reconciler) findMilestone(ctx context.Context, repo *Repository, title string) (*Milestone, error) {
	milestones, err := r.client.ListMilestones(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	for i := range milestones {
		if strings.EqualFold(milestones[i].Title, title) {
			return &milestones[i], nil
		}
	}
	return nil, nil
}

// findIssue returns the first live issue whose title matches, ignoring case,
// or nil when there is none.
func (r *reconciler) findIssue(ctx context.Context, repo *Repository, title string) (*Issue, error) {
	issues, err := r.client.ListIssues(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}

	for i := range issues {
		if strings.EqualFold(issues[i].Title, title) {
			return &issues[i], nil
		}
	}
	return nil, nil
}

func milestoneNotFound(issue IssueConfig) error {
	return fmt.Errorf("milestone '%s' referenced by issue '%s' was not found: %w",
		issue.MilestoneName, issue.Title, ErrMilestoneNotFound)
}

// NormalizeChecklist inserts a line break before every unchecked task list
// item so checklists written on a single line render as lists.
func NormalizeChecklist(description string) string {
	return strings.ReplaceAll(description, checklistMarker, "\r\n"+checklistMarker)
}
