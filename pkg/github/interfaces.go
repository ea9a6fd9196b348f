package github

import "context"

// APIClient defines the interface for GitHub API operations
type APIClient interface {
	// Repository operations
	ListRepositories(ctx context.Context) ([]Repository, error)

	// Label operations
	ListLabels(ctx context.Context, owner, name string) ([]Label, error)
	GetLabel(ctx context.Context, owner, name, label string) (*Label, error)
	CreateLabel(ctx context.Context, owner, name string, label Label) (*Label, error)

	// Milestone operations
	ListMilestones(ctx context.Context, owner, name string) ([]Milestone, error)
	CreateMilestone(ctx context.Context, owner, name string, milestone Milestone) (*Milestone, error)

	// Issue operations
	ListIssues(ctx context.Context, owner, name string) ([]Issue, error)
	CreateIssue(ctx context.Context, owner, name string, issue IssueRequest) (*Issue, error)
}

// Reconciler defines the interface for state reconciliation operations
type Reconciler interface {
	Plan(ctx context.Context, repositoryName string, config *RepositoryConfiguration) (*ReconciliationPlan, error)
	Configure(ctx context.Context, repositoryName string, config *RepositoryConfiguration) (*ReconciliationPlan, error)
	Validate(config *RepositoryConfiguration) error
}

// ChangeType represents the decision taken for a single entity
type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeExists ChangeType = "exists"
)

// EntityKind names the kind of entity a change applies to
type EntityKind string

const (
	KindLabel     EntityKind = "label"
	KindMilestone EntityKind = "milestone"
	KindIssue     EntityKind = "issue"
)

// Change represents the create-or-skip decision for one declared entity.
// Number is the milestone or issue number when one is known.
type Change struct {
	Kind   EntityKind `json:"kind"`
	Type   ChangeType `json:"type"`
	Key    string     `json:"key"`
	Number int        `json:"number,omitempty"`
}

// ReconciliationPlan lists the decisions for a repository in processing order
type ReconciliationPlan struct {
	Repository *Repository `json:"repository,omitempty"`
	Labels     []Change    `json:"labels,omitempty"`
	Milestones []Change    `json:"milestones,omitempty"`
	Issues     []Change    `json:"issues,omitempty"`
}

// Changes returns all decisions in processing order
func (p *ReconciliationPlan) Changes() []Change {
	changes := make([]Change, 0, len(p.Labels)+len(p.Milestones)+len(p.Issues))
	changes = append(changes, p.Labels...)
	changes = append(changes, p.Milestones...)
	return append(changes, p.Issues...)
}

// CountByType returns how many decisions of the given type the plan holds
func (p *ReconciliationPlan) CountByType(changeType ChangeType) int {
	count := 0
	for _, change := range p.Changes() {
		if change.Type == changeType {
			count++
		}
	}
	return count
}
