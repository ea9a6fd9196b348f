// Package github provisions GitHub repository metadata for ghprovision.
// It reads a declarative YAML configuration of labels, milestones and issues
// and creates whatever is missing from a live repository.
//
// The package includes:
// - APIClient interface for the GitHub operations the reconciler needs
// - Client, the go-github backed implementation of APIClient
// - Reconciler interface for create-only reconciliation and dry-run planning
// - Configuration models, loading and validation
package github
