package github

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewValidator(t *testing.T) {
	validator := NewValidator(&MockAPIClient{})
	if validator == nil {
		t.Fatal("NewValidator() returned nil")
	}
	if validator.client == nil {
		t.Error("NewValidator() client is nil")
	}
}

func TestValidator_ValidateRemote(t *testing.T) {
	tests := []struct {
		name         string
		config       *RepositoryConfiguration
		wantErr      bool
		errContains  string
		wantWarnings int
	}{
		{
			name:   "declared references",
			config: sampleConfiguration(),
		},
		{
			name: "milestone present only in repository",
			config: &RepositoryConfiguration{
				Issues: []IssueConfig{{Title: "Bugfix", MilestoneName: "BACKLOG"}},
			},
		},
		{
			name: "milestone neither declared nor live",
			config: &RepositoryConfiguration{
				Issues: []IssueConfig{{Title: "Bugfix", MilestoneName: "v9.9"}},
			},
			wantErr:     true,
			errContains: "issues[0].milestoneName",
		},
		{
			name: "unknown label is a warning",
			config: &RepositoryConfiguration{
				Issues: []IssueConfig{{Title: "Bugfix", MilestoneName: "backlog", Labels: []string{"triage", "wontfix"}}},
			},
			wantWarnings: 1,
		},
		{
			name: "structural errors stop before any API call",
			config: &RepositoryConfiguration{
				Labels: []Label{{Name: "", Color: "ffffff"}},
			},
			wantErr:     true,
			errContains: "labels[0].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeAPIClient("octo/widgets")
			client.labels = []Label{{Name: "WontFix", Color: "ffffff"}}
			client.milestones = []Milestone{{Number: 1, Title: "Backlog"}}

			warnings, err := NewValidator(client).ValidateRemote(context.Background(), "octo/widgets", tt.config)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)

				var ghErr *GitHubError
				require.True(t, errors.As(err, &ghErr))
				assert.Equal(t, ErrorTypeValidation, ghErr.Type)
				return
			}

			require.NoError(t, err)
			assert.Len(t, warnings, tt.wantWarnings)
			assert.Empty(t, client.mutations)
		})
	}
}

func TestValidator_ValidateRemote_RepositoryNotFound(t *testing.T) {
	client := &MockAPIClient{}
	client.On("ListRepositories", mock.Anything).Return([]Repository{}, nil)

	_, err := NewValidator(client).ValidateRemote(context.Background(), "octo/widgets", sampleConfiguration())
	assert.ErrorIs(t, err, ErrRepositoryNotFound)

	client.AssertExpectations(t)
}

func TestValidator_ValidateRemote_ListError(t *testing.T) {
	client := &MockAPIClient{}
	client.On("ListRepositories", mock.Anything).
		Return([]Repository{{Owner: "octo", Name: "widgets", FullName: "octo/widgets"}}, nil)
	client.On("ListMilestones", mock.Anything, "octo", "widgets").
		Return(nil, NewGitHubError(ErrorTypePermission, "forbidden", nil))

	_, err := NewValidator(client).ValidateRemote(context.Background(), "octo/widgets", sampleConfiguration())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list milestones")

	client.AssertExpectations(t)
}
