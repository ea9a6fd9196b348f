package github

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var labelColorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// RepositoryConfiguration is the desired state of a repository's labels,
// milestones and issues. Sequences are processed in declaration order.
type RepositoryConfiguration struct {
	Labels     []Label       `yaml:"labels,omitempty"`
	Milestones []Milestone   `yaml:"milestones,omitempty"`
	Issues     []IssueConfig `yaml:"issues,omitempty"`
}

// IssueConfig declares an issue. MilestoneName refers to a milestone title.
type IssueConfig struct {
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description,omitempty"`
	Labels        []string `yaml:"labels,omitempty"`
	MilestoneName string   `yaml:"milestoneName"`
}

// Validate validates the structure of the configuration. Cross references are
// not checked here: a milestone may exist only in the live repository.
func (c *RepositoryConfiguration) Validate() error {
	var validationErrors ValidationErrors

	for i, label := range c.Labels {
		field := fmt.Sprintf("labels[%d]", i)
		if strings.TrimSpace(label.Name) == "" {
			validationErrors.Add(field+".name", "", "label name is required")
		}
		if label.Color == "" {
			validationErrors.Add(field+".color", "", "label color is required")
		} else if !labelColorPattern.MatchString(label.Color) {
			validationErrors.Add(field+".color", label.Color, "label color must be a 6-digit hex value such as d73a4a")
		}
	}

	for i, milestone := range c.Milestones {
		if strings.TrimSpace(milestone.Title) == "" {
			validationErrors.Add(fmt.Sprintf("milestones[%d].title", i), "", "milestone title is required")
		}
	}

	for i, issue := range c.Issues {
		if strings.TrimSpace(issue.Title) == "" {
			validationErrors.Add(fmt.Sprintf("issues[%d].title", i), "", "issue title is required")
		}
	}

	if validationErrors.HasErrors() {
		return &GitHubError{
			Type:    ErrorTypeValidation,
			Message: validationErrors.Error(),
			Cause:   validationErrors,
		}
	}

	return nil
}

// Warnings reports findings that do not block reconciliation: duplicate keys
// and references to milestones or labels not declared in the file.
func (c *RepositoryConfiguration) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	labels := make(map[string]bool)
	for i, label := range c.Labels {
		key := strings.ToLower(label.Name)
		if labels[key] {
			warnings = append(warnings, ValidationWarning{
				Field:   fmt.Sprintf("labels[%d].name", i),
				Message: fmt.Sprintf("label '%s' is declared more than once", label.Name),
			})
		}
		labels[key] = true
	}

	milestones := make(map[string]bool)
	for i, milestone := range c.Milestones {
		key := strings.ToLower(milestone.Title)
		if milestones[key] {
			warnings = append(warnings, ValidationWarning{
				Field:   fmt.Sprintf("milestones[%d].title", i),
				Message: fmt.Sprintf("milestone '%s' is declared more than once", milestone.Title),
			})
		}
		milestones[key] = true
	}

	issues := make(map[string]bool)
	for i, issue := range c.Issues {
		field := fmt.Sprintf("issues[%d]", i)
		key := strings.ToLower(issue.Title)
		if issues[key] {
			warnings = append(warnings, ValidationWarning{
				Field:   field + ".title",
				Message: fmt.Sprintf("issue '%s' is declared more than once", issue.Title),
			})
		}
		issues[key] = true

		if !milestones[strings.ToLower(issue.MilestoneName)] {
			warnings = append(warnings, ValidationWarning{
				Field:   field + ".milestoneName",
				Message: fmt.Sprintf("milestone '%s' is not declared in this file and must already exist in the repository", issue.MilestoneName),
			})
		}

		for _, name := range issue.Labels {
			if !labels[strings.ToLower(name)] {
				warnings = append(warnings, ValidationWarning{
					Field:   field + ".labels",
					Message: fmt.Sprintf("label '%s' is not declared in this file", name),
				})
			}
		}
	}

	return warnings
}

// LoadRepositoryConfiguration parses and validates a YAML configuration
func LoadRepositoryConfiguration(data []byte) (*RepositoryConfiguration, error) {
	var config RepositoryConfiguration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// LoadRepositoryConfigurationFromFile loads a configuration from a file
func LoadRepositoryConfigurationFromFile(filename string) (*RepositoryConfiguration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadRepositoryConfiguration(data)
}
