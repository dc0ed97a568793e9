package config

import (
	"fmt"
	"strings"

	"docktor/internal/diagnose"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// issueCollector accumulates validation issues.
type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

// Validate checks a defaulted config for correctness.
func Validate(cfg *Config) error {
	collector := &issueCollector{}

	switch cfg.Provider {
	case "gemini", "openrouter":
	default:
		collector.add("provider", fmt.Sprintf("unsupported provider %q", cfg.Provider))
	}
	if strings.TrimSpace(cfg.Model) == "" {
		collector.add("model", "is required")
	}
	if cfg.MaxAnalyses < 1 || cfg.MaxAnalyses > diagnose.MaxAnalyses {
		collector.add("max_analyses", fmt.Sprintf("must be between 1 and %d", diagnose.MaxAnalyses))
	}
	if cfg.CommandTimeoutSeconds < 1 {
		collector.add("command_timeout_seconds", "must be positive")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		collector.add("output_dir", "is required")
	}

	return collector.result()
}
