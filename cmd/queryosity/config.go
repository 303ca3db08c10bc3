package main

import (
	"os"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// Job is the declarative shape of one `queryosity run` invocation: a
// CSV dataset, an optional cut and weight column, and the category
// column to bin the weighted yield by (spec.md §8.1's "Yield by
// category" scenario, run from a file instead of hand-written Go).
type Job struct {
	Dataset string `json:"dataset"`

	Category string `json:"category"`
	Weight   string `json:"weight,omitempty"`
	Cut      string `json:"cut,omitempty"`

	Concurrency int   `json:"concurrency,omitempty"`
	Head        int64 `json:"head,omitempty"`

	Color bool `json:"color,omitempty"`
}

// LoadJob reads and decodes a Job from a YAML (or JSON, since YAML is
// a superset) file.
func LoadJob(path string) (*Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	var j Job
	if err := yaml.Unmarshal(raw, &j); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	if j.Category == "" {
		return nil, errors.New("config: category is required")
	}
	return &j, nil
}
