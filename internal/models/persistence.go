package models

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// SavePlan writes the plan as YAML, creating parent directories as needed.
func SavePlan(path string, plan GenerationPlan) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}

	data, err := yaml.Marshal(plan)
	if err != nil {
		return errors.Wrap(err, "marshal plan")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write plan %s", path)
	}
	return nil
}

// LoadPlan reads a plan written by SavePlan.
func LoadPlan(path string) (*GenerationPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read plan %s", path)
	}

	var plan GenerationPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, errors.Wrapf(err, "parse plan %s", path)
	}
	plan.Intent = plan.Intent.Normalized()
	return &plan, nil
}
