package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const PlanVersion = "1.0"

// Plan is a compiled, validated instruction stream that can be stored and
// replayed without the original script.
type Plan struct {
	Version      string        `yaml:"version"`
	Source       string        `yaml:"source,omitempty"`
	Instructions []Instruction `yaml:"instructions"`
}

// NewPlan wraps an instruction stream read from source.
func NewPlan(source string, instrs []Instruction) *Plan {
	return &Plan{Version: PlanVersion, Source: source, Instructions: instrs}
}

// WritePlan writes a plan to a YAML file
func WritePlan(plan *Plan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadPlan reads a plan from a YAML file
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	if plan.Version != PlanVersion {
		return nil, fmt.Errorf("unsupported plan version %q", plan.Version)
	}

	return &plan, nil
}

// IsPlanPath reports whether path names a YAML plan rather than a script.
func IsPlanPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// PlanPath derives the default plan file name for a script.
func PlanPath(scriptPath string) string {
	ext := filepath.Ext(scriptPath)
	return strings.TrimSuffix(scriptPath, ext) + ".plan.yaml"
}
