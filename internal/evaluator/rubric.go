package evaluator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultThreshold is the pass mark applied to every evaluation.
const DefaultThreshold = 0.8

// DefaultSteps grade generated Spring Boot JPA code.
var DefaultSteps = []string{
	"Check whether 'actual output' has all the files or code snippets (Controller, service, entity, repository) from 'expected output'",
	"The entity class import statements should use 'jakarta.persistence' instead of 'javax.persistence'",
	"Check if the correct dependencies are added in the 'pom.xml' file",
}

type RubricSource string

const (
	RubricSourceDefault RubricSource = "default"
	RubricSourceCustom  RubricSource = "custom"
)

// Rubric is an ordered list of evaluation steps plus a pass threshold.
type Rubric struct {
	Steps     []string
	Threshold float64
	Source    RubricSource
}

// Defaults holds the rubric used when the caller sends no criteria, and the
// threshold used for every rubric.
type Defaults struct {
	Steps     []string `yaml:"steps"`
	Threshold float64  `yaml:"threshold"`
}

// NewDefaults returns the built-in steps and the 0.8 threshold.
func NewDefaults() Defaults {
	return Defaults{
		Steps:     append([]string(nil), DefaultSteps...),
		Threshold: DefaultThreshold,
	}
}

// BuildRubric uses criteria verbatim when non-empty and falls back to the
// default steps otherwise. The threshold always comes from d.
func BuildRubric(criteria []string, d Defaults) Rubric {
	if len(criteria) > 0 {
		return Rubric{
			Steps:     append([]string(nil), criteria...),
			Threshold: d.Threshold,
			Source:    RubricSourceCustom,
		}
	}
	return Rubric{
		Steps:     append([]string(nil), d.Steps...),
		Threshold: d.Threshold,
		Source:    RubricSourceDefault,
	}
}

// LoadDefaults reads default steps and threshold from a YAML file:
//
//	threshold: 0.8
//	steps:
//	  - "..."
//
// Omitted keys keep the values in base.
func LoadDefaults(path string, base Defaults) (Defaults, error) {
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("read rubric file: %w", err)
	}

	var file Defaults
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Defaults{}, fmt.Errorf("parse rubric file: %w", err)
	}

	if len(file.Steps) > 0 {
		base.Steps = file.Steps
	}
	if file.Threshold != 0 {
		base.Threshold = file.Threshold
	}

	if base.Threshold < 0 || base.Threshold > 1 {
		return Defaults{}, fmt.Errorf("rubric threshold %.2f outside [0,1]", base.Threshold)
	}
	if len(base.Steps) == 0 {
		return Defaults{}, fmt.Errorf("rubric has no default steps")
	}

	return base, nil
}
