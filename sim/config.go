package sim

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Scenario is the TOML description of one simulation run: where the
// source text comes from, the cadences, and an optional prediction to
// check against the final output log.
type Scenario struct {
	Source  SourceDetails  `toml:""`
	Run     RunDetails     `toml:",omitempty"`
	Predict PredictDetails `toml:",omitempty"`
}

type SourceDetails struct {
	File   string `toml:",omitempty"`
	Inline string `toml:",omitempty"`
}

type RunDetails struct {
	TickIntervalMs int `toml:",omitempty"`
	StepIntervalMs int `toml:",omitempty"`
	MaxSteps       int `toml:",omitempty"`
}

type PredictDetails struct {
	Order []string `toml:",omitempty"`
}

const (
	DefaultTickIntervalMs = 100
	DefaultStepIntervalMs = 500
	DefaultMaxSteps       = 10000
)

func parseScenario(f io.Reader) (*Scenario, error) {
	var out Scenario
	_, err := toml.NewDecoder(f).Decode(&out)
	if err != nil {
		return nil, err
	}
	out.applyDefaults()
	return &out, nil
}

func (s *Scenario) applyDefaults() {
	if s.Run.TickIntervalMs <= 0 {
		s.Run.TickIntervalMs = DefaultTickIntervalMs
	}
	if s.Run.StepIntervalMs <= 0 {
		s.Run.StepIntervalMs = DefaultStepIntervalMs
	}
	if s.Run.MaxSteps <= 0 {
		s.Run.MaxSteps = DefaultMaxSteps
	}
}

// LoadScenarioFromFile reads a scenario, defaulting the source file to
// the scenario's own name with a .js extension and resolving it
// relative to the scenario's directory.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	s, err := parseScenario(f)
	if err != nil {
		return nil, err
	}
	if s.Source.Inline == "" {
		if s.Source.File == "" {
			parts := strings.Split(fi.Name(), ".")
			parts = parts[:len(parts)-1]
			parts = append(parts, "js")
			s.Source.File = strings.Join(parts, ".")
		}
		filedir := filepath.Dir(path)
		s.Source.File = filepath.Clean(filepath.Join(filedir, s.Source.File))
	}
	return s, nil
}

// SourceText returns the source to simulate, preferring inline text.
func (s *Scenario) SourceText() (string, error) {
	if s.Source.Inline != "" {
		return s.Source.Inline, nil
	}
	if s.Source.File == "" {
		return "", fmt.Errorf("scenario names neither an inline source nor a file")
	}
	b, err := os.ReadFile(s.Source.File)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BuildSimulator parses the scenario's source into a fresh Simulator.
func (s *Scenario) BuildSimulator() (*Simulator, error) {
	text, err := s.SourceText()
	if err != nil {
		return nil, err
	}
	return New(text), nil
}
