package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dimu/internal/config"
	"github.com/roach88/dimu/internal/event"
	"github.com/roach88/dimu/internal/pipeline"
	"github.com/roach88/dimu/internal/source"
)

// Scenario defines one end-to-end run and the expectations on its
// merged aggregate.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is an inline configuration. Absent fields keep their defaults.
	Config yaml.Node `yaml:"config,omitempty"`

	// ConfigFile is a .yaml or .cue configuration. Exclusive with Config.
	ConfigFile string `yaml:"config_file,omitempty"`

	// Workers overrides the configured worker count when positive.
	Workers int `yaml:"workers,omitempty"`

	// Merge is "fold" (default) or "tree".
	Merge string `yaml:"merge,omitempty"`

	// Events are processed in order. Exclusive with EventsFile.
	Events []event.Event `yaml:"events,omitempty"`

	// EventsFile is a JSON Lines event file.
	EventsFile string `yaml:"events_file,omitempty"`

	// Assertions validate the merged aggregate.
	Assertions []Assertion `yaml:"assertions"`

	// RunID is the id the aggregate is stored under. Default: "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// Assertion validates one aspect of the merged aggregate.
type Assertion struct {
	// Type is one of counter, weight, paths.
	Type string `yaml:"type"`

	// Path addresses the object (counter, weight).
	Path string `yaml:"path,omitempty"`

	// Name is the object name. Defaults to nevents for counter and
	// DimuSparse for weight.
	Name string `yaml:"name,omitempty"`

	// Value is the expected counter value.
	Value *int64 `yaml:"value,omitempty"`

	// X is a sample whose bin is checked. Empty means the whole histogram.
	X []float64 `yaml:"x,omitempty"`

	// Weight is the expected sum of weights.
	Weight *float64 `yaml:"weight,omitempty"`

	// Entries is the expected number of fills.
	Entries *int64 `yaml:"entries,omitempty"`

	// Paths is the exact set of object paths (paths).
	Paths []string `yaml:"paths,omitempty"`
}

// Assertion type constants.
const (
	AssertCounter = "counter"
	AssertWeight  = "weight"
	AssertPaths   = "paths"
)

// LoadScenario reads and parses a scenario YAML file. Relative file
// references are resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML. Unknown fields are rejected.
// baseDir resolves relative config_file and events_file paths.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.ConfigFile = resolve(baseDir, scenario.ConfigFile)
	scenario.EventsFile = resolve(baseDir, scenario.EventsFile)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// validateScenario checks that all required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.ConfigFile != "" && !s.Config.IsZero() {
		return fmt.Errorf("config and config_file are exclusive")
	}
	if s.EventsFile != "" && len(s.Events) > 0 {
		return fmt.Errorf("events and events_file are exclusive")
	}
	if s.EventsFile == "" && len(s.Events) == 0 {
		return fmt.Errorf("events or events_file is required")
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", s.Workers)
	}
	if _, err := pipeline.ParseMergeStrategy(s.Merge); err != nil {
		return err
	}
	for _, p := range []string{s.ConfigFile, s.EventsFile} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", p)
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCounter:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for counter", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for counter", index)
		}
	case AssertWeight:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for weight", index)
		}
		if a.Weight == nil && a.Entries == nil {
			return fmt.Errorf("assertions[%d]: weight or entries is required for weight", index)
		}
	case AssertPaths:
		if a.Paths == nil {
			return fmt.Errorf("assertions[%d]: paths list is required for paths", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// LoadConfig returns the scenario configuration: the config file, the
// inline config, or the defaults, in that order.
func (s *Scenario) LoadConfig() (config.Config, error) {
	if s.ConfigFile != "" {
		return config.Load(s.ConfigFile)
	}
	if s.Config.IsZero() {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	data, err := yaml.Marshal(&s.Config)
	if err != nil {
		return config.Config{}, fmt.Errorf("re-encode inline config: %w", err)
	}
	return config.ParseYAML(data)
}

// LoadEvents returns the inline events or the decoded events file.
// Malformed lines in the file are errors.
func (s *Scenario) LoadEvents() ([]*event.Event, error) {
	if s.EventsFile == "" {
		out := make([]*event.Event, len(s.Events))
		for i := range s.Events {
			out[i] = &s.Events[i]
		}
		return out, nil
	}

	f, err := os.Open(s.EventsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()
	return source.NewReader(f, source.Strict()).ReadAll()
}
