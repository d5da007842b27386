package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted session against a fresh database.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Location is the database to open. Empty means in-memory.
	Location string `yaml:"location,omitempty"`

	// InitSQL is passed to store.WithInitSQL.
	InitSQL string `yaml:"init_sql,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`
}

// Step is a single operation. Exactly one of the operation fields is set.
type Step struct {
	Exec       string `yaml:"exec,omitempty"`
	Run        string `yaml:"run,omitempty"`
	Query      string `yaml:"query,omitempty"`
	First      string `yaml:"first,omitempty"`
	Tx         []Step `yaml:"tx,omitempty"`
	Journal    bool   `yaml:"journal,omitempty"`
	ClearCache bool   `yaml:"clear_cache,omitempty"`
	Close      bool   `yaml:"close,omitempty"`

	// Args are interpolated into Run/Query/First at each "{}" marker.
	Args []any `yaml:"args,omitempty"`

	// Expect validates the outcome. Nil means "must succeed".
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a step.
type Expect struct {
	Rows    *int    `yaml:"rows,omitempty"`
	Changes *int64  `yaml:"changes,omitempty"`
	Error   string  `yaml:"error,omitempty"`
	Journal string  `yaml:"journal,omitempty"`
	Values  [][]any `yaml:"values,omitempty"`
}

// Operation names, also used as trace op values.
const (
	OpExec       = "exec"
	OpRun        = "run"
	OpQuery      = "query"
	OpFirst      = "first"
	OpTx         = "tx"
	OpJournal    = "journal"
	OpClearCache = "clear_cache"
	OpClose      = "close"
	OpCommit     = "commit"
	OpRollback   = "rollback"
)

// Op returns the operation this step performs, or "" if none or several are set.
func (s Step) Op() string {
	var ops []string
	if s.Exec != "" {
		ops = append(ops, OpExec)
	}
	if s.Run != "" {
		ops = append(ops, OpRun)
	}
	if s.Query != "" {
		ops = append(ops, OpQuery)
	}
	if s.First != "" {
		ops = append(ops, OpFirst)
	}
	if len(s.Tx) > 0 {
		ops = append(ops, OpTx)
	}
	if s.Journal {
		ops = append(ops, OpJournal)
	}
	if s.ClearCache {
		ops = append(ops, OpClearCache)
	}
	if s.Close {
		ops = append(ops, OpClose)
	}
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("list scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	return validateSteps(s.Steps, "steps")
}

func validateSteps(steps []Step, path string) error {
	for i, step := range steps {
		where := fmt.Sprintf("%s[%d]", path, i)
		op := step.Op()
		if op == "" {
			return fmt.Errorf("%s: exactly one of exec, run, query, first, tx, journal, clear_cache, close is required", where)
		}
		if op == OpTx {
			if err := validateSteps(step.Tx, where+".tx"); err != nil {
				return err
			}
		}
		if step.Expect != nil && step.Expect.Error != "" && !validErrorKind(step.Expect.Error) {
			return fmt.Errorf("%s: unknown error kind %q", where, step.Expect.Error)
		}
	}
	return nil
}
