// Package registry tracks which boards have been deployed and generates
// their run artifacts: a pipeline definition consumed by the run command
// and a Kestra workflow that schedules it.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const registryFile = "registry.yaml"

// Entry is one deployed board.
type Entry struct {
	BoardID      string    `yaml:"board_id"`
	Name         string    `yaml:"name"`
	Table        string    `yaml:"table"`
	KeyColumn    string    `yaml:"key_column,omitempty"`
	Schedule     string    `yaml:"schedule,omitempty"`
	PipelineFile string    `yaml:"pipeline_file"`
	WorkflowFile string    `yaml:"workflow_file"`
	DeployedAt   time.Time `yaml:"deployed_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// Registry is the set of deployed boards rooted at a directory.
type Registry struct {
	dir    string
	Boards []Entry `yaml:"boards"`
}

// Open reads the registry in dir. A missing registry file yields an empty
// registry.
func Open(dir string) (*Registry, error) {
	r := &Registry{dir: dir}

	raw, err := os.ReadFile(filepath.Join(dir, registryFile))
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	if err := yaml.Unmarshal(raw, r); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return r, nil
}

// Save writes the registry file.
func (r *Registry) Save() error {
	raw, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, registryFile), raw, 0o644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// Find returns the entry for boardID, or nil.
func (r *Registry) Find(boardID string) *Entry {
	for i := range r.Boards {
		if r.Boards[i].BoardID == boardID {
			return &r.Boards[i]
		}
	}
	return nil
}

// Key returns the filesystem-safe identifier used for generated file names
// and the Kestra flow id.
func (e *Entry) Key() string {
	key := strings.ToLower(strings.TrimSpace(e.Name))
	key = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, key)
	return strings.Trim(key, "_")
}

// Deploy registers a new board and renders its artifacts. Deploying a board
// that is already registered is an error; use Update to regenerate.
func (r *Registry) Deploy(e Entry) (*Entry, error) {
	if e.BoardID == "" || e.Name == "" || e.Table == "" {
		return nil, fmt.Errorf("deploy needs a board id, name and table")
	}
	if existing := r.Find(e.BoardID); existing != nil {
		return nil, fmt.Errorf("board %s is already deployed as %q; use update", e.BoardID, existing.Name)
	}

	if e.KeyColumn == "" {
		e.KeyColumn = "item_id"
	}
	if e.Schedule == "" {
		e.Schedule = "0 6 * * *"
	}
	e.PipelineFile = filepath.Join("pipelines", e.Key()+".yaml")
	e.WorkflowFile = filepath.Join("workflows", e.Key()+".yaml")
	now := time.Now().UTC()
	e.DeployedAt = now
	e.UpdatedAt = now

	if err := r.render(&e); err != nil {
		return nil, err
	}

	r.Boards = append(r.Boards, e)
	if err := r.Save(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Update regenerates the artifacts for an already deployed board.
func (r *Registry) Update(boardID string) (*Entry, error) {
	e := r.Find(boardID)
	if e == nil {
		return nil, fmt.Errorf("board %s is not deployed", boardID)
	}

	e.UpdatedAt = time.Now().UTC()
	if err := r.render(e); err != nil {
		return nil, err
	}
	if err := r.Save(); err != nil {
		return nil, err
	}
	return e, nil
}

// Summary aggregates the registry for the summary command.
type Summary struct {
	Boards    int
	Tables    []string
	Schedules map[string]int
}

// Summarize returns deployment counts grouped by destination table and
// schedule.
func (r *Registry) Summarize() Summary {
	s := Summary{
		Boards:    len(r.Boards),
		Schedules: make(map[string]int),
	}
	seen := make(map[string]bool)
	for _, e := range r.Boards {
		if !seen[e.Table] {
			seen[e.Table] = true
			s.Tables = append(s.Tables, e.Table)
		}
		s.Schedules[e.Schedule]++
	}
	return s
}
