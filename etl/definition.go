package etl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is a per-board pipeline file: which board to pull and where the
// rows land. The registry's deploy command generates these.
type Definition struct {
	Name      string `yaml:"name"`
	BoardID   string `yaml:"board_id"`
	Table     string `yaml:"table"`
	KeyColumn string `yaml:"key_column"`

	// Columns maps API column ids to destination column names. Unmapped
	// columns use the board column title.
	Columns map[string]string `yaml:"columns,omitempty"`
}

// LoadDefinition reads and validates a pipeline definition file.
func LoadDefinition(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline file %s: %w", path, err)
	}

	if def.BoardID == "" {
		return nil, fmt.Errorf("pipeline file %s has no board_id", path)
	}
	if def.Table == "" {
		return nil, fmt.Errorf("pipeline file %s has no table", path)
	}
	if def.KeyColumn == "" {
		def.KeyColumn = "item_id"
	}

	return &def, nil
}
