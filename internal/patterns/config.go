package patterns

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides carries configuration-supplied matcher expressions, keyed by
// field kind name (e.g. "BOARD_SERIAL"). Families absent from the map keep
// their built-in matchers.
type Overrides struct {
	Patterns map[string][]string `yaml:"patterns"`
}

// LoadOverrides reads a YAML overrides file. An empty path yields zero
// overrides.
func LoadOverrides(path string) (Overrides, error) {
	var ov Overrides
	if path == "" {
		return ov, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ov, fmt.Errorf("patterns: read overrides: %w", err)
	}
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return ov, fmt.Errorf("patterns: parse overrides: %w", err)
	}
	return ov, nil
}
