package expert

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Experts []Expert `yaml:"experts"`
}

// Seed returns the built-in roster loaded at startup.
func Seed() ([]Expert, error) {
	return parseSeed(seedYAML)
}

// LoadSeed reads a roster from a YAML file. An empty path returns the
// built-in roster.
func LoadSeed(path string) ([]Expert, error) {
	if path == "" {
		return Seed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return parseSeed(data)
}

func parseSeed(data []byte) ([]Expert, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed roster: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Experts))
	for i, e := range f.Experts {
		if e.ID == "" {
			return nil, fmt.Errorf("seed expert %d has no id", i)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("duplicate seed expert id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.Type == "" {
			f.Experts[i].Type = TypeExternal
		}
		if e.Availability == "" {
			f.Experts[i].Availability = AvailabilityUnknown
		}
	}
	return f.Experts, nil
}
