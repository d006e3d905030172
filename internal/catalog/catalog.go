package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog is the loaded control reference set, keyed for profile lookups.
type Catalog struct {
	controls []Control
	byID     map[string]Control
}

type catalogFile struct {
	Controls []Control `yaml:"controls"`
}

// Load reads the catalog from path, or the embedded default when path is
// empty.
func Load(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML, validating every control and
// rejecting duplicates.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Controls) == 0 {
		return nil, fmt.Errorf("catalog contains no controls")
	}

	byID := make(map[string]Control, len(file.Controls))
	for _, c := range file.Controls {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate control id %s", c.ID)
		}
		byID[c.ID] = c
	}
	return &Catalog{controls: file.Controls, byID: byID}, nil
}

// ForProfile returns the controls required at the given profile tier. A
// control with MinProfile 1 is required by every tier.
func (c *Catalog) ForProfile(p Profile) []Control {
	var out []Control
	for _, ctrl := range c.controls {
		if ctrl.MinProfile <= p {
			out = append(out, ctrl)
		}
	}
	return out
}

// Get looks up one control by ID.
func (c *Catalog) Get(id string) (Control, bool) {
	ctrl, ok := c.byID[id]
	return ctrl, ok
}

// Len returns the total number of catalogued controls.
func (c *Catalog) Len() int {
	return len(c.controls)
}
