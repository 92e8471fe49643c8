// Package catalogs loads the static board catalog: the list of properties
// the bank mints once on a fresh store.
package catalogs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"landlords.game/internal/game/model"
)

type Entry struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Value       int64  `yaml:"value"`
	Rent        int64  `yaml:"rent"`
	MetadataRef string `yaml:"metadata_ref"`
}

// CategoryOf resolves the entry's category name.
func (e Entry) CategoryOf() (model.Category, error) {
	c, ok := model.ParseCategory(e.Category)
	if !ok {
		return 0, fmt.Errorf("unknown category %q for %q", e.Category, e.Name)
	}
	return c, nil
}

type Catalog struct {
	Properties []Entry `yaml:"properties"`
}

func Load(path string) (Catalog, error) {
	var c Catalog
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("properties.yaml: %w", err)
	}
	for i, e := range c.Properties {
		if e.Name == "" {
			return c, fmt.Errorf("properties.yaml: entry %d has no name", i)
		}
		if _, err := e.CategoryOf(); err != nil {
			return c, fmt.Errorf("properties.yaml: %w", err)
		}
		if e.Value < 0 || e.Rent < 0 {
			return c, fmt.Errorf("properties.yaml: %q has negative value or rent", e.Name)
		}
	}
	return c, nil
}
