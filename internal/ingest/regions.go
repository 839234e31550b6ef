package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RegionMapping is one entry of the region reference list: the canonical
// region name as it appears in the visitation CSVs, and the ID it maps to.
type RegionMapping struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description *string `yaml:"description,omitempty"`
}

// RegionConfig is the immutable region reference table. It is loaded from a
// YAML file and passed into the loaders explicitly, so the name-to-ID mapping
// is configuration rather than a constant buried in code.
type RegionConfig struct {
	Regions []RegionMapping `yaml:"regions"`

	byName map[string]string
}

// LoadRegionConfig reads and validates the region reference file.
func LoadRegionConfig(path string) (*RegionConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region config: %w", err)
	}

	var cfg RegionConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse region config: %w", err)
	}
	if len(cfg.Regions) == 0 {
		return nil, fmt.Errorf("region config %s has no regions", path)
	}

	cfg.byName = make(map[string]string, len(cfg.Regions))
	seenID := make(map[string]bool, len(cfg.Regions))
	for i, r := range cfg.Regions {
		if r.ID == "" || r.Name == "" {
			return nil, fmt.Errorf("region config entry %d: id and name are required", i+1)
		}
		if seenID[r.ID] {
			return nil, fmt.Errorf("region config: duplicate id %q", r.ID)
		}
		seenID[r.ID] = true

		key := CleanRegionName(r.Name)
		if _, dup := cfg.byName[key]; dup {
			return nil, fmt.Errorf("region config: duplicate name %q", r.Name)
		}
		cfg.byName[key] = r.ID
	}

	return &cfg, nil
}

// IDForName resolves a raw region string from a CSV to a region ID.
func (c *RegionConfig) IDForName(raw string) (string, bool) {
	id, ok := c.byName[CleanRegionName(raw)]
	return id, ok
}

var regionTitle = cases.Title(language.AmericanEnglish)

// CleanRegionName normalizes a region string from the CSV: collapse runs of
// whitespace and canonicalize the casing, so "pacific  west " and
// "Pacific West" resolve to the same entry.
func CleanRegionName(raw string) string {
	return regionTitle.String(strings.Join(strings.Fields(raw), " "))
}
