package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ConnectorType selects which fetch path a connector definition uses.
type ConnectorType string

const (
	// ConnectorGTFS aggregates static GTFS feed archives.
	ConnectorGTFS ConnectorType = "gtfs"
	// ConnectorJourneyAPI polls a live journey-planner API.
	ConnectorJourneyAPI ConnectorType = "journey_api"
)

// ConnectorDef is one operator entry in the connectors YAML file.
type ConnectorDef struct {
	Name          string        `yaml:"name" validate:"required"`
	Type          ConnectorType `yaml:"type" validate:"required,oneof=gtfs journey_api"`
	OperatorName  string        `yaml:"operator_name" validate:"required"`
	TransportType string        `yaml:"transport_type" validate:"required"`
	Enabled       bool          `yaml:"enabled"`

	// GTFS connectors.
	Feeds           []string `yaml:"feeds"`
	AgencyPatterns  []string `yaml:"agency_patterns"`
	MatchAllOnEmpty *bool    `yaml:"match_all_on_empty"`

	// Journey-planner API connectors.
	BaseURLs     []string `yaml:"base_urls"`
	MaxLocations int      `yaml:"max_locations"`
}

type connectorsFile struct {
	Connectors []ConnectorDef `yaml:"connectors"`
}

// LoadConnectors reads and validates the operator definitions.
func LoadConnectors(path string) ([]ConnectorDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading connectors file: %w", err)
	}

	var file connectorsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding connectors file: %w", err)
	}

	v := validator.New()
	for i := range file.Connectors {
		def := &file.Connectors[i]
		if err := v.Struct(def); err != nil {
			return nil, fmt.Errorf("connector %q: %w", def.Name, err)
		}
		switch def.Type {
		case ConnectorGTFS:
			if len(def.Feeds) == 0 {
				return nil, fmt.Errorf("connector %q: gtfs connector needs at least one feed URL", def.Name)
			}
		case ConnectorJourneyAPI:
			if len(def.BaseURLs) == 0 {
				return nil, fmt.Errorf("connector %q: journey_api connector needs at least one base URL", def.Name)
			}
			if def.MaxLocations == 0 {
				def.MaxLocations = 80
			}
		}
	}

	return file.Connectors, nil
}

// MatchAll reports whether the agency-match fallback is enabled for this
// definition. Defaults to true when unset, matching the historic behavior of
// feeds that omit descriptive agency names.
func (d *ConnectorDef) MatchAll() bool {
	if d.MatchAllOnEmpty == nil {
		return true
	}
	return *d.MatchAllOnEmpty
}
