package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BartekS5/renewables-etl/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrNoEndpoints is returned when an endpoints file lists nothing.
var ErrNoEndpoints = errors.New("at least one endpoint is required")

type endpointsFile struct {
	Endpoints []models.Endpoint `yaml:"endpoints"`
}

// DefaultEndpoints returns the solar and wind datasets, in processing order.
func DefaultEndpoints() []models.Endpoint {
	return []models.Endpoint{
		{Name: "solar", Path: "solargen.json", ContentType: models.ContentTypeJSON},
		{Name: "wind", Path: "windgen.csv", ContentType: models.ContentTypeCSV},
	}
}

// LoadEndpoints reads the endpoint list from a YAML file. An empty path
// yields DefaultEndpoints. File order is processing order.
func LoadEndpoints(filePath string) ([]models.Endpoint, error) {
	if filePath == "" {
		return DefaultEndpoints(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoints file '%s': %w", filePath, err)
	}

	var f endpointsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse endpoints file '%s': %w", filePath, err)
	}
	if len(f.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	seen := make(map[string]bool, len(f.Endpoints))
	endpoints := make([]models.Endpoint, 0, len(f.Endpoints))
	for i, raw := range f.Endpoints {
		ep, err := models.NewEndpoint(raw.Name, raw.Path, raw.ContentType)
		if err != nil {
			return nil, fmt.Errorf("endpoint[%d]: %w", i, err)
		}
		if seen[ep.Name] {
			return nil, fmt.Errorf("endpoint[%d]: %w: duplicate name %q", i, models.ErrValidation, ep.Name)
		}
		seen[ep.Name] = true
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

// FilterEndpoints keeps the endpoints whose names are listed, preserving the
// original order. No names means all endpoints.
func FilterEndpoints(all []models.Endpoint, names []string) ([]models.Endpoint, error) {
	if len(names) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var out []models.Endpoint
	for _, ep := range all {
		if wanted[ep.Name] {
			out = append(out, ep)
			delete(wanted, ep.Name)
		}
	}
	for n := range wanted {
		return nil, fmt.Errorf("unknown endpoint %q", n)
	}
	return out, nil
}
