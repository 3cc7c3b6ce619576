package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/cargoplan/internal/model"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of a container catalog.
type catalogFile struct {
	Containers []model.ContainerSpec `yaml:"containers"`
}

// DefaultCatalogPath returns the default file path for a user catalog.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "containers.yaml")
}

// SaveCatalog writes containers to a YAML file, creating parent directories.
func SaveCatalog(path string, containers []model.ContainerSpec) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	data, err := yaml.Marshal(catalogFile{Containers: containers})
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// LoadCatalog reads containers from a YAML file. An empty path or a missing
// file yields the built-in catalog. Every entry must validate and ids must
// be unique.
func LoadCatalog(path string) ([]model.ContainerSpec, error) {
	if path == "" {
		return model.DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Containers) == 0 {
		return nil, fmt.Errorf("catalog %s lists no containers", path)
	}

	seen := make(map[string]bool, len(file.Containers))
	for i, c := range file.Containers {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i+1, c.DisplayName(), err)
		}
		if c.ID == "" {
			continue
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i+1, c.ID)
		}
		seen[c.ID] = true
	}
	return file.Containers, nil
}

// ExportContainer writes a single container spec to a YAML file for sharing.
func ExportContainer(path string, container model.ContainerSpec) error {
	data, err := yaml.Marshal(container)
	if err != nil {
		return fmt.Errorf("failed to marshal container: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write container: %w", err)
	}
	return nil
}

// ImportContainer reads a single container spec from a YAML file.
func ImportContainer(path string) (model.ContainerSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ContainerSpec{}, fmt.Errorf("failed to read container: %w", err)
	}
	var c model.ContainerSpec
	if err := yaml.Unmarshal(data, &c); err != nil {
		return model.ContainerSpec{}, fmt.Errorf("failed to parse container: %w", err)
	}
	if err := c.Validate(); err != nil {
		return model.ContainerSpec{}, err
	}
	return c, nil
}
