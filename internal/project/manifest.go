package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/tidwall/jsonc"
)

// ErrNoContainer is returned when a manifest names no usable container.
var ErrNoContainer = errors.New("manifest has no container")

// Manifest is a shipment to plan: the cargo plus, optionally, the container
// to load it into and engine overrides. Files may carry // and /* */
// comments and trailing commas.
type Manifest struct {
	Name string `json:"name,omitempty"`
	// Container is a catalog id or name; ContainerSpec takes precedence.
	Container     string               `json:"container,omitempty"`
	ContainerSpec *model.ContainerSpec `json:"container_spec,omitempty"`
	Algorithm     model.Algorithm      `json:"algorithm,omitempty"`
	Items         []ManifestItem       `json:"items"`
}

// ManifestItem is one manifest line. Quantity above one expands to pieces
// named <id>-1 .. <id>-n.
type ManifestItem struct {
	ID        string  `json:"id"`
	Label     string  `json:"label,omitempty"`
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Weight    float64 `json:"weight"`
	Quantity  int     `json:"quantity,omitempty"`
	Stackable *bool   `json:"stackable,omitempty"` // default true
	// Rotatable is "no", "yes" (default) or "any"; see model.ParseRotation.
	Rotatable    string              `json:"rotatable,omitempty"`
	Orientations []model.Orientation `json:"orientations,omitempty"` // explicit list wins over Rotatable
}

// LoadManifest reads a JSON-with-comments manifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}

// SaveManifest writes m as indented JSON, creating parent directories.
func SaveManifest(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if m.Items == nil {
		m.Items = []ManifestItem{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Pieces expands the items into cargo pieces. Items with an unknown rotation
// flag fall back to upright turns and are listed in warnings. Pieces are not
// validated here; the engine rejects malformed ones with a reason.
func (m Manifest) Pieces() (pieces []model.CargoPiece, warnings []string) {
	for i, item := range m.Items {
		id := item.ID
		if id == "" {
			id = item.Label
		}
		if id == "" {
			id = fmt.Sprintf("item-%d", i+1)
		}

		stackable := true
		if item.Stackable != nil {
			stackable = *item.Stackable
		}

		orientations := item.Orientations
		if len(orientations) == 0 {
			var ok bool
			orientations, ok = model.ParseRotation(item.Rotatable)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("item %s: unknown rotatable value %q, allowing upright turns", id, item.Rotatable))
			}
		}

		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		for n := 1; n <= qty; n++ {
			pieceID := id
			if qty > 1 {
				pieceID = fmt.Sprintf("%s-%d", id, n)
			}
			pieces = append(pieces, model.CargoPiece{
				ID:           pieceID,
				Label:        item.Label,
				Length:       item.Length,
				Width:        item.Width,
				Height:       item.Height,
				Weight:       item.Weight,
				Stackable:    stackable,
				Orientations: append([]model.Orientation(nil), orientations...),
			})
		}
	}
	return pieces, warnings
}

// ResolveContainer returns the inline container spec, else the catalog entry
// the manifest names, else the entry named by fallback.
func (m Manifest) ResolveContainer(catalog []model.ContainerSpec, fallback string) (model.ContainerSpec, error) {
	if m.ContainerSpec != nil {
		return *m.ContainerSpec, nil
	}
	key := m.Container
	if key == "" {
		key = fallback
	}
	if key == "" {
		return model.ContainerSpec{}, ErrNoContainer
	}
	c, ok := model.FindContainer(catalog, key)
	if !ok {
		return model.ContainerSpec{}, fmt.Errorf("%w: %q is not in the catalog", ErrNoContainer, key)
	}
	return c, nil
}

// ManifestFromPieces builds a manifest with one item per piece, for saving
// imported cargo.
func ManifestFromPieces(name, container string, pieces []model.CargoPiece) Manifest {
	m := Manifest{Name: name, Container: container, Items: make([]ManifestItem, 0, len(pieces))}
	for _, p := range pieces {
		stackable := p.Stackable
		m.Items = append(m.Items, ManifestItem{
			ID:           p.ID,
			Label:        p.Label,
			Length:       p.Length,
			Width:        p.Width,
			Height:       p.Height,
			Weight:       p.Weight,
			Stackable:    &stackable,
			Orientations: p.Orientations,
		})
	}
	return m
}
