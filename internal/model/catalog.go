package model

import (
	"strings"

	"github.com/google/uuid"
)

// NewContainerSpec creates a container with a generated ID and no axle groups.
func NewContainerSpec(name string, length, width, height, maxGross float64) ContainerSpec {
	return ContainerSpec{
		ID:             uuid.New().String()[:8],
		Name:           name,
		Length:         length,
		Width:          width,
		Height:         height,
		MaxGrossWeight: maxGross,
	}
}

// tandemTrailer builds a semi-trailer load space carried by the tractor drive
// tandem under the kingpin and the trailer tandem near the rear.
func tandemTrailer(id, name string, length, width, height, maxGross float64) ContainerSpec {
	return ContainerSpec{
		ID:             id,
		Name:           name,
		Length:         length,
		Width:          width,
		Height:         height,
		MaxGrossWeight: maxGross,
		AxleGroups: []AxleGroup{
			{Label: "Drive tandem", Position: 36, Capacity: 34000},
			{Label: "Trailer tandem", Position: length - 66, Capacity: 34000},
		},
	}
}

// DefaultCatalog returns the built-in container presets. Dimensions are inside
// measurements in inches, weights in pounds.
func DefaultCatalog() []ContainerSpec {
	stepDeck := ContainerSpec{
		ID:             "step-deck-48",
		Name:           "48' Step Deck",
		Length:         576,
		Width:          102,
		Height:         132,
		MaxGrossWeight: 80000,
		AxleGroups: []AxleGroup{
			{Label: "Drive tandem", Position: 36, Capacity: 34000},
			{Label: "Trailer tridem", Position: 500, Capacity: 42000},
		},
	}
	boxTruck := ContainerSpec{
		ID:             "box-truck-26",
		Name:           "26' Box Truck",
		Length:         312,
		Width:          96,
		Height:         96,
		MaxGrossWeight: 26000,
		AxleGroups: []AxleGroup{
			{Label: "Steer", Position: -40, Capacity: 10000},
			{Label: "Rear", Position: 200, Capacity: 17500},
		},
	}

	return []ContainerSpec{
		boxTruck,
		tandemTrailer("container-20", "20' Intermodal", 240, 94, 110, 67200),
		tandemTrailer("container-40", "40' Intermodal", 480, 94, 110, 67200),
		tandemTrailer("flatbed-48", "48' Flatbed", 576, 102, 108, 80000),
		stepDeck,
		tandemTrailer("reefer-53", "53' Reefer", 630, 100, 108, 80000),
		tandemTrailer("dry-van-53", "53' Dry Van", 636, 102, 110, 80000),
	}
}

// FindContainer looks a container up by ID, then by case-insensitive name.
func FindContainer(catalog []ContainerSpec, key string) (ContainerSpec, bool) {
	for _, c := range catalog {
		if c.ID == key {
			return c, true
		}
	}
	for _, c := range catalog {
		if strings.EqualFold(c.Name, key) {
			return c, true
		}
	}
	return ContainerSpec{}, false
}
