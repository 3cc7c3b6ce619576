package export

import (
	"testing"
	"time"

	"github.com/piwi3910/cargoplan/internal/engine"
	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/stretchr/testify/require"
)

func testContainer() model.ContainerSpec {
	return model.ContainerSpec{
		ID:             "van",
		Name:           "Test Van",
		Length:         40,
		Width:          10,
		Height:         10,
		MaxGrossWeight: 1000,
		AxleGroups: []model.AxleGroup{
			{Label: "Front", Position: 0, Capacity: 500},
			{Label: "Rear", Position: 40, Capacity: 500},
		},
	}
}

func testCatalog() []model.ContainerSpec {
	big := testContainer()
	big.ID = "big-van"
	big.Name = "Big Van"
	big.Length = 60
	return []model.ContainerSpec{testContainer(), big}
}

// buildTestReport plans two pallets that fit and one that cannot, giving an
// unplaced exception and a front-heavy load.
func buildTestReport(t *testing.T) Report {
	t.Helper()
	pieces := []model.CargoPiece{
		{ID: "a", Label: "Pallet A", Length: 10, Width: 10, Height: 5, Weight: 200, Stackable: true, Orientations: model.UprightOrientations()},
		{ID: "b", Label: "Pallet B", Length: 10, Width: 10, Height: 5, Weight: 100, Stackable: false, Orientations: model.UprightOrientations()},
		{ID: "c", Label: "Beam", Length: 50, Width: 5, Height: 5, Weight: 50, Stackable: true, Orientations: []model.Orientation{model.OrientationAsGiven}},
	}
	result, err := engine.New(model.DefaultPackSettings()).Plan(pieces, testContainer())
	require.NoError(t, err)
	require.Len(t, result.Placed, 2)

	report := BuildReport(result, model.DefaultThresholds(), testCatalog())
	report.GeneratedAt = time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	return report
}
