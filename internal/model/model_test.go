package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrientationValid(t *testing.T) {
	for _, o := range AllOrientations() {
		assert.True(t, o.Valid(), "orientation %v", o)
	}
	assert.False(t, Orientation{0, 0, 1}.Valid())
	assert.False(t, Orientation{0, 1, 3}.Valid())
	assert.False(t, Orientation{-1, 1, 2}.Valid())
}

func TestOrientationApply(t *testing.T) {
	d := Dimensions{Length: 4, Width: 2, Height: 1}

	assert.Equal(t, d, OrientationAsGiven.Apply(d))
	assert.Equal(t, Dimensions{Length: 2, Width: 4, Height: 1}, OrientationRotated.Apply(d))
	assert.Equal(t, Dimensions{Length: 1, Width: 2, Height: 4}, OrientationOnEnd.Apply(d))
	assert.Equal(t, "WLH", OrientationRotated.String())
}

func TestNewCargoPiece(t *testing.T) {
	p := NewCargoPiece("Pallet", 48, 40, 50, 1200)

	assert.Len(t, p.ID, 8)
	assert.True(t, p.Stackable)
	assert.Equal(t, UprightOrientations(), p.Orientations)
	assert.InDelta(t, 48*40*50, p.Volume(), 1e-9)
	require.NoError(t, p.Validate())
}

func TestCargoPieceValidate(t *testing.T) {
	base := NewCargoPiece("A", 1, 1, 1, 1)

	tests := []struct {
		name   string
		mutate func(p *CargoPiece)
	}{
		{"zero length", func(p *CargoPiece) { p.Length = 0 }},
		{"negative width", func(p *CargoPiece) { p.Width = -1 }},
		{"nan height", func(p *CargoPiece) { p.Height = math.NaN() }},
		{"zero weight", func(p *CargoPiece) { p.Weight = 0 }},
		{"infinite weight", func(p *CargoPiece) { p.Weight = math.Inf(1) }},
		{"no orientations", func(p *CargoPiece) { p.Orientations = nil }},
		{"bad orientation", func(p *CargoPiece) { p.Orientations = []Orientation{{1, 1, 2}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			p.Orientations = append([]Orientation(nil), base.Orientations...)
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPiece))
		})
	}
}

func TestContainerValidate(t *testing.T) {
	c := NewContainerSpec("Box", 10, 5, 5, 1000)
	require.NoError(t, c.Validate())

	bad := c
	bad.Height = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidContainer)

	bad = c
	bad.MaxGrossWeight = -5
	assert.ErrorIs(t, bad.Validate(), ErrInvalidContainer)

	bad = c
	bad.AxleGroups = []AxleGroup{{Label: "A", Position: 2, Capacity: 0}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidContainer)

	bad = c
	bad.AxleGroups = []AxleGroup{{Label: "A", Position: math.NaN(), Capacity: 10}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidContainer)

	// Axles ahead of the load space are allowed.
	ok := c
	ok.AxleGroups = []AxleGroup{{Label: "Steer", Position: -3, Capacity: 10}}
	assert.NoError(t, ok.Validate())
}

func TestContainerTotals(t *testing.T) {
	c := NewContainerSpec("Box", 10, 4, 2, 1000)
	c.AxleGroups = []AxleGroup{{Capacity: 300}, {Capacity: 450}}

	assert.Equal(t, 80.0, c.Volume())
	assert.Equal(t, 750.0, c.TotalAxleCapacity())
	assert.Equal(t, "Box", c.DisplayName())
	c.Name = ""
	assert.Equal(t, c.ID, c.DisplayName())
}

func TestPlacementBox(t *testing.T) {
	p := Placement{
		Position:   Point3D{X: 1, Y: 2, Z: 3},
		Dimensions: Dimensions{Length: 4, Width: 2, Height: 2},
	}
	assert.Equal(t, Point3D{X: 5, Y: 4, Z: 5}, p.Box().Max())
	assert.Equal(t, Point3D{X: 3, Y: 3, Z: 4}, p.Center())
}

func TestOptimizationResultHelpers(t *testing.T) {
	r := OptimizationResult{
		Placed: []Placement{
			{Dimensions: Dimensions{Length: 2, Width: 2, Height: 2}},
			{Dimensions: Dimensions{Length: 1, Width: 1, Height: 1}},
		},
		Rejections: []Rejection{
			{PieceID: "a", Reason: RejectWeight},
			{PieceID: "b", Reason: RejectWeight},
			{PieceID: "c", Reason: RejectNoSpace},
		},
		AxleLoads: []AxleLoad{{LoadPercentage: 40}, {LoadPercentage: 95}},
	}

	assert.Equal(t, 9.0, r.PlacedVolume())
	assert.Equal(t, map[RejectReason]int{RejectWeight: 2, RejectNoSpace: 1}, r.RejectionCounts())
	assert.Equal(t, 95.0, r.MaxAxlePercentage())
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	require.NotEmpty(t, catalog)

	ids := map[string]bool{}
	for _, c := range catalog {
		assert.NoError(t, c.Validate(), c.ID)
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
		assert.NotEmpty(t, c.AxleGroups, c.ID)
	}

	van, ok := FindContainer(catalog, "dry-van-53")
	require.True(t, ok)
	assert.Equal(t, 636.0, van.Length)

	byName, ok := FindContainer(catalog, "53' dry van")
	require.True(t, ok)
	assert.Equal(t, van.ID, byName.ID)

	_, ok = FindContainer(catalog, "spaceship")
	assert.False(t, ok)
}

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 100.0, th.OverloadPercent)
	assert.Equal(t, 80.0, th.NearLimitPercent)
	assert.Equal(t, 90.0, th.WeightWarningPercent)
	assert.Equal(t, 70.0, th.StabilityFloor)
	assert.Zero(t, th.LateralStabilityFloor)
}

func TestEstimateContainers(t *testing.T) {
	container := NewContainerSpec("Box", 10, 10, 10, 1000)
	pieces := []CargoPiece{
		NewCargoPiece("A", 10, 10, 5, 100),
		NewCargoPiece("B", 10, 10, 5, 100),
		NewCargoPiece("C", 10, 10, 5, 100),
	}

	est := EstimateContainers(pieces, container, 100)
	assert.Equal(t, 1500.0, est.TotalVolume)
	assert.InDelta(t, 1.5, est.ByVolumeExact, 1e-9)
	assert.Equal(t, 2, est.ByVolume)
	assert.Equal(t, 1, est.ByWeight)
	assert.Equal(t, 2, est.Recommended)
	assert.False(t, est.LimitedByWeight)
}

func TestEstimateContainers_WeightBound(t *testing.T) {
	container := NewContainerSpec("Box", 10, 10, 10, 1000)
	pieces := []CargoPiece{
		NewCargoPiece("Steel", 1, 1, 1, 900),
		NewCargoPiece("Steel", 1, 1, 1, 900),
		NewCargoPiece("Steel", 1, 1, 1, 900),
	}

	est := EstimateContainers(pieces, container, 80)
	assert.Equal(t, 1, est.ByVolume)
	assert.Equal(t, 3, est.ByWeight)
	assert.Equal(t, 3, est.Recommended)
	assert.True(t, est.LimitedByWeight)
}

func TestEstimateContainers_FillFactorAndInvalid(t *testing.T) {
	container := NewContainerSpec("Box", 10, 10, 10, 1000)
	bad := NewCargoPiece("Bad", 0, 1, 1, 1)
	pieces := []CargoPiece{NewCargoPiece("A", 10, 10, 9, 10), bad}

	est := EstimateContainers(pieces, container, 80)
	assert.Equal(t, 1, est.InvalidPieceCount)
	assert.Equal(t, 2, est.ByVolume, "900 of 800 usable needs two containers")

	est = EstimateContainers(pieces, container, 0)
	assert.Equal(t, 100.0, est.FillFactorPercent)
	assert.Equal(t, 1, est.ByVolume)
}

func TestEstimateContainers_OversizeExcluded(t *testing.T) {
	container := NewContainerSpec("Box", 20, 20, 10, 1000)
	tall := NewCargoPiece("Tall", 5, 5, 12, 300)
	lying := tall
	lying.Orientations = AllOrientations()
	pieces := []CargoPiece{
		NewCargoPiece("A", 10, 10, 10, 100),
		tall,
		lying,
		NewCargoPiece("Bad", 0, 1, 1, 1),
	}

	est := EstimateContainers(pieces, container, 100)
	assert.Equal(t, 1, est.OversizePieceCount, "upright only cannot stand in a 10 high box")
	assert.Equal(t, 1, est.InvalidPieceCount)
	assert.Equal(t, 1300.0, est.TotalVolume)
	assert.Equal(t, 400.0, est.TotalWeight)
	assert.Equal(t, 1, est.Recommended)

	est = EstimateContainers([]CargoPiece{tall}, container, 100)
	assert.Zero(t, est.TotalVolume)
	assert.Zero(t, est.Recommended)
}

func TestParseRotation(t *testing.T) {
	tests := []struct {
		in    string
		want  []Orientation
		known bool
	}{
		{"", UprightOrientations(), true},
		{"Yes", UprightOrientations(), true},
		{" no ", []Orientation{OrientationAsGiven}, true},
		{"fixed", []Orientation{OrientationAsGiven}, true},
		{"ANY", AllOrientations(), true},
		{"sideways", UprightOrientations(), false},
	}
	for _, tt := range tests {
		got, ok := ParseRotation(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.known, ok, "input %q", tt.in)
	}
}
