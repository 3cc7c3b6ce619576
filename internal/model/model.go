package model

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidContainer is returned when a container cannot be planned against.
	ErrInvalidContainer = errors.New("invalid container")
	// ErrInvalidPiece marks a cargo piece that can never be placed.
	ErrInvalidPiece = errors.New("invalid cargo piece")
)

// Orientation maps the piece's (length, width, height) axes onto the placed
// (x, y, z) extents. {0,1,2} keeps the piece as given.
type Orientation [3]int

var (
	OrientationAsGiven    = Orientation{0, 1, 2}
	OrientationRotated    = Orientation{1, 0, 2} // turned 90 degrees on the floor
	OrientationOnSide     = Orientation{0, 2, 1}
	OrientationOnSideTurn = Orientation{2, 0, 1}
	OrientationOnEnd      = Orientation{2, 1, 0}
	OrientationOnEndTurn  = Orientation{1, 2, 0}
)

// UprightOrientations are the two orientations that keep the height axis vertical.
func UprightOrientations() []Orientation {
	return []Orientation{OrientationAsGiven, OrientationRotated}
}

// AllOrientations lists all six axis permutations, upright ones first.
func AllOrientations() []Orientation {
	return []Orientation{
		OrientationAsGiven, OrientationRotated,
		OrientationOnSide, OrientationOnSideTurn,
		OrientationOnEnd, OrientationOnEndTurn,
	}
}

// ParseRotation maps a manifest rotation flag to allowed orientations: "no"
// keeps the piece as given, "yes" (or empty) allows turning on the floor and
// "any" allows every axis permutation. Unknown values fall back to upright
// turns and report false.
func ParseRotation(s string) ([]Orientation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yes", "y", "true", "t", "1", "x", "upright":
		return UprightOrientations(), true
	case "no", "n", "false", "f", "0", "-", "fixed":
		return []Orientation{OrientationAsGiven}, true
	case "any", "all", "free", "3d":
		return AllOrientations(), true
	default:
		return UprightOrientations(), false
	}
}

// Valid reports whether o is a permutation of the three axes.
func (o Orientation) Valid() bool {
	var seen [3]bool
	for _, a := range o {
		if a < 0 || a > 2 || seen[a] {
			return false
		}
		seen[a] = true
	}
	return true
}

// Apply returns the placed extents of d under this orientation.
func (o Orientation) Apply(d Dimensions) Dimensions {
	axes := [3]float64{d.Length, d.Width, d.Height}
	return Dimensions{Length: axes[o[0]], Width: axes[o[1]], Height: axes[o[2]]}
}

func (o Orientation) String() string {
	names := [3]byte{'L', 'W', 'H'}
	if !o.Valid() {
		return "invalid"
	}
	return string([]byte{names[o[0]], names[o[1]], names[o[2]]})
}

// Dimensions are the extents of a box along x (length), y (width) and z (height).
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (d Dimensions) Volume() float64 {
	return d.Length * d.Width * d.Height
}

// Point3D is a position inside the container. X runs from the front to the
// rear, Y across the width and Z up from the floor.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Box is an axis-aligned cuboid anchored at its minimum corner.
type Box struct {
	Min  Point3D    `json:"min"`
	Size Dimensions `json:"size"`
}

func (b Box) Max() Point3D {
	return Point3D{X: b.Min.X + b.Size.Length, Y: b.Min.Y + b.Size.Width, Z: b.Min.Z + b.Size.Height}
}

func (b Box) Center() Point3D {
	return Point3D{
		X: b.Min.X + b.Size.Length/2,
		Y: b.Min.Y + b.Size.Width/2,
		Z: b.Min.Z + b.Size.Height/2,
	}
}

// CargoPiece is a single rectangular item to be loaded.
type CargoPiece struct {
	ID           string        `json:"id"`
	Label        string        `json:"label,omitempty"`
	Length       float64       `json:"length"`
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Weight       float64       `json:"weight"`
	Stackable    bool          `json:"stackable"`
	Orientations []Orientation `json:"orientations"`
}

// NewCargoPiece creates an upright, stackable piece that may be turned on the floor.
func NewCargoPiece(label string, length, width, height, weight float64) CargoPiece {
	return CargoPiece{
		ID:           uuid.New().String()[:8],
		Label:        label,
		Length:       length,
		Width:        width,
		Height:       height,
		Weight:       weight,
		Stackable:    true,
		Orientations: UprightOrientations(),
	}
}

func (p CargoPiece) Dimensions() Dimensions {
	return Dimensions{Length: p.Length, Width: p.Width, Height: p.Height}
}

func (p CargoPiece) Volume() float64 {
	return p.Length * p.Width * p.Height
}

// DisplayName returns the label, falling back to the ID.
func (p CargoPiece) DisplayName() string {
	if p.Label != "" {
		return p.Label
	}
	return p.ID
}

// Validate checks that the piece has a positive finite size and weight and at
// least one well-formed orientation.
func (p CargoPiece) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPiece)
	}
	for _, v := range []float64{p.Length, p.Width, p.Height} {
		if !positiveFinite(v) {
			return fmt.Errorf("%w %q: dimensions must be positive", ErrInvalidPiece, p.ID)
		}
	}
	if !positiveFinite(p.Weight) {
		return fmt.Errorf("%w %q: weight must be positive", ErrInvalidPiece, p.ID)
	}
	if len(p.Orientations) == 0 {
		return fmt.Errorf("%w %q: no allowed orientations", ErrInvalidPiece, p.ID)
	}
	for _, o := range p.Orientations {
		if !o.Valid() {
			return fmt.Errorf("%w %q: orientation %v is not an axis permutation", ErrInvalidPiece, p.ID, [3]int(o))
		}
	}
	return nil
}

// AxleGroup is a single axle (or tandem) supporting the container.
type AxleGroup struct {
	Label    string  `json:"label" yaml:"label"`
	Position float64 `json:"position" yaml:"position"` // offset from the container front
	Capacity float64 `json:"capacity" yaml:"capacity"`
}

// ContainerSpec describes the load space of a trailer, box or intermodal container.
type ContainerSpec struct {
	ID             string      `json:"id" yaml:"id"`
	Name           string      `json:"name" yaml:"name"`
	Length         float64     `json:"length" yaml:"length"`
	Width          float64     `json:"width" yaml:"width"`
	Height         float64     `json:"height" yaml:"height"`
	MaxGrossWeight float64     `json:"max_gross_weight" yaml:"max_gross_weight"`
	AxleGroups     []AxleGroup `json:"axle_groups" yaml:"axle_groups"`
}

func (c ContainerSpec) Dimensions() Dimensions {
	return Dimensions{Length: c.Length, Width: c.Width, Height: c.Height}
}

func (c ContainerSpec) Volume() float64 {
	return c.Length * c.Width * c.Height
}

// TotalAxleCapacity sums the rated capacity of every axle group.
func (c ContainerSpec) TotalAxleCapacity() float64 {
	var total float64
	for _, a := range c.AxleGroups {
		total += a.Capacity
	}
	return total
}

// DisplayName returns the name, falling back to the ID.
func (c ContainerSpec) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Validate rejects containers that cannot hold anything: non-positive
// dimensions or weight limit, or axle groups without a usable capacity.
func (c ContainerSpec) Validate() error {
	if !positiveFinite(c.Length) || !positiveFinite(c.Width) || !positiveFinite(c.Height) {
		return fmt.Errorf("%w %q: dimensions must be positive", ErrInvalidContainer, c.DisplayName())
	}
	if !positiveFinite(c.MaxGrossWeight) {
		return fmt.Errorf("%w %q: max gross weight must be positive", ErrInvalidContainer, c.DisplayName())
	}
	for i, a := range c.AxleGroups {
		if !positiveFinite(a.Capacity) {
			return fmt.Errorf("%w %q: axle group %d capacity must be positive", ErrInvalidContainer, c.DisplayName(), i)
		}
		if math.IsNaN(a.Position) || math.IsInf(a.Position, 0) {
			return fmt.Errorf("%w %q: axle group %d position is not a number", ErrInvalidContainer, c.DisplayName(), i)
		}
	}
	return nil
}

// Placement records where a piece was put and how it was turned.
type Placement struct {
	PieceID     string      `json:"piece_id"`
	Label       string      `json:"label,omitempty"`
	Position    Point3D     `json:"position"`
	Dimensions  Dimensions  `json:"dimensions"` // extents after orientation
	Orientation Orientation `json:"orientation"`
	Weight      float64     `json:"weight"`
	Stackable   bool        `json:"stackable"`
}

func (p Placement) Box() Box {
	return Box{Min: p.Position, Size: p.Dimensions}
}

func (p Placement) Center() Point3D {
	return p.Box().Center()
}

// RejectReason explains why a piece ended up unplaced.
type RejectReason string

const (
	RejectInvalid   RejectReason = "invalid"   // failed piece validation
	RejectDuplicate RejectReason = "duplicate" // id already seen in this call
	RejectOversize  RejectReason = "oversize"  // fits no orientation of the empty container
	RejectWeight    RejectReason = "weight"    // would exceed the gross weight limit
	RejectNoSpace   RejectReason = "no_space"  // no supported free position left
)

// Rejection pairs an unplaced piece with its reason.
type Rejection struct {
	PieceID string       `json:"piece_id"`
	Reason  RejectReason `json:"reason"`
}

// AxleLoad is the share of cargo weight carried by one axle group.
type AxleLoad struct {
	Index          int     `json:"index"`
	Label          string  `json:"label"`
	Position       float64 `json:"position"`
	Load           float64 `json:"load"`
	Capacity       float64 `json:"capacity"`
	LoadPercentage float64 `json:"load_percentage"`
}

// OptimizationResult is the complete outcome of planning one load.
type OptimizationResult struct {
	Container                ContainerSpec `json:"container"`
	Placed                   []Placement   `json:"placed"`
	Unplaced                 []string      `json:"unplaced"`
	Rejections               []Rejection   `json:"rejections"`
	UtilizationPercent       float64       `json:"utilization_percent"`
	TotalWeight              float64       `json:"total_weight"`
	WeightUtilizationPercent float64       `json:"weight_utilization_percent"`
	CenterOfGravity          Point3D       `json:"center_of_gravity"`
	StabilityScore           float64       `json:"stability_score"`
	LateralStabilityScore    float64       `json:"lateral_stability_score"`
	AxleLoads                []AxleLoad    `json:"axle_loads"`
	LoadMeters               float64       `json:"load_meters"` // furthest x extent of placed cargo
}

// PlacedVolume sums the volume of all placed boxes.
func (r OptimizationResult) PlacedVolume() float64 {
	var v float64
	for _, p := range r.Placed {
		v += p.Dimensions.Volume()
	}
	return v
}

// RejectionCounts tallies unplaced pieces by reason.
func (r OptimizationResult) RejectionCounts() map[RejectReason]int {
	counts := make(map[RejectReason]int)
	for _, rej := range r.Rejections {
		counts[rej.Reason]++
	}
	return counts
}

// MaxAxlePercentage returns the highest axle load percentage, or 0 without axles.
func (r OptimizationResult) MaxAxlePercentage() float64 {
	var max float64
	for _, a := range r.AxleLoads {
		if a.LoadPercentage > max {
			max = a.LoadPercentage
		}
	}
	return max
}

// Algorithm selects the placement ordering strategy.
type Algorithm string

const (
	AlgorithmGreedy  Algorithm = "greedy"  // volume-descending single pass (deterministic, fast)
	AlgorithmGenetic Algorithm = "genetic" // seeded search over piece orderings (slower)
)

// PackSettings holds the placement core configuration.
type PackSettings struct {
	Algorithm       Algorithm `json:"algorithm"`
	SupportFraction float64   `json:"support_fraction"` // share of footprint that must rest on stackable tops
	Epsilon         float64   `json:"epsilon"`          // tolerance for containment, overlap and support
}

func DefaultPackSettings() PackSettings {
	return PackSettings{
		Algorithm:       AlgorithmGreedy,
		SupportFraction: 1.0,
		Epsilon:         1e-6,
	}
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
