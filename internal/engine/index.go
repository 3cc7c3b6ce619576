package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/cargoplan/internal/model"
)

// occupied is a committed box and whether it can carry load.
type occupied struct {
	box       model.Box
	stackable bool
}

// SpatialIndex tracks the occupied space of one container while a load is
// being built. It is owned by the caller of the placement loop and threaded
// through it explicitly, so independent packs never share state.
type SpatialIndex struct {
	bounds model.Dimensions
	eps    float64
	boxes  []occupied
	points []model.Point3D
	weight float64
}

// NewSpatialIndex returns an empty index for the container with the single
// anchor at the front-left floor corner.
func NewSpatialIndex(container model.ContainerSpec, eps float64) *SpatialIndex {
	return &SpatialIndex{
		bounds: container.Dimensions(),
		eps:    eps,
		points: []model.Point3D{{}},
	}
}

// Len returns the number of committed boxes.
func (s *SpatialIndex) Len() int {
	return len(s.boxes)
}

// Weight returns the total weight committed so far.
func (s *SpatialIndex) Weight() float64 {
	return s.weight
}

// Anchors returns the candidate anchor points ordered by z, then y, then x.
func (s *SpatialIndex) Anchors() []model.Point3D {
	return s.points
}

// Contains reports whether b lies within the container envelope.
func (s *SpatialIndex) Contains(b model.Box) bool {
	max := b.Max()
	return b.Min.X >= -s.eps && b.Min.Y >= -s.eps && b.Min.Z >= -s.eps &&
		max.X <= s.bounds.Length+s.eps &&
		max.Y <= s.bounds.Width+s.eps &&
		max.Z <= s.bounds.Height+s.eps
}

// Overlaps reports whether b shares positive volume with any committed box.
// Touching faces do not count.
func (s *SpatialIndex) Overlaps(b model.Box) bool {
	for _, o := range s.boxes {
		if boxesOverlap(o.box, b, s.eps) {
			return true
		}
	}
	return false
}

// Support returns the area of b's footprint resting on the tops of stackable
// boxes at exactly b's base height. blocked is true when any part of the
// footprint would rest on a box that cannot carry load.
func (s *SpatialIndex) Support(b model.Box) (area float64, blocked bool) {
	for _, o := range s.boxes {
		top := o.box.Min.Z + o.box.Size.Height
		if math.Abs(top-b.Min.Z) > s.eps {
			continue
		}
		shared := footprintOverlap(o.box, b)
		if shared <= s.eps {
			continue
		}
		if !o.stackable {
			return area, true
		}
		area += shared
	}
	return area, false
}

// Supported applies the support rule: floor boxes are always supported,
// raised boxes need at least fraction of their footprint on stackable tops.
func (s *SpatialIndex) Supported(b model.Box, fraction float64) bool {
	if b.Min.Z <= s.eps {
		return true
	}
	area, blocked := s.Support(b)
	if blocked || area <= s.eps {
		return false
	}
	footprint := b.Size.Length * b.Size.Width
	return area >= fraction*footprint-s.eps
}

// Insert commits a box, drops the anchors it now covers and adds the extreme
// points it creates beyond its rear face, beside its far side and, when it can
// carry load, on its top.
func (s *SpatialIndex) Insert(b model.Box, weight float64, stackable bool) {
	s.boxes = append(s.boxes, occupied{box: b, stackable: stackable})
	s.weight += weight

	max := b.Max()
	kept := s.points[:0]
	for _, p := range s.points {
		if !s.covers(b.Min, max, p) {
			kept = append(kept, p)
		}
	}
	s.points = kept

	s.addPoint(model.Point3D{X: max.X, Y: b.Min.Y, Z: b.Min.Z})
	s.addPoint(model.Point3D{X: b.Min.X, Y: max.Y, Z: b.Min.Z})
	if stackable {
		s.addPoint(model.Point3D{X: b.Min.X, Y: b.Min.Y, Z: max.Z})
	}
	s.sortPoints()
}

// covers reports whether p lies in the half-open box [min, max).
func (s *SpatialIndex) covers(min, max, p model.Point3D) bool {
	return p.X >= min.X-s.eps && p.X < max.X-s.eps &&
		p.Y >= min.Y-s.eps && p.Y < max.Y-s.eps &&
		p.Z >= min.Z-s.eps && p.Z < max.Z-s.eps
}

func (s *SpatialIndex) addPoint(p model.Point3D) {
	// Points on or past a far wall can never anchor a box.
	if p.X >= s.bounds.Length-s.eps || p.Y >= s.bounds.Width-s.eps || p.Z >= s.bounds.Height-s.eps {
		return
	}
	for _, q := range s.points {
		if math.Abs(q.X-p.X) <= s.eps && math.Abs(q.Y-p.Y) <= s.eps && math.Abs(q.Z-p.Z) <= s.eps {
			return
		}
	}
	s.points = append(s.points, p)
}

func (s *SpatialIndex) sortPoints() {
	sort.SliceStable(s.points, func(i, j int) bool {
		a, b := s.points[i], s.points[j]
		if math.Abs(a.Z-b.Z) > s.eps {
			return a.Z < b.Z
		}
		if math.Abs(a.Y-b.Y) > s.eps {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

// boxesOverlap reports positive-volume intersection with eps tolerance.
func boxesOverlap(a, b model.Box, eps float64) bool {
	amax, bmax := a.Max(), b.Max()
	return a.Min.X < bmax.X-eps && amax.X > b.Min.X+eps &&
		a.Min.Y < bmax.Y-eps && amax.Y > b.Min.Y+eps &&
		a.Min.Z < bmax.Z-eps && amax.Z > b.Min.Z+eps
}

// footprintOverlap returns the area shared by the x/y projections of a and b.
func footprintOverlap(a, b model.Box) float64 {
	amax, bmax := a.Max(), b.Max()
	dx := math.Min(amax.X, bmax.X) - math.Max(a.Min.X, b.Min.X)
	dy := math.Min(amax.Y, bmax.Y) - math.Max(a.Min.Y, b.Min.Y)
	if dx <= 0 || dy <= 0 {
		return 0
	}
	return dx * dy
}
