package engine

import (
	"sort"

	"github.com/piwi3910/cargoplan/internal/model"
)

// Optimizer runs the 3D load placement algorithm.
type Optimizer struct {
	Settings model.PackSettings
	// Genetic tunes the ordering search. The zero value picks defaults sized
	// to the manifest.
	Genetic GeneticConfig
}

func New(settings model.PackSettings) *Optimizer {
	return &Optimizer{Settings: settings}
}

// Plan packs the pieces and evaluates the finished load: axle distribution,
// center of gravity and stability. It only fails when the container itself
// cannot be planned against.
func (o *Optimizer) Plan(pieces []model.CargoPiece, container model.ContainerSpec) (model.OptimizationResult, error) {
	if err := container.Validate(); err != nil {
		return model.OptimizationResult{}, err
	}

	return evaluate(o.Pack(pieces, container), container), nil
}

// PlanOrdered is Plan with the loading order fixed by the caller, as used for
// multi-stop loads where the manifest order matters. See PackOrdered.
func (o *Optimizer) PlanOrdered(pieces []model.CargoPiece, container model.ContainerSpec, order []int) (model.OptimizationResult, error) {
	if err := container.Validate(); err != nil {
		return model.OptimizationResult{}, err
	}
	return evaluate(o.PackOrdered(pieces, container, order), container), nil
}

func evaluate(result model.OptimizationResult, container model.ContainerSpec) model.OptimizationResult {
	result.AxleLoads = ComputeAxleLoads(result.Placed, container)

	cog := CenterOfGravity(result.Placed, container)
	result.CenterOfGravity = cog
	result.StabilityScore = StabilityScore(cog, container)
	result.LateralStabilityScore = LateralStabilityScore(cog, container)
	return result
}

// Pack places as many pieces as possible into the container. It never fails:
// pieces that are malformed, duplicated, too large, too heavy or out of room
// are reported in Unplaced with a matching Rejection. An invalid container
// leaves every piece unplaced.
//
// Pieces are tried by descending volume, then descending weight, then input
// order. Each piece tries its orientations in listed order and, for each, the
// anchors ordered by z, y, x; the first valid position wins.
func (o *Optimizer) Pack(pieces []model.CargoPiece, container model.ContainerSpec) model.OptimizationResult {
	valid, rejections := screenPieces(pieces)
	if container.Validate() != nil {
		for _, p := range valid {
			rejections = append(rejections, model.Rejection{PieceID: p.ID, Reason: model.RejectOversize})
		}
		return buildResult(container, nil, rejections)
	}

	var seq []gene
	if o.Settings.Algorithm == model.AlgorithmGenetic {
		seq = searchGenetic(o.settings(), o.geneticConfig(len(valid)), valid, container)
	} else {
		seq = greedySequence(valid)
	}

	placed, failed := placeSequence(o.settings(), valid, seq, container)
	return buildResult(container, placed, append(rejections, failed...))
}

// PackOrdered places the pieces in exactly the given order (indices into
// pieces) through the same placement rules as Pack. Indices that are out of
// range or repeated are ignored; pieces missing from order are left unplaced.
func (o *Optimizer) PackOrdered(pieces []model.CargoPiece, container model.ContainerSpec, order []int) model.OptimizationResult {
	if container.Validate() != nil {
		return o.Pack(pieces, container)
	}

	// Map positions in the caller's slice onto the screened slice.
	valid, rejections := screenPieces(pieces)
	screened := make(map[string]int, len(valid))
	for i, p := range valid {
		screened[p.ID] = i
	}

	used := make(map[int]bool, len(order))
	seq := make([]gene, 0, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(pieces) {
			continue
		}
		vi, ok := screened[pieces[idx].ID]
		if !ok || used[vi] {
			continue
		}
		used[vi] = true
		seq = append(seq, gene{piece: vi})
	}

	placed, failed := placeSequence(o.settings(), valid, seq, container)
	rejections = append(rejections, failed...)
	for i, p := range valid {
		if !used[i] {
			rejections = append(rejections, model.Rejection{PieceID: p.ID, Reason: model.RejectNoSpace})
		}
	}
	return buildResult(container, placed, rejections)
}

func (o *Optimizer) geneticConfig(n int) GeneticConfig {
	if o.Genetic.PopulationSize <= 0 || o.Genetic.Generations < 0 {
		return sizedConfig(n)
	}
	c := o.Genetic
	defaults := DefaultGeneticConfig()
	if c.TournamentSize <= 0 {
		c.TournamentSize = defaults.TournamentSize
	}
	if c.EliteCount < 0 {
		c.EliteCount = 0
	}
	return c
}

// settings returns the settings with out-of-range values replaced by defaults.
func (o *Optimizer) settings() model.PackSettings {
	s := o.Settings
	defaults := model.DefaultPackSettings()
	if s.SupportFraction <= 0 || s.SupportFraction > 1 {
		s.SupportFraction = defaults.SupportFraction
	}
	if s.Epsilon <= 0 {
		s.Epsilon = defaults.Epsilon
	}
	return s
}

// screenPieces drops malformed and duplicate pieces, keeping input order.
func screenPieces(pieces []model.CargoPiece) ([]model.CargoPiece, []model.Rejection) {
	valid := make([]model.CargoPiece, 0, len(pieces))
	var rejections []model.Rejection
	seen := make(map[string]bool, len(pieces))

	for _, p := range pieces {
		if p.ID != "" && seen[p.ID] {
			rejections = append(rejections, model.Rejection{PieceID: p.ID, Reason: model.RejectDuplicate})
			continue
		}
		seen[p.ID] = true
		if err := p.Validate(); err != nil {
			rejections = append(rejections, model.Rejection{PieceID: p.ID, Reason: model.RejectInvalid})
			continue
		}
		valid = append(valid, p)
	}
	return valid, rejections
}

// gene is one step of a placement sequence: which piece to place and which of
// its orientations to try first.
type gene struct {
	piece int
	lead  int
}

// greedySequence orders pieces by volume desc, weight desc, then input order.
func greedySequence(pieces []model.CargoPiece) []gene {
	indices := make([]int, len(pieces))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		a, b := pieces[indices[i]], pieces[indices[j]]
		if a.Volume() != b.Volume() {
			return a.Volume() > b.Volume()
		}
		return a.Weight > b.Weight
	})

	seq := make([]gene, len(indices))
	for i, idx := range indices {
		seq[i] = gene{piece: idx}
	}
	return seq
}

// placeSequence runs the placement loop over a fresh spatial index.
func placeSequence(settings model.PackSettings, pieces []model.CargoPiece, seq []gene, container model.ContainerSpec) ([]model.Placement, []model.Rejection) {
	index := NewSpatialIndex(container, settings.Epsilon)
	placed := make([]model.Placement, 0, len(seq))
	var rejections []model.Rejection

	for _, g := range seq {
		piece := pieces[g.piece]
		placement, reason, ok := placePiece(index, settings, piece, g.lead, container)
		if !ok {
			rejections = append(rejections, model.Rejection{PieceID: piece.ID, Reason: reason})
			continue
		}
		placed = append(placed, placement)
	}
	return placed, rejections
}

// placePiece finds the first valid (orientation, anchor) for the piece and
// commits it to the index.
func placePiece(index *SpatialIndex, settings model.PackSettings, piece model.CargoPiece, lead int, container model.ContainerSpec) (model.Placement, model.RejectReason, bool) {
	orientations := orientationOrder(piece.Orientations, lead)

	// A piece that fits no orientation of the empty container is oversize,
	// regardless of what else is loaded.
	fitsEmpty := false
	for _, o := range orientations {
		d := o.Apply(piece.Dimensions())
		if index.Contains(model.Box{Size: d}) {
			fitsEmpty = true
			break
		}
	}
	if !fitsEmpty {
		return model.Placement{}, model.RejectOversize, false
	}

	// Weight is a hard limit; epsilon only applies to geometry.
	if index.Weight()+piece.Weight > container.MaxGrossWeight {
		return model.Placement{}, model.RejectWeight, false
	}

	for _, o := range orientations {
		dims := o.Apply(piece.Dimensions())
		for _, anchor := range index.Anchors() {
			box := model.Box{Min: anchor, Size: dims}
			if !index.Contains(box) || index.Overlaps(box) || !index.Supported(box, settings.SupportFraction) {
				continue
			}
			index.Insert(box, piece.Weight, piece.Stackable)
			return model.Placement{
				PieceID:     piece.ID,
				Label:       piece.Label,
				Position:    anchor,
				Dimensions:  dims,
				Orientation: o,
				Weight:      piece.Weight,
				Stackable:   piece.Stackable,
			}, "", true
		}
	}
	return model.Placement{}, model.RejectNoSpace, false
}

// orientationOrder moves the lead orientation to the front and keeps the rest
// in listed order.
func orientationOrder(orientations []model.Orientation, lead int) []model.Orientation {
	if lead <= 0 || lead >= len(orientations) {
		return orientations
	}
	ordered := make([]model.Orientation, 0, len(orientations))
	ordered = append(ordered, orientations[lead])
	for i, o := range orientations {
		if i != lead {
			ordered = append(ordered, o)
		}
	}
	return ordered
}

// buildResult assembles a fresh result with the volume and weight summaries.
func buildResult(container model.ContainerSpec, placed []model.Placement, rejections []model.Rejection) model.OptimizationResult {
	result := model.OptimizationResult{
		Container:  container,
		Placed:     placed,
		Unplaced:   make([]string, 0, len(rejections)),
		Rejections: rejections,
	}
	if result.Placed == nil {
		result.Placed = []model.Placement{}
	}
	for _, r := range rejections {
		result.Unplaced = append(result.Unplaced, r.PieceID)
	}

	var volume float64
	for _, p := range placed {
		volume += p.Dimensions.Volume()
		result.TotalWeight += p.Weight
		if end := p.Position.X + p.Dimensions.Length; end > result.LoadMeters {
			result.LoadMeters = end
		}
	}
	if v := container.Volume(); v > 0 && container.Validate() == nil {
		result.UtilizationPercent = volume / v * 100
	}
	if container.MaxGrossWeight > 0 {
		result.WeightUtilizationPercent = result.TotalWeight / container.MaxGrossWeight * 100
	}
	return result
}
