package model

import "math"

// ContainerEstimate is a quick lower bound on how many containers a cargo list needs.
type ContainerEstimate struct {
	TotalVolume       float64 `json:"total_volume"`
	TotalWeight       float64 `json:"total_weight"`
	ContainerVolume   float64 `json:"container_volume"`
	ByVolumeExact     float64 `json:"by_volume_exact"`
	ByVolume          int     `json:"by_volume"`           // containers needed at the fill factor
	ByWeight          int     `json:"by_weight"`           // containers needed by gross weight
	Recommended       int     `json:"recommended"`         // the larger of the two
	FillFactorPercent float64 `json:"fill_factor_percent"` // achievable volume fill assumed
	LimitedByWeight   bool    `json:"limited_by_weight"`
	InvalidPieceCount int     `json:"invalid_piece_count"`
	// OversizePieceCount counts pieces that fit the container in none of
	// their orientations. They are left out of both bounds.
	OversizePieceCount int `json:"oversize_piece_count"`
}

// EstimateContainers computes how many containers of one type the pieces need.
// Volume packing is never perfect, so the volume bound assumes only
// fillFactorPercent of each container can be used. A fill factor outside
// (0, 100] is treated as 100.
func EstimateContainers(pieces []CargoPiece, container ContainerSpec, fillFactorPercent float64) ContainerEstimate {
	if fillFactorPercent <= 0 || fillFactorPercent > 100 {
		fillFactorPercent = 100
	}

	est := ContainerEstimate{
		ContainerVolume:   container.Volume(),
		FillFactorPercent: fillFactorPercent,
	}
	validContainer := container.Validate() == nil
	for _, p := range pieces {
		if p.Validate() != nil {
			est.InvalidPieceCount++
			continue
		}
		if validContainer && !fitsContainer(p, container) {
			est.OversizePieceCount++
			continue
		}
		est.TotalVolume += p.Volume()
		est.TotalWeight += p.Weight
	}

	if !validContainer || est.TotalVolume == 0 {
		return est
	}

	usable := est.ContainerVolume * fillFactorPercent / 100
	est.ByVolumeExact = est.TotalVolume / usable
	est.ByVolume = int(math.Ceil(est.ByVolumeExact))
	est.ByWeight = int(math.Ceil(est.TotalWeight / container.MaxGrossWeight))

	est.Recommended = est.ByVolume
	if est.ByWeight > est.Recommended {
		est.Recommended = est.ByWeight
		est.LimitedByWeight = true
	}
	return est
}

func fitsContainer(p CargoPiece, c ContainerSpec) bool {
	for _, o := range p.Orientations {
		d := o.Apply(p.Dimensions())
		if d.Length <= c.Length && d.Width <= c.Width && d.Height <= c.Height {
			return true
		}
	}
	return false
}
