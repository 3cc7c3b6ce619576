package export

import (
	"fmt"

	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"
)

// DXF layer names.
const (
	LayerContainer = "CONTAINER"
	LayerCargo     = "CARGO"
	LayerAxles     = "AXLES"
	LayerLabels    = "LABELS"
)

// ExportDXF writes a 3D wireframe of the load for CAD review: the container
// outline, one box per placed piece, a line across the floor at every axle
// group inside the container and a text label on top of each piece.
// Coordinates are the plan's own units.
func ExportDXF(path string, result model.OptimizationResult) error {
	d := dxf.NewDrawing()

	layers := []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerContainer, color.White},
		{LayerCargo, color.Cyan},
		{LayerAxles, color.Red},
		{LayerLabels, color.Yellow},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.col, table.LT_CONTINUOUS, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	c := result.Container
	if err := d.ChangeLayer(LayerContainer); err != nil {
		return fmt.Errorf("failed to select layer: %w", err)
	}
	if err := drawBox(d, model.Box{Size: c.Dimensions()}); err != nil {
		return fmt.Errorf("failed to draw container: %w", err)
	}

	if err := d.ChangeLayer(LayerCargo); err != nil {
		return fmt.Errorf("failed to select layer: %w", err)
	}
	for _, p := range result.Placed {
		if err := drawBox(d, p.Box()); err != nil {
			return fmt.Errorf("failed to draw piece %s: %w", p.PieceID, err)
		}
	}

	if err := d.ChangeLayer(LayerAxles); err != nil {
		return fmt.Errorf("failed to select layer: %w", err)
	}
	for _, a := range result.AxleLoads {
		if a.Position < 0 || a.Position > c.Length {
			continue
		}
		if _, err := d.Line(a.Position, 0, 0, a.Position, c.Width, 0); err != nil {
			return fmt.Errorf("failed to draw axle %d: %w", a.Index, err)
		}
	}

	if err := d.ChangeLayer(LayerLabels); err != nil {
		return fmt.Errorf("failed to select layer: %w", err)
	}
	for _, p := range result.Placed {
		name := p.Label
		if name == "" {
			name = p.PieceID
		}
		top := p.Box().Max()
		height := min(p.Dimensions.Length, p.Dimensions.Width) / 6
		if _, err := d.Text(name, p.Position.X, p.Position.Y+p.Dimensions.Width/2, top.Z, height); err != nil {
			return fmt.Errorf("failed to label piece %s: %w", p.PieceID, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF: %w", err)
	}
	return nil
}

// drawBox draws the twelve edges of b.
func drawBox(d *drawing.Drawing, b model.Box) error {
	lo, hi := b.Min, b.Max()
	corners := [8][3]float64{
		{lo.X, lo.Y, lo.Z}, {hi.X, lo.Y, lo.Z}, {hi.X, hi.Y, lo.Z}, {lo.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z}, {hi.X, lo.Y, hi.Z}, {hi.X, hi.Y, hi.Z}, {lo.X, hi.Y, hi.Z},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // floor
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // roof
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // posts
	}
	for _, e := range edges {
		a, z := corners[e[0]], corners[e[1]]
		if _, err := d.Line(a[0], a[1], a[2], z[0], z[1], z[2]); err != nil {
			return err
		}
	}
	return nil
}
