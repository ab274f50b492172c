package design

import "fmt"

// Style tells the writer how a polygon's points are to be read.
type Style int

const (
	// StyleFilled is a general closed polygon. Several closed loops may be
	// stored back to back, each ending on its own first point.
	StyleFilled Style = iota

	// StyleBox is an axis-aligned rectangle given by its corners.
	StyleBox

	// StyleDisc is a circle: center point then a point on the rim.
	StyleDisc

	// StyleOpen is an unfilled wire.
	StyleOpen
)

func (s Style) String() string {
	switch s {
	case StyleFilled:
		return "filled"
	case StyleBox:
		return "box"
	case StyleDisc:
		return "disc"
	case StyleOpen:
		return "open"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// ParseStyle parses a style name as produced by Style.String.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "", "filled":
		return StyleFilled, nil
	case "box":
		return StyleBox, nil
	case "disc":
		return StyleDisc, nil
	case "open":
		return StyleOpen, nil
	}
	return 0, fmt.Errorf("unknown polygon style %q", s)
}

// Polygon is one output shape.
type Polygon struct {
	Layer  *Layer
	Points []Point
	Style  Style

	// Width applies to StyleOpen wires; zero means no WIDTH record.
	Width float64
}

// Bounds returns the bounding box of p's points.
func (p Polygon) Bounds() (lo, hi Point) {
	return Bounds(p.Points)
}

// Bounds returns the bounding box of pts.
func Bounds(pts []Point) (lo, hi Point) {
	if len(pts) == 0 {
		return
	}
	lo, hi = pts[0], pts[0]
	for _, q := range pts[1:] {
		lo.X = min(lo.X, q.X)
		lo.Y = min(lo.Y, q.Y)
		hi.X = max(hi.X, q.X)
		hi.Y = max(hi.Y, q.Y)
	}
	return lo, hi
}

// IsRect reports whether pts trace an axis-aligned rectangle: four corners,
// optionally closed by repeating the first, with each edge parallel to an
// axis. Rectangles collapsed to a line or a point also match.
func IsRect(pts []Point) bool {
	n := len(pts)
	if n == 5 && pts[4] == pts[0] {
		n = 4
	}
	if n != 4 {
		return false
	}
	a, b, c, d := pts[0], pts[1], pts[2], pts[3]
	vertical := a.X == b.X && c.X == d.X && a.Y == d.Y && b.Y == c.Y
	horizontal := a.Y == b.Y && c.Y == d.Y && a.X == d.X && b.X == c.X
	return vertical || horizontal
}

// LayerPolygons is the output of one layer in a cell.
type LayerPolygons struct {
	Layer    *Layer
	Polygons []Polygon
}

// CellGeometry is the flattened content of one cell, ready to be written.
type CellGeometry struct {
	Layers    []LayerPolygons
	Instances []*Instance
}

// GeometryOptions are passed to the geometry pass.
type GeometryOptions struct {
	// MergeBoxes asks the pass to merge abutting rectangles.
	MergeBoxes bool
}

// GeometrySource produces the output polygons and sub-cell instances of a
// cell. Implementations do the hierarchical flattening and merging.
type GeometrySource interface {
	Geometry(cell *Cell, opts GeometryOptions) (*CellGeometry, error)
}

// Direct serves each cell's stored polygons and instances unchanged,
// grouped by layer in order of first appearance. It does not merge boxes.
type Direct struct{}

// Geometry implements GeometrySource.
func (Direct) Geometry(cell *Cell, _ GeometryOptions) (*CellGeometry, error) {
	g := &CellGeometry{Instances: cell.Instances}
	index := make(map[*Layer]int)
	for _, p := range cell.Polygons {
		i, ok := index[p.Layer]
		if !ok {
			i = len(g.Layers)
			index[p.Layer] = i
			g.Layers = append(g.Layers, LayerPolygons{Layer: p.Layer})
		}
		g.Layers[i].Polygons = append(g.Layers[i].Polygons, p)
	}
	return g, nil
}
