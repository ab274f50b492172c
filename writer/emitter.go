package writer

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/gdsii/design"
	"github.com/wippyai/gdsii/errors"
	"github.com/wippyai/gdsii/gds"
	"github.com/wippyai/gdsii/layermap"
	"github.com/wippyai/gdsii/naming"
)

// emitter turns polygons, instances and exports into element records.
type emitter struct {
	enc     *gds.Encoder
	layers  *layermap.Resolver
	names   *naming.Resolver
	log     *zap.Logger
	metrics *Metrics
	path    []string
	scale   float64
	maxName int
	dropped int
}

func (e *emitter) drop(reason string, p design.Polygon, warn bool) {
	e.dropped++
	e.metrics.drop(reason)
	fields := []zap.Field{
		zap.Strings("cell", e.path),
		zap.String("reason", reason),
		zap.Stringer("style", p.Style),
		zap.Int("points", len(p.Points)),
	}
	if warn {
		e.log.Warn("shape not written", fields...)
	} else {
		e.log.Debug("shape not written", fields...)
	}
}

func (e *emitter) coord(v float64) (int32, error) {
	s := math.Round(v * e.scale)
	if math.IsNaN(s) || s > math.MaxInt32 || s < math.MinInt32 {
		return 0, errors.Overflow(errors.PhaseEncode, e.path, v*e.scale, "int32 database units")
	}
	return int32(s), nil
}

func (e *emitter) point(p design.Point) (gds.Point, error) {
	x, err := e.coord(p.X)
	if err != nil {
		return gds.Point{}, err
	}
	y, err := e.coord(p.Y)
	if err != nil {
		return gds.Point{}, err
	}
	return gds.Point{X: x, Y: y}, nil
}

func (e *emitter) points(pts []design.Point) ([]gds.Point, error) {
	out := make([]gds.Point, len(pts))
	for i, p := range pts {
		q, err := e.point(p)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}

// polygon writes one shape. Only coordinate overflow and encoder
// failures are returned; unrepresentable shapes are dropped.
func (e *emitter) polygon(layer *design.Layer, p design.Polygon) error {
	if p.Layer != nil {
		layer = p.Layer
	}
	res := e.layers.Resolve(layer)
	if !res.Valid() {
		e.drop(DropInvalidLayer, p, false)
		return nil
	}

	switch {
	case p.Style == design.StyleDisc:
		return e.disc(res, p)
	case p.Style == design.StyleBox,
		p.Style == design.StyleFilled && design.IsRect(p.Points):
		if len(p.Points) < 2 {
			e.drop(DropDegenerate, p, false)
			return nil
		}
		lo, hi := p.Bounds()
		return e.box(res, p, lo, hi)
	case p.Style == design.StyleOpen:
		return e.wire(res, p)
	default:
		return e.general(res, p)
	}
}

// disc writes a circle as the square that bounds it.
func (e *emitter) disc(res layermap.Resolved, p design.Polygon) error {
	if len(p.Points) < 2 {
		e.drop(DropDegenerate, p, false)
		return nil
	}
	c, rim := p.Points[0], p.Points[1]
	r := math.Hypot(rim.X-c.X, rim.Y-c.Y)
	if r <= 0 {
		e.drop(DropDegenerate, p, false)
		return nil
	}
	lo := design.Point{X: c.X - r, Y: c.Y - r}
	hi := design.Point{X: c.X + r, Y: c.Y + r}
	return e.box(res, p, lo, hi)
}

func (e *emitter) box(res layermap.Resolved, p design.Polygon, lo, hi design.Point) error {
	l, err := e.point(lo)
	if err != nil {
		return err
	}
	h, err := e.point(hi)
	if err != nil {
		return err
	}
	if h.X <= l.X || h.Y <= l.Y {
		e.drop(DropDegenerate, p, false)
		return nil
	}
	ring := []gds.Point{
		{X: l.X, Y: l.Y},
		{X: h.X, Y: l.Y},
		{X: h.X, Y: h.Y},
		{X: l.X, Y: h.Y},
		{X: l.X, Y: l.Y},
	}
	return e.boundary(res, ring)
}

// general writes a polygon whose point list may hold several closed loops,
// each ending on a repeat of its own first point.
func (e *emitter) general(res layermap.Resolved, p design.Polygon) error {
	pts := p.Points
	switch n := len(pts); {
	case n == 0:
		e.drop(DropDegenerate, p, false)
		return nil
	case n == 1:
		e.drop(DropSinglePoint, p, true)
		return nil
	case n > gds.MaxPolygonPoints:
		e.drop(DropTooManyPts, p, true)
		return nil
	case n == 2:
		return e.wire(res, p)
	}

	for start := 0; start < len(pts); {
		end := -1
		for j := start + 1; j < len(pts); j++ {
			if pts[j] == pts[start] {
				end = j
				break
			}
		}

		var loop []design.Point
		if end < 0 {
			loop = append(pts[start:len(pts):len(pts)], pts[start])
			start = len(pts)
		} else {
			loop = pts[start : end+1]
			start = end + 1
		}

		if len(loop) < 4 {
			e.drop(DropDegenerate, design.Polygon{Layer: p.Layer, Style: p.Style, Points: loop}, false)
			continue
		}
		ring, err := e.points(loop)
		if err != nil {
			return err
		}
		if err := e.boundary(res, ring); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) boundary(res layermap.Resolved, ring []gds.Point) error {
	for _, pair := range res.Pairs {
		e.enc.Header(gds.Boundary)
		e.enc.Header(gds.Layer, pair.Layer)
		e.enc.Header(gds.DataType, pair.DataType)
		if err := e.enc.XY(ring); err != nil {
			return err
		}
		e.enc.Header(gds.EndEl)
	}
	return nil
}

func (e *emitter) wire(res layermap.Resolved, p design.Polygon) error {
	switch n := len(p.Points); {
	case n < 2:
		e.drop(DropSinglePoint, p, true)
		return nil
	case n > gds.MaxPolygonPoints:
		e.drop(DropTooManyPts, p, true)
		return nil
	}

	pts, err := e.points(p.Points)
	if err != nil {
		return err
	}
	var width int32
	if p.Width > 0 {
		if width, err = e.coord(p.Width); err != nil {
			return err
		}
	}
	for _, pair := range res.Pairs {
		e.enc.Header(gds.Path)
		e.enc.Header(gds.Layer, pair.Layer)
		e.enc.Header(gds.DataType, pair.DataType)
		if width > 0 {
			e.enc.Int32(gds.Width, width)
		}
		if err := e.enc.XY(pts); err != nil {
			return err
		}
		e.enc.Header(gds.EndEl)
	}
	return nil
}

// strans converts a mirror-then-rotate orientation into GDSII's
// reflect-about-X-then-rotate form.
func strans(o design.Orientation) (flags uint16, tenths int) {
	tenths = o.Angle
	if o.MirrorX != o.MirrorY {
		flags |= gds.STransReflect
	}
	if o.MirrorX {
		tenths += 1800
	}
	tenths %= 3600
	if tenths < 0 {
		tenths += 3600
	}
	return flags, tenths
}

func (e *emitter) instance(inst *design.Instance) error {
	if inst.Proto == nil {
		return nil
	}
	name := e.names.Assign(inst.Proto.Effective())
	anchor, err := e.point(inst.Anchor)
	if err != nil {
		return err
	}

	e.enc.Header(gds.SRef)
	e.enc.Name(gds.SName, name, e.maxName)
	flags, tenths := strans(inst.Orientation)
	if flags != 0 || tenths != 0 {
		e.enc.Header(gds.STrans, flags)
		if tenths != 0 {
			e.enc.Angle(tenths)
		}
	}
	if err := e.enc.XY([]gds.Point{anchor}); err != nil {
		return err
	}
	e.enc.Header(gds.EndEl)
	return nil
}
