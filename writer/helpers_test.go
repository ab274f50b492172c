package writer

import (
	"bytes"
	"testing"
	"time"

	"github.com/wippyai/gdsii/design"
	"github.com/wippyai/gdsii/gds"
)

var fixedTime = time.Date(2024, time.June, 1, 12, 30, 15, 0, time.UTC)

type fixture struct {
	tech   *design.Technology
	lib    *design.Library
	metal1 *design.Layer
	metal2 *design.Layer
	via    *design.Layer
	pseudo *design.Layer
}

func newFixture(scale float64) *fixture {
	f := &fixture{
		metal1: &design.Layer{Name: "metal1"},
		metal2: &design.Layer{Name: "metal2"},
		via:    &design.Layer{Name: "via"},
		pseudo: &design.Layer{Name: "pseudo", Pseudo: true},
	}
	f.tech = &design.Technology{
		Name:   "test",
		Scale:  scale,
		Layers: []*design.Layer{f.metal1, f.metal2, f.via, f.pseudo},
		Foundries: []*design.Foundry{{
			Name: "fab",
			Layers: map[string]design.LayerMapping{
				"metal1": {GDS: "5,0", Text: "5,25"},
				"metal2": {GDS: "7,0", Pin: "7,2"},
				"via":    {GDS: "6,0,6,1"},
			},
		}},
	}
	f.lib = design.NewLibrary("testlib")
	return f
}

func (f *fixture) cell(name string, polys ...design.Polygon) *design.Cell {
	return f.lib.AddCell(&design.Cell{Name: name, Tech: f.tech, Polygons: polys})
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return fixedTime }
	return cfg
}

func writeStream(t *testing.T, cfg Config, top *design.Cell) ([]byte, *Result) {
	t.Helper()
	var buf bytes.Buffer
	res, err := New(cfg).Write(&buf, top, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes(), res
}

func decode(t *testing.T, data []byte) []gds.Record {
	t.Helper()
	recs, err := gds.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return recs
}

// element is one decoded element with its records after the opening tag.
type element struct {
	kind    gds.RecordType
	records []gds.Record
}

func (e element) get(rt gds.RecordType) (gds.Record, bool) {
	for _, r := range e.records {
		if r.Type == rt {
			return r, true
		}
	}
	return gds.Record{}, false
}

func (e element) short(t *testing.T, rt gds.RecordType) uint16 {
	t.Helper()
	r, ok := e.get(rt)
	if !ok {
		t.Fatalf("%s element has no %s", e.kind, rt)
	}
	return r.Shorts()[0]
}

func (e element) xy(t *testing.T) []gds.Point {
	t.Helper()
	r, ok := e.get(gds.XY)
	if !ok {
		t.Fatalf("%s element has no XY", e.kind)
	}
	return r.Points()
}

// structures maps structure names to their elements in stream order.
type structure struct {
	name     string
	elements []element
}

func structures(t *testing.T, recs []gds.Record) []structure {
	t.Helper()
	var out []structure
	var cur *structure
	var el *element
	for _, r := range recs {
		switch r.Type {
		case gds.StrName:
			out = append(out, structure{name: r.Text()})
			cur = &out[len(out)-1]
		case gds.Boundary, gds.Path, gds.SRef, gds.Text, gds.ARef:
			cur.elements = append(cur.elements, element{kind: r.Type})
			el = &cur.elements[len(cur.elements)-1]
		case gds.EndEl:
			el = nil
		case gds.EndStr:
			cur = nil
		default:
			if el != nil {
				el.records = append(el.records, r)
			}
		}
	}
	return out
}

func elementsOf(s structure, kind gds.RecordType) []element {
	var out []element
	for _, e := range s.elements {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func box(l *design.Layer, x0, y0, x1, y1 float64) design.Polygon {
	return design.Polygon{Layer: l, Style: design.StyleBox, Points: []design.Point{{x0, y0}, {x1, y1}}}
}
