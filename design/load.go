package design

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/gdsii/errors"
)

// Design is a loaded technology, its libraries and the top cell to write.
type Design struct {
	Tech      *Technology
	Top       *Cell
	Libraries []*Library
}

// Library finds a loaded library by name.
func (d *Design) Library(name string) *Library {
	for _, l := range d.Libraries {
		if l.Name == name {
			return l
		}
	}
	return nil
}

type fileSpec struct {
	Top        string    `yaml:"top"`
	Technology techSpec  `yaml:"technology"`
	Libraries  []libSpec `yaml:"libraries"`
}

type techSpec struct {
	Name           string        `yaml:"name"`
	DefaultFoundry string        `yaml:"default_foundry"`
	Layers         []layerSpec   `yaml:"layers"`
	Foundries      []foundrySpec `yaml:"foundries"`
	Scale          float64       `yaml:"scale"`
}

type layerSpec struct {
	Name   string `yaml:"name"`
	Pseudo bool   `yaml:"pseudo"`
}

type foundrySpec struct {
	Layers map[string]LayerMapping `yaml:"layers"`
	Name   string                  `yaml:"name"`
}

type libSpec struct {
	Name  string     `yaml:"name"`
	Cells []cellSpec `yaml:"cells"`
}

type cellSpec struct {
	Name             string       `yaml:"name"`
	Contents         string       `yaml:"contents"`
	Polygons         []polySpec   `yaml:"polygons"`
	Instances        []instSpec   `yaml:"instances"`
	Exports          []exportSpec `yaml:"exports"`
	ConnectedExports [][]string   `yaml:"connected_exports"`
	Version          int          `yaml:"version"`
}

type polySpec struct {
	Layer  string       `yaml:"layer"`
	Style  string       `yaml:"style"`
	Points [][2]float64 `yaml:"points"`
	Width  float64      `yaml:"width"`
}

type orientSpec struct {
	Angle   int  `yaml:"angle"`
	MirrorX bool `yaml:"mirror_x"`
	MirrorY bool `yaml:"mirror_y"`
}

type instSpec struct {
	Name       string     `yaml:"name"`
	Proto      string     `yaml:"proto"`
	At         [2]float64 `yaml:"at"`
	orientSpec `yaml:",inline"`
}

type exportSpec struct {
	Name       string     `yaml:"name"`
	Layer      string     `yaml:"layer"`
	At         [2]float64 `yaml:"at"`
	orientSpec `yaml:",inline"`
}

// Load reads a YAML design file.
func Load(path string) (*Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read design "+path, err)
	}
	return Parse(data)
}

// Parse builds a design from YAML.
func Parse(data []byte) (*Design, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.Load("parse design", err)
	}

	b := &builder{d: &Design{}}
	if err := b.technology(spec.Technology); err != nil {
		return nil, err
	}
	for _, ls := range spec.Libraries {
		lib := NewLibrary(ls.Name)
		for _, cs := range ls.Cells {
			lib.AddCell(&Cell{Name: cs.Name, Version: cs.Version, Tech: b.d.Tech})
		}
		b.d.Libraries = append(b.d.Libraries, lib)
	}
	for i, ls := range spec.Libraries {
		lib := b.d.Libraries[i]
		for j, cs := range ls.Cells {
			if err := b.cell(lib, lib.Cells[j], cs); err != nil {
				return nil, err
			}
		}
	}

	if spec.Top != "" {
		top, err := b.d.lookup(nil, spec.Top)
		if err != nil {
			return nil, err
		}
		b.d.Top = top
	} else if len(b.d.Libraries) > 0 && len(b.d.Libraries[0].Cells) > 0 {
		b.d.Top = b.d.Libraries[0].Cells[0]
	}
	return b.d, nil
}

type builder struct {
	d *Design
}

func (b *builder) technology(ts techSpec) error {
	scale := ts.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 {
		return errors.InvalidData(errors.PhaseLoad, []string{ts.Name}, "technology scale must be positive")
	}
	tech := &Technology{Name: ts.Name, Scale: scale, DefaultFoundry: ts.DefaultFoundry}
	for _, l := range ts.Layers {
		tech.Layers = append(tech.Layers, &Layer{Name: l.Name, Pseudo: l.Pseudo})
	}
	for _, fs := range ts.Foundries {
		tech.Foundries = append(tech.Foundries, &Foundry{Name: fs.Name, Layers: fs.Layers})
	}
	b.d.Tech = tech
	return nil
}

func (b *builder) layer(cell *Cell, name string) (*Layer, error) {
	l := b.d.Tech.Layer(name)
	if l == nil {
		err := errors.NotFound(errors.PhaseLoad, "layer", name)
		err.Path = []string{cell.LibraryName(), cell.Name}
		return nil, err
	}
	return l, nil
}

func (b *builder) cell(lib *Library, cell *Cell, cs cellSpec) error {
	if cs.Contents != "" {
		contents, err := b.d.lookup(lib, cs.Contents)
		if err != nil {
			return err
		}
		cell.Contents = contents
	}

	for _, ps := range cs.Polygons {
		layer, err := b.layer(cell, ps.Layer)
		if err != nil {
			return err
		}
		style, err := ParseStyle(ps.Style)
		if err != nil {
			return errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(lib.Name, cell.Name).
				Cause(err).
				Build()
		}
		poly := Polygon{Layer: layer, Style: style, Width: ps.Width}
		for _, p := range ps.Points {
			poly.Points = append(poly.Points, Point{X: p[0], Y: p[1]})
		}
		cell.Polygons = append(cell.Polygons, poly)
	}

	for _, is := range cs.Instances {
		proto, err := b.d.lookup(lib, is.Proto)
		if err != nil {
			return err
		}
		cell.Instances = append(cell.Instances, &Instance{
			Proto:       proto,
			Name:        is.Name,
			Anchor:      Point{X: is.At[0], Y: is.At[1]},
			Orientation: is.orientation(),
		})
	}

	for _, es := range cs.Exports {
		e := &Export{
			Name:        es.Name,
			Center:      Point{X: es.At[0], Y: es.At[1]},
			Orientation: es.orientation(),
		}
		if es.Layer != "" {
			layer, err := b.layer(cell, es.Layer)
			if err != nil {
				return err
			}
			e.Layer = layer
		}
		cell.Exports = append(cell.Exports, e)
	}

	cell.ConnectedExports = cs.ConnectedExports
	return nil
}

func (o orientSpec) orientation() Orientation {
	return Orientation{Angle: o.Angle, MirrorX: o.MirrorX, MirrorY: o.MirrorY}
}

// Cell resolves "lib:cell[;version]". A reference without a library is
// looked up in the first library.
func (d *Design) Cell(ref string) (*Cell, error) {
	return d.lookup(nil, ref)
}

// lookup resolves "lib:cell[;version]" or "cell[;version]" relative to from.
func (d *Design) lookup(from *Library, ref string) (*Cell, error) {
	lib := from
	name := ref
	if libName, cellName, ok := strings.Cut(ref, ":"); ok {
		lib = d.Library(libName)
		if lib == nil {
			return nil, errors.NotFound(errors.PhaseLoad, "library", libName)
		}
		name = cellName
	}
	if lib == nil {
		if len(d.Libraries) == 0 {
			return nil, errors.NotFound(errors.PhaseLoad, "cell", ref)
		}
		lib = d.Libraries[0]
	}

	var cell *Cell
	if base, v, ok := strings.Cut(name, ";"); ok {
		version, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Load("cell reference "+ref, err)
		}
		cell = lib.CellVersion(base, version)
	} else {
		cell = lib.Cell(name)
	}
	if cell == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "cell", ref)
	}
	return cell, nil
}
