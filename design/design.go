// Package design is the read-only layout model consumed by the GDSII writer:
// technologies and their foundry layer maps, libraries, cells, instances
// and exports.
package design

import (
	"strconv"
)

// Layer is a design layer. Identity is the pointer.
type Layer struct {
	Name string

	// Pseudo marks auxiliary layers that foundries normally leave unmapped.
	Pseudo bool
}

// LayerMapping is a foundry's GDS encoding for one layer. Each field is a
// "layer,datatype[,layer,datatype...]" string; empty means not mapped.
type LayerMapping struct {
	GDS  string `yaml:"gds"`
	Text string `yaml:"text,omitempty"`
	Pin  string `yaml:"pin,omitempty"`
}

// Foundry maps design layers to process GDS numbers.
type Foundry struct {
	Layers map[string]LayerMapping
	Name   string
}

// Mapping returns the foundry's encoding for l.
func (f *Foundry) Mapping(l *Layer) (LayerMapping, bool) {
	if f == nil || l == nil {
		return LayerMapping{}, false
	}
	m, ok := f.Layers[l.Name]
	return m, ok
}

// Technology groups the layers, scale and foundries of a process.
type Technology struct {
	Name           string
	DefaultFoundry string
	Layers         []*Layer
	Foundries      []*Foundry

	// Scale is nanometres per design unit.
	Scale float64
}

// Layer finds a layer by name.
func (t *Technology) Layer(name string) *Layer {
	for _, l := range t.Layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Foundry finds a foundry by name. An empty name selects the default
// foundry, or the first one when no default is set.
func (t *Technology) Foundry(name string) *Foundry {
	if name == "" {
		name = t.DefaultFoundry
	}
	for _, f := range t.Foundries {
		if name == "" || f.Name == name {
			return f
		}
	}
	return nil
}

// Library is a named collection of cells.
type Library struct {
	Name  string
	Cells []*Cell
}

// NewLibrary creates an empty library.
func NewLibrary(name string) *Library {
	return &Library{Name: name}
}

// AddCell appends c and makes the library its owner.
func (l *Library) AddCell(c *Cell) *Cell {
	c.Library = l
	l.Cells = append(l.Cells, c)
	return c
}

// Cell returns the newest version of the named cell.
func (l *Library) Cell(name string) *Cell {
	var best *Cell
	for _, c := range l.Cells {
		if c.Name == name && (best == nil || c.Version > best.Version) {
			best = c
		}
	}
	return best
}

// CellVersion returns a specific version of the named cell.
func (l *Library) CellVersion(name string, version int) *Cell {
	for _, c := range l.Cells {
		if c.Name == name && c.Version == version {
			return c
		}
	}
	return nil
}

// Point is a design-unit coordinate.
type Point struct {
	X, Y float64
}

// Orientation is a rotation in tenths of a degree applied after mirroring.
type Orientation struct {
	Angle   int
	MirrorX bool // x -> -x
	MirrorY bool // y -> -y
}

// Instance places a sub-cell.
type Instance struct {
	Proto  *Cell
	Name   string
	Anchor Point
	Orientation
}

// Export is a named connection point of a cell. Layer is the primitive
// layer of the bottom-most port beneath it, when known.
type Export struct {
	Layer  *Layer
	Name   string
	Center Point
	Orientation
}

// Cell is a layout or icon cell.
type Cell struct {
	Library *Library
	Tech    *Technology

	// Contents is the cell drawn when an icon is instanced.
	Contents *Cell

	Name      string
	Polygons  []Polygon
	Instances []*Instance
	Exports   []*Export

	// ConnectedExports lists groups of export names that the parent
	// connects. An entry wrapped in slashes is a regular expression.
	ConnectedExports [][]string

	Version int
}

// Effective returns the cell that is written for an instance of c.
func (c *Cell) Effective() *Cell {
	if c.Contents != nil {
		return c.Contents
	}
	return c
}

// Technology returns the cell's technology, falling back to its contents.
func (c *Cell) Technology() *Technology {
	if c.Tech != nil {
		return c.Tech
	}
	if c.Contents != nil {
		return c.Contents.Tech
	}
	return nil
}

// IsNewest reports whether no newer version of the cell exists in its library.
func (c *Cell) IsNewest() bool {
	if c.Library == nil {
		return true
	}
	return c.Library.Cell(c.Name) == c
}

// LibraryName returns the owning library name or "".
func (c *Cell) LibraryName() string {
	if c.Library == nil {
		return ""
	}
	return c.Library.Name
}

func (c *Cell) String() string {
	s := c.Name
	if lib := c.LibraryName(); lib != "" {
		s = lib + ":" + s
	}
	if c.Version > 0 {
		s += ";" + strconv.Itoa(c.Version)
	}
	return s
}
