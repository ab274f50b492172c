package design

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gdserrors "github.com/wippyai/gdsii/errors"
)

const sampleDesign = `
top: chip:top
technology:
  name: mocmos
  scale: 200
  default_foundry: mosis
  layers:
    - name: metal1
    - name: metal2
    - name: pwell-node
      pseudo: true
  foundries:
    - name: mosis
      layers:
        metal1: {gds: "49,0", text: "49,25", pin: "49,2"}
        metal2: {gds: "51,0"}
libraries:
  - name: cells
    cells:
      - name: inv
        version: 1
      - name: inv
        version: 2
        polygons:
          - layer: metal1
            style: box
            points: [[0, 0], [10, 10]]
      - name: inv_icon
        contents: inv
  - name: chip
    cells:
      - name: top
        polygons:
          - layer: metal2
            style: open
            width: 3
            points: [[0, 0], [0, 50]]
        instances:
          - name: x1
            proto: cells:inv_icon
            at: [20, 0]
            angle: 900
            mirror_x: true
          - name: x2
            proto: cells:inv;1
        exports:
          - name: vdd_1
            at: [0, 50]
            layer: metal1
        connected_exports:
          - [vdd, "/vdd_[0-9]+/"]
`

func TestParseDesign(t *testing.T) {
	d, err := Parse([]byte(sampleDesign))
	require.NoError(t, err)

	require.NotNil(t, d.Tech)
	assert.Equal(t, "mocmos", d.Tech.Name)
	assert.Equal(t, 200.0, d.Tech.Scale)
	require.Len(t, d.Tech.Layers, 3)
	assert.True(t, d.Tech.Layers[2].Pseudo)

	f := d.Tech.Foundry("")
	require.NotNil(t, f)
	m, ok := f.Mapping(d.Tech.Layer("metal1"))
	require.True(t, ok)
	assert.Equal(t, LayerMapping{GDS: "49,0", Text: "49,25", Pin: "49,2"}, m)

	cells := d.Library("cells")
	require.NotNil(t, cells)
	inv := cells.Cell("inv")
	require.NotNil(t, inv)
	assert.Equal(t, 2, inv.Version)
	require.Len(t, inv.Polygons, 1)
	assert.Equal(t, StyleBox, inv.Polygons[0].Style)
	assert.Equal(t, []Point{{0, 0}, {10, 10}}, inv.Polygons[0].Points)
	assert.Same(t, inv, cells.Cell("inv_icon").Contents)

	top := d.Top
	require.NotNil(t, top)
	assert.Equal(t, "top", top.Name)
	assert.Same(t, d.Tech, top.Tech)
	require.Len(t, top.Polygons, 1)
	assert.Equal(t, StyleOpen, top.Polygons[0].Style)
	assert.Equal(t, 3.0, top.Polygons[0].Width)

	require.Len(t, top.Instances, 2)
	x1 := top.Instances[0]
	assert.Same(t, cells.Cell("inv_icon"), x1.Proto)
	assert.Equal(t, Point{20, 0}, x1.Anchor)
	assert.Equal(t, 900, x1.Angle)
	assert.True(t, x1.MirrorX)
	assert.False(t, x1.MirrorY)
	assert.Same(t, cells.CellVersion("inv", 1), top.Instances[1].Proto)

	require.Len(t, top.Exports, 1)
	assert.Same(t, d.Tech.Layer("metal1"), top.Exports[0].Layer)
	assert.Equal(t, [][]string{{"vdd", "/vdd_[0-9]+/"}}, top.ConnectedExports)
}

func TestParseDesignDefaultsTop(t *testing.T) {
	d, err := Parse([]byte(`
libraries:
  - name: lib
    cells:
      - name: a
      - name: b
`))
	require.NoError(t, err)
	require.NotNil(t, d.Top)
	assert.Equal(t, "a", d.Top.Name)
	assert.Equal(t, 1.0, d.Tech.Scale)
}

func TestParseDesignErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		kind gdserrors.Kind
	}{
		{"bad yaml", "libraries: [", gdserrors.KindInvalidData},
		{"unknown layer", `
libraries:
  - name: lib
    cells:
      - name: a
        polygons:
          - layer: nope
            points: [[0, 0]]
`, gdserrors.KindNotFound},
		{"unknown proto", `
libraries:
  - name: lib
    cells:
      - name: a
        instances:
          - proto: missing
`, gdserrors.KindNotFound},
		{"unknown library", `
top: other:a
libraries:
  - name: lib
    cells:
      - name: a
`, gdserrors.KindNotFound},
		{"bad style", `
technology:
  layers: [{name: m1}]
libraries:
  - name: lib
    cells:
      - name: a
        polygons:
          - layer: m1
            style: hatched
`, gdserrors.KindInvalidData},
		{"negative scale", `
technology:
  scale: -1
`, gdserrors.KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var gerr *gdserrors.Error
			require.True(t, errors.As(err, &gerr), "got %v", err)
			assert.Equal(t, gdserrors.PhaseLoad, gerr.Phase)
			assert.Equal(t, tt.kind, gerr.Kind)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDesign), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "top", d.Top.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDesignCell(t *testing.T) {
	d, err := Parse([]byte(sampleDesign))
	require.NoError(t, err)

	tests := []struct {
		ref     string
		name    string
		version int
		wantErr bool
	}{
		{ref: "inv", name: "inv", version: 2},
		{ref: "cells:inv;1", name: "inv", version: 1},
		{ref: "chip:top", name: "top"},
		{ref: "top", wantErr: true},
		{ref: "other:top", wantErr: true},
		{ref: "inv;x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			c, err := d.Cell(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name)
			assert.Equal(t, tt.version, c.Version)
		})
	}
}
