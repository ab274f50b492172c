// Package writer writes a cell hierarchy as a GDSII stream.
//
// A Writer holds only configuration. Each Write builds its own encoder,
// layer cache and name table, so one Writer may serve concurrent writes of
// independent designs.
package writer

import (
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/gdsii/design"
	"github.com/wippyai/gdsii/errors"
	"github.com/wippyai/gdsii/gds"
	"github.com/wippyai/gdsii/layermap"
	"github.com/wippyai/gdsii/naming"
)

// UNITS: one database unit is a nanometre, one user unit a micron.
const (
	UserUnitsPerDBUnit = 1e-3
	MetersPerDBUnit    = 1e-9
)

// Result summarizes a finished write.
type Result struct {
	// Structures is the number of BGNSTR...ENDSTR blocks written.
	Structures int

	// Records is the total number of records.
	Records int

	// Dropped counts shapes and labels left out of the stream.
	Dropped int

	// Renamed counts cells written under a name other than their own.
	Renamed int

	// Blocks is the number of 512-byte blocks, a multiple of four.
	Blocks int

	// Bytes is the stream length including padding.
	Bytes int

	// Digest is the xxhash64 of the stream.
	Digest uint64
}

// Writer writes GDSII libraries.
type Writer struct {
	cfg Config
}

// New creates a Writer.
func New(cfg Config) *Writer {
	return &Writer{cfg: cfg.withDefaults()}
}

// Config returns the writer's effective configuration.
func (w *Writer) Config() Config {
	return w.cfg
}

// Write streams top and every cell it reaches to sink. Geometry comes from
// src; a nil src writes each cell's stored polygons as-is. Only sink
// failures, coordinate overflow and geometry source errors abort the write.
func (w *Writer) Write(sink io.Writer, top *design.Cell, src design.GeometrySource) (*Result, error) {
	tech, err := w.check(top)
	if err != nil {
		w.cfg.Metrics.finish(nil, err)
		return nil, err
	}
	if src == nil {
		src = design.Direct{}
	}

	r := newRun(w.cfg, sink, tech, src)
	res, err := r.write(top)
	w.cfg.Metrics.finish(res, err)
	if err != nil {
		r.log.Error("gds write failed", zap.Stringer("top", top), zap.Error(err))
		return nil, err
	}
	return res, nil
}

// check validates the configuration and the top cell's technology.
func (w *Writer) check(top *design.Cell) (*design.Technology, error) {
	if err := w.cfg.Validate(); err != nil {
		return nil, err
	}
	if top == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "no top cell")
	}
	tech := top.Technology()
	if tech == nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(top.LibraryName(), top.Name).
			Detail("top cell has no technology").
			Build()
	}
	if tech.Scale <= 0 {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(tech.Name).
			Value(tech.Scale).
			Detail("technology scale must be positive").
			Build()
	}
	return tech, nil
}

// run is the state of one write.
type run struct {
	cfg      Config
	log      *zap.Logger
	now      time.Time
	tech     *design.Technology
	src      design.GeometrySource
	enc      *gds.Encoder
	layers   *layermap.Resolver
	names    *naming.Resolver
	em       *emitter
	geometry map[*design.Cell]*design.CellGeometry
	order    []*design.Cell
}

func newRun(cfg Config, sink io.Writer, tech *design.Technology, src design.GeometrySource) *run {
	log := cfg.Logger
	foundry := tech.Foundry(cfg.Foundry)
	if foundry == nil {
		log.Warn("technology has no such foundry, no layers will be written",
			zap.String("technology", tech.Name), zap.String("foundry", cfg.Foundry))
	}

	r := &run{
		cfg:      cfg,
		log:      log,
		now:      cfg.Now(),
		tech:     tech,
		src:      src,
		enc:      gds.NewEncoder(sink, gds.EncoderOptions{Logger: log, ForceUpper: cfg.UpperCase}),
		layers:   layermap.New(foundry, log),
		names:    naming.New(naming.Options{MaxLen: cfg.MaxNameLength, Upper: cfg.UpperCase}, log),
		geometry: make(map[*design.Cell]*design.CellGeometry),
	}
	r.em = &emitter{
		enc:     r.enc,
		layers:  r.layers,
		names:   r.names,
		log:     log,
		metrics: cfg.Metrics,
		scale:   tech.Scale,
		maxName: cfg.MaxNameLength,
	}
	return r
}

func (r *run) write(top *design.Cell) (*Result, error) {
	r.resolveLayers()
	r.names.AssignHierarchy(top)
	if err := r.collect(top); err != nil {
		return nil, err
	}

	libName := top.LibraryName()
	if libName == "" {
		libName = top.Name
	}
	r.enc.BeginLib(r.now)
	r.enc.Name(gds.LibName, libName, gds.MaxLibNameLength)
	r.enc.Units(UserUnitsPerDBUnit, MetersPerDBUnit)

	for _, cell := range r.order {
		if err := r.structure(cell, cell == top); err != nil {
			return nil, err
		}
		if err := r.enc.Err(); err != nil {
			return nil, err
		}
	}

	r.enc.Header(gds.EndLib)
	if err := r.enc.Close(); err != nil {
		return nil, err
	}

	for rt, n := range r.enc.Counts() {
		r.cfg.Metrics.record(rt.String(), n)
	}
	return &Result{
		Structures: len(r.order),
		Records:    r.enc.Records(),
		Dropped:    r.em.dropped,
		Renamed:    r.names.Renamed(),
		Blocks:     r.enc.Blocks(),
		Bytes:      r.enc.Len(),
		Digest:     r.enc.Sum64(),
	}, nil
}

// resolveLayers fills the layer cache for every technology layer.
func (r *run) resolveLayers() {
	valid := 0
	for _, l := range r.tech.Layers {
		if r.layers.Resolve(l).Valid() {
			valid++
		}
	}
	if valid == 0 {
		r.log.Warn("no technology layer has a GDS mapping",
			zap.String("technology", r.tech.Name), zap.String("foundry", r.cfg.Foundry))
	}
}

// collect fetches geometry depth-first and orders cells children first.
// Every instanced cell is named here, before any structure is written.
func (r *run) collect(cell *design.Cell) error {
	if _, ok := r.geometry[cell]; ok {
		return nil
	}
	g, err := r.src.Geometry(cell, design.GeometryOptions{MergeBoxes: r.cfg.MergeBoxes})
	if err != nil {
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Path(cell.LibraryName(), cell.Name).
			Cause(err).
			Detail("geometry source failed").
			Build()
	}
	if g == nil {
		g = &design.CellGeometry{}
	}
	r.geometry[cell] = g
	r.names.Assign(cell)

	for _, inst := range g.Instances {
		if inst.Proto == nil {
			continue
		}
		if err := r.collect(inst.Proto.Effective()); err != nil {
			return err
		}
	}
	r.order = append(r.order, cell)
	return nil
}

func (r *run) structure(cell *design.Cell, isTop bool) error {
	name := r.names.Assign(cell)
	g := r.geometry[cell]
	r.em.path = []string{cell.LibraryName(), cell.Name}

	r.enc.BeginStr(r.now)
	r.enc.Name(gds.StrName, name, r.cfg.MaxNameLength)

	for _, lp := range g.Layers {
		for _, p := range lp.Polygons {
			if err := r.em.polygon(lp.Layer, p); err != nil {
				return err
			}
		}
	}
	for _, inst := range g.Instances {
		if err := r.em.instance(inst); err != nil {
			return err
		}
	}
	if isTop {
		if err := r.em.exports(cell, r.cfg); err != nil {
			return err
		}
	}

	r.enc.Header(gds.EndStr)
	return nil
}
