// Package gdsii writes circuit layouts as GDSII Stream Format libraries.
//
// A layout is a hierarchy of cells, each holding polygons on technology
// layers, instances of other cells, and named exports. The writer maps each
// technology layer to GDSII layer/datatype pairs, gives every cell a unique
// short structure name, and streams one structure per cell, children before
// parents, padded to whole 2048-byte tape blocks.
//
// # Architecture Overview
//
//	gdsii/               Root package with file-level helpers
//	├── gds/             Record encoder, GDSII reals and a record decoder
//	├── layermap/        Technology layer to GDS layer/datatype resolution
//	├── naming/          Unique, legal structure names for cells
//	├── writer/          Library orchestration, shapes, labels, config, metrics
//	├── design/          Cell hierarchy model and YAML design loader
//	├── errors/          Structured error types for diagnostics
//	└── cmd/gdswrite/    Command-line writer and record browser
//
// # Quick Start
//
// Write a design loaded from YAML:
//
//	d, err := design.Load("chip.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := gdsii.WriteFile("chip.gds", d.Top, nil, writer.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Structures, "structures")
//
// A path ending in .gz is written gzip-compressed.
//
// # Geometry
//
// Polygons reach the writer through a design.GeometrySource. The default,
// design.Direct, writes each cell's stored polygons unchanged; a source
// that flattens or merges shapes can be passed instead.
//
// # Thread Safety
//
// A writer.Writer holds only configuration and may run concurrent writes
// of designs that are not being modified. Each write owns its encoder,
// layer cache and name table.
package gdsii
