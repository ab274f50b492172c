package gdsii

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wippyai/gdsii/design"
	"github.com/wippyai/gdsii/gds"
	"github.com/wippyai/gdsii/writer"
)

func sampleTop() *design.Cell {
	metal := &design.Layer{Name: "metal1"}
	tech := &design.Technology{
		Name:   "t",
		Scale:  1,
		Layers: []*design.Layer{metal},
		Foundries: []*design.Foundry{{
			Name:   "f",
			Layers: map[string]design.LayerMapping{"metal1": {GDS: "5"}},
		}},
	}
	lib := design.NewLibrary("lib")
	return lib.AddCell(&design.Cell{
		Name: "top",
		Tech: tech,
		Polygons: []design.Polygon{{
			Layer:  metal,
			Style:  design.StyleBox,
			Points: []design.Point{{X: 0, Y: 0}, {X: 10, Y: 10}},
		}},
	})
}

func sampleConfig() writer.Config {
	cfg := writer.DefaultConfig()
	cfg.Now = func() time.Time { return time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC) }
	return cfg
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	var plain bytes.Buffer
	want, err := Write(&plain, sampleTop(), sampleConfig())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"out.gds", "out.gds.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			res, err := WriteFile(path, sampleTop(), nil, sampleConfig())
			if err != nil {
				t.Fatal(err)
			}
			if res.Digest != want.Digest {
				t.Errorf("digest = %x, want %x", res.Digest, want.Digest)
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			compressed := filepath.Ext(name) == GzipSuffix
			if compressed == bytes.Equal(raw, plain.Bytes()) {
				t.Errorf("file content compressed=%v does not match plain output", compressed)
			}

			recs, err := ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if recs[len(recs)-1].Type != gds.EndLib {
				t.Errorf("last record = %s", recs[len(recs)-1].Type)
			}
			if len(recs) != res.Records {
				t.Errorf("decoded %d records, wrote %d", len(recs), res.Records)
			}
		})
	}
}

func TestWriteFileRemovesOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gds")
	if _, err := WriteFile(path, nil, nil, sampleConfig()); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file left behind: %v", err)
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadFile(filepath.Join(dir, "missing.gds")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.gds.gz")
	if err := os.WriteFile(bad, []byte("not gzip"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(bad); err == nil {
		t.Error("expected error for corrupt gzip")
	}
}
