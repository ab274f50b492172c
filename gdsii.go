package gdsii

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/wippyai/gdsii/design"
	"github.com/wippyai/gdsii/errors"
	"github.com/wippyai/gdsii/gds"
	"github.com/wippyai/gdsii/writer"
)

// GzipSuffix marks paths that are read and written gzip-compressed.
const GzipSuffix = ".gz"

// Write streams top to w using the cells' stored geometry.
func Write(w io.Writer, top *design.Cell, cfg writer.Config) (*writer.Result, error) {
	return writer.New(cfg).Write(w, top, nil)
}

// WriteFile writes top to path, compressing when path ends in .gz. The
// file is removed again if the write fails.
func WriteFile(path string, top *design.Cell, src design.GeometrySource, cfg writer.Config) (*writer.Result, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.IO("create "+path, err)
	}

	res, err := writeTo(f, path, top, src, cfg)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.IO("close "+path, cerr)
	}
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return res, nil
}

func writeTo(f *os.File, path string, top *design.Cell, src design.GeometrySource, cfg writer.Config) (*writer.Result, error) {
	bw := bufio.NewWriter(f)
	var sink io.Writer = bw
	var zw *gzip.Writer
	if strings.HasSuffix(path, GzipSuffix) {
		zw = gzip.NewWriter(bw)
		zw.Name = strings.TrimSuffix(filepath.Base(path), GzipSuffix)
		sink = zw
	}

	res, err := writer.New(cfg).Write(sink, top, src)
	if err != nil {
		return nil, err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return nil, errors.IO("compress "+path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, errors.IO("flush "+path, err)
	}
	return res, nil
}

// ReadFile reads and decodes a GDSII stream, decompressing .gz paths.
func ReadFile(path string) ([]gds.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IO("open "+path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, GzipSuffix) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "gzip header in "+path)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.IO("read "+path, err)
	}
	return gds.Decode(data)
}
