package gds

import (
	"bytes"
	"errors"
	"testing"
	"time"

	gdserrors "github.com/wippyai/gdsii/errors"
)

func TestDecodeStream(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, EncoderOptions{})
	ts := time.Date(2001, time.January, 2, 3, 4, 5, 0, time.UTC)
	e.BeginLib(ts)
	e.Name(LibName, "LIB", MaxLibNameLength)
	e.Units(1e-3, 1e-9)
	e.BeginStr(ts)
	e.Name(StrName, "TOP", 32)
	e.Header(Boundary)
	e.Header(Layer, 5)
	e.Header(DataType, 0)
	if err := e.XY([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}); err != nil {
		t.Fatal(err)
	}
	e.Header(EndEl)
	e.Header(EndStr)
	e.Header(EndLib)
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	records, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	wantTypes := []RecordType{Header, BgnLib, LibName, Units, BgnStr, StrName, Boundary, Layer, DataType, XY, EndEl, EndStr, EndLib}
	if len(records) != len(wantTypes) {
		t.Fatalf("records: got %d, want %d", len(records), len(wantTypes))
	}
	for i, rt := range wantTypes {
		if records[i].Type != rt {
			t.Errorf("record %d: got %s, want %s", i, records[i].Type, rt)
		}
	}

	if v := records[0].Shorts(); len(v) != 1 || v[0] != StreamVersion {
		t.Errorf("HEADER payload: %v", v)
	}
	if d := records[1].Shorts(); len(d) != 12 || d[0] != 101 || d[1] != 0 || d[2] != 2 {
		t.Errorf("BGNLIB dates: %v", d)
	}
	if s := records[2].Text(); s != "LIB" {
		t.Errorf("LIBNAME: %q", s)
	}
	if u := records[3].Reals(); len(u) != 2 || u[0] != 1e-3 || u[1] != 1e-9 {
		t.Errorf("UNITS: %v", u)
	}
	pts := records[9].Points()
	if len(pts) != 5 || pts[2] != (Point{10, 10}) {
		t.Errorf("XY: %v", pts)
	}
	if records[6].Offset != 6+28+8+20+28+8 {
		t.Errorf("BOUNDARY offset: %d", records[6].Offset)
	}
}

func TestRecordString(t *testing.T) {
	tests := []struct {
		rec  Record
		want string
	}{
		{Record{Type: EndEl}, "ENDEL"},
		{Record{Type: Layer, Data: []byte{0x00, 0x05}}, "LAYER 5"},
		{Record{Type: STrans, Data: []byte{0x80, 0x00}}, "STRANS 0x8000"},
		{Record{Type: StrName, Data: []byte{'I', 'N', 'V', 0}}, `STRNAME "INV"`},
		{Record{Type: XY, Data: []byte{0, 0, 0, 1, 0xFF, 0xFF, 0xFF, 0xFE}}, "XY (1,-2)"},
		{Record{Type: Width, Data: []byte{0, 0, 0, 20}}, "WIDTH 20"},
		{Record{Type: Mag, Data: []byte{0x40, 0x80, 0, 0, 0, 0, 0, 0}}, "MAG 0.5"},
	}
	for _, tt := range tests {
		if got := tt.rec.String(); got != tt.want {
			t.Errorf("String(): got %q, want %q", got, tt.want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind gdserrors.Kind
	}{
		{"no endlib", []byte{0x00, 0x04, 0x07, 0x00}, gdserrors.KindInvalidData},
		{"short header", []byte{0x00, 0x04, 0x07}, gdserrors.KindTruncated},
		{"bad length", []byte{0x00, 0x03, 0x07, 0x00}, gdserrors.KindInvalidData},
		{"truncated payload", []byte{0x00, 0x08, 0x06, 0x06, 'A'}, gdserrors.KindTruncated},
		{"garbage after endlib", []byte{0x00, 0x04, 0x04, 0x00, 0x01}, gdserrors.KindInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			var gerr *gdserrors.Error
			if !errors.As(err, &gerr) {
				t.Fatalf("expected structured error, got %v", err)
			}
			if gerr.Phase != gdserrors.PhaseDecode || gerr.Kind != tt.kind {
				t.Errorf("got %s/%s, want decode/%s", gerr.Phase, gerr.Kind, tt.kind)
			}
		})
	}
}
