package gds

import (
	"io"
	"maps"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/gdsii/errors"
	"github.com/wippyai/gdsii/gds/internal/binary"
)

// maxRecordLength is the largest value the 16-bit length field can carry.
const maxRecordLength = 0xFFFF

// Point is a coordinate in database units.
type Point struct {
	X, Y int32
}

// EncoderOptions configures an Encoder.
type EncoderOptions struct {
	// Logger receives sink failures. Defaults to the package logger.
	Logger *zap.Logger

	// ForceUpper upper-cases every string written through Name.
	ForceUpper bool
}

// Encoder writes length-prefixed GDSII records into 512-byte blocks.
// An Encoder belongs to one stream and is not safe for concurrent use.
type Encoder struct {
	w      *binary.BlockWriter
	log    *zap.Logger
	counts map[RecordType]int
	upper  bool
}

// NewEncoder creates an Encoder writing to sink.
func NewEncoder(sink io.Writer, opts EncoderOptions) *Encoder {
	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	return &Encoder{
		w:      binary.NewBlockWriter(sink, log),
		log:    log,
		counts: make(map[RecordType]int),
		upper:  opts.ForceUpper,
	}
}

func (e *Encoder) begin(length uint16, rt RecordType) {
	e.w.WriteShort(length)
	e.w.WriteShort(uint16(rt))
	e.counts[rt]++
}

// Header writes a record whose length comes from the fixed-length table.
// Six-byte records carry one short parameter (zero when omitted); longer
// fixed records expect their payload from Date or real writes that follow.
func (e *Encoder) Header(rt RecordType, param ...uint16) {
	length := rt.Length()
	e.begin(length, rt)
	if length == 6 {
		var v uint16
		if len(param) > 0 {
			v = param[0]
		}
		e.w.WriteShort(v)
	}
}

// Name writes a string record truncated to maxLen bytes and padded to even
// length. Truncation never splits a UTF-8 sequence.
func (e *Encoder) Name(rt RecordType, s string, maxLen int) {
	if e.upper {
		s = strings.ToUpper(s)
	}
	if maxLen > 0 && len(s) > maxLen {
		for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
			maxLen--
		}
		s = s[:maxLen]
	}
	n := len(s)
	padded := n + n%2
	e.begin(uint16(4+padded), rt)
	e.w.WriteBytes([]byte(s))
	if padded != n {
		e.w.WriteByte(0)
	}
}

// Date writes the six-short timestamp used by BGNLIB and BGNSTR.
func (e *Encoder) Date(t time.Time) {
	e.w.WriteShorts([]uint16{
		uint16(t.Year() - 1900),
		uint16(t.Month() - 1),
		uint16(t.Day()),
		uint16(t.Hour()),
		uint16(t.Minute()),
		uint16(t.Second()),
	})
}

// BeginLib writes HEADER and BGNLIB with both dates set to t.
func (e *Encoder) BeginLib(t time.Time) {
	e.Header(Header, StreamVersion)
	e.Header(BgnLib)
	e.Date(t)
	e.Date(t)
}

// BeginStr writes BGNSTR with both dates set to t.
func (e *Encoder) BeginStr(t time.Time) {
	e.Header(BgnStr)
	e.Date(t)
	e.Date(t)
}

// Units writes the UNITS record.
func (e *Encoder) Units(userPerDB, metersPerDB float64) {
	e.Header(Units)
	e.writeReal(userPerDB)
	e.writeReal(metersPerDB)
}

// Real writes a 12-byte record holding one GDSII real.
func (e *Encoder) Real(rt RecordType, v float64) {
	e.begin(12, rt)
	e.writeReal(v)
}

// Angle writes an ANGLE record from tenths of a degree.
func (e *Encoder) Angle(tenths int) {
	e.Real(Angle, float64(tenths)/10)
}

// Mag writes a MAG record.
func (e *Encoder) Mag(scale float64) {
	e.Real(Mag, scale)
}

// Int32 writes an 8-byte record holding one signed 32-bit value.
func (e *Encoder) Int32(rt RecordType, v int32) {
	e.begin(8, rt)
	e.w.WriteInt(v)
}

// XY writes a coordinate list.
func (e *Encoder) XY(pts []Point) error {
	length := 4 + 8*len(pts)
	if length > maxRecordLength {
		return errors.New(errors.PhaseEncode, errors.KindOverflow).
			Record(XY.String()).
			Value(len(pts)).
			Detail("%d points exceed the record length limit", len(pts)).
			Build()
	}
	e.begin(uint16(length), XY)
	for _, p := range pts {
		e.w.WriteInt(p.X)
		e.w.WriteInt(p.Y)
	}
	return nil
}

func (e *Encoder) writeReal(v float64) {
	b, ok := EncodeRealChecked(v)
	if !ok {
		e.log.Warn("gds: real out of range, clamped",
			zap.Float64("value", v),
			zap.Binary("encoded", b[:]))
	}
	e.w.WriteBytes(b[:])
}

// Close pads the stream to its block boundary.
func (e *Encoder) Close() error {
	if err := e.w.Close(); err != nil {
		return errors.IO("close stream", err)
	}
	return nil
}

// Err returns the first sink failure, if any.
func (e *Encoder) Err() error {
	if err := e.w.Err(); err != nil {
		return errors.IO("write stream", err)
	}
	return nil
}

// Records returns the total number of records written.
func (e *Encoder) Records() int {
	n := 0
	for _, c := range e.counts {
		n += c
	}
	return n
}

// Counts returns a copy of the per-type record counts.
func (e *Encoder) Counts() map[RecordType]int {
	return maps.Clone(e.counts)
}

// Count returns how many records of type rt were written.
func (e *Encoder) Count(rt RecordType) int {
	return e.counts[rt]
}

// Blocks returns the number of 512-byte blocks flushed.
func (e *Encoder) Blocks() int {
	return e.w.Blocks()
}

// Len returns the number of bytes accepted so far.
func (e *Encoder) Len() int {
	return e.w.Len()
}

// Sum64 returns the xxhash64 digest of the flushed stream.
func (e *Encoder) Sum64() uint64 {
	return e.w.Sum64()
}
