package gds

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/gdsii/errors"
	gdsbin "github.com/wippyai/gdsii/gds/internal/binary"
)

// Record is one decoded stream record.
type Record struct {
	Data   []byte
	Offset int
	Type   RecordType
}

// Decode splits a stream into records, stopping after ENDLIB. Bytes after
// ENDLIB must be zero block padding.
func Decode(data []byte) ([]Record, error) {
	r := gdsbin.NewReader(data)
	var records []Record
	for r.Remaining() > 0 {
		off := r.Position()
		if r.Remaining() < 4 {
			return records, errors.Truncated(errors.PhaseDecode, off, 4, r.Remaining())
		}
		length, _ := r.ReadShort()
		tag, _ := r.ReadShort()
		if length < 4 || length%2 != 0 {
			return records, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Record(RecordType(tag).String()).
				Value(off).
				Detail("bad record length %d at offset %d", length, off).
				Build()
		}
		payload, err := r.ReadBytes(int(length) - 4)
		if err != nil {
			return records, errors.Truncated(errors.PhaseDecode, off, int(length), r.Remaining()+4)
		}
		rec := Record{Offset: off, Type: RecordType(tag), Data: payload}
		records = append(records, rec)
		if rec.Type == EndLib {
			if !r.AllZero() {
				return records, errors.InvalidData(errors.PhaseDecode, nil, "non-zero bytes after ENDLIB")
			}
			return records, nil
		}
	}
	return records, errors.InvalidData(errors.PhaseDecode, nil, "stream ends without ENDLIB")
}

// Shorts returns the payload as big-endian 16-bit values.
func (r Record) Shorts() []uint16 {
	out := make([]uint16, len(r.Data)/2)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(r.Data[2*i:])
	}
	return out
}

// Ints returns the payload as big-endian signed 32-bit values.
func (r Record) Ints() []int32 {
	out := make([]int32, len(r.Data)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(r.Data[4*i:]))
	}
	return out
}

// Points returns an XY payload as coordinate pairs.
func (r Record) Points() []Point {
	ints := r.Ints()
	out := make([]Point, len(ints)/2)
	for i := range out {
		out[i] = Point{X: ints[2*i], Y: ints[2*i+1]}
	}
	return out
}

// Reals returns the payload as GDSII reals.
func (r Record) Reals() []float64 {
	out := make([]float64, len(r.Data)/8)
	for i := range out {
		var b [8]byte
		copy(b[:], r.Data[8*i:])
		out[i] = DecodeReal(b)
	}
	return out
}

// Text returns an ASCII payload without its zero padding.
func (r Record) Text() string {
	return strings.TrimRight(string(r.Data), "\x00")
}

// String formats the record the way a stream dump prints it.
func (r Record) String() string {
	var b strings.Builder
	b.WriteString(r.Type.String())
	if len(r.Data) == 0 {
		return b.String()
	}
	b.WriteByte(' ')
	switch r.Type.DataKind() {
	case DataASCII:
		b.WriteString(strconv.Quote(r.Text()))
	case DataInt16:
		writeList(&b, r.Shorts(), func(v uint16) string { return strconv.Itoa(int(int16(v))) })
	case DataBits:
		writeList(&b, r.Shorts(), func(v uint16) string { return fmt.Sprintf("0x%04X", v) })
	case DataInt32:
		if r.Type == XY {
			writeList(&b, r.Points(), func(p Point) string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) })
		} else {
			writeList(&b, r.Ints(), func(v int32) string { return strconv.Itoa(int(v)) })
		}
	case DataReal64:
		writeList(&b, r.Reals(), func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) })
	default:
		fmt.Fprintf(&b, "% x", r.Data)
	}
	return b.String()
}

func writeList[T any](b *strings.Builder, vs []T, format func(T) string) {
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(format(v))
	}
}
