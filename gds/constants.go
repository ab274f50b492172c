package gds

import "fmt"

// RecordType is the two-byte record tag: record number in the high byte,
// payload data type in the low byte.
type RecordType uint16

// Record types used by the writer and decoder.
const (
	Header       RecordType = 0x0002 // stream version
	BgnLib       RecordType = 0x0102 // library modification/access dates
	LibName      RecordType = 0x0206 // library name
	Units        RecordType = 0x0305 // user units and meters per database unit
	EndLib       RecordType = 0x0400 // end of library
	BgnStr       RecordType = 0x0502 // structure creation/modification dates
	StrName      RecordType = 0x0606 // structure name
	EndStr       RecordType = 0x0700 // end of structure
	Boundary     RecordType = 0x0800 // filled polygon element
	Path         RecordType = 0x0900 // wire element
	SRef         RecordType = 0x0A00 // structure reference
	ARef         RecordType = 0x0B00 // array reference
	Text         RecordType = 0x0C00 // text element
	Layer        RecordType = 0x0D02 // layer number
	DataType     RecordType = 0x0E02 // datatype number
	Width        RecordType = 0x0F03 // path width
	XY           RecordType = 0x1003 // coordinate list
	EndEl        RecordType = 0x1100 // end of element
	SName        RecordType = 0x1206 // referenced structure name
	ColRow       RecordType = 0x1302 // array dimensions
	TextType     RecordType = 0x1602 // text type number
	Presentation RecordType = 0x1701 // text font and justification
	String       RecordType = 0x1906 // text string
	STrans       RecordType = 0x1A01 // reflection / absolute flags
	Mag          RecordType = 0x1B05 // magnification
	Angle        RecordType = 0x1C05 // rotation in degrees
	PathType     RecordType = 0x2102 // path end style
	PropAttr     RecordType = 0x2B02 // property number
	PropValue    RecordType = 0x2C06 // property value
)

// Data type codes carried in the low byte of a RecordType.
const (
	DataNone   byte = 0x00
	DataBits   byte = 0x01
	DataInt16  byte = 0x02
	DataInt32  byte = 0x03
	DataReal64 byte = 0x05
	DataASCII  byte = 0x06
)

// Stream constants.
const (
	// StreamVersion is the value written in the HEADER record.
	StreamVersion = 3

	// MaxLibNameLength bounds the LIBNAME string.
	MaxLibNameLength = 256

	// MaxPolygonPoints is the largest point list written as one element.
	MaxPolygonPoints = 200

	// STransReflect is the STRANS bit for reflection about the X axis.
	STransReflect uint16 = 0x8000
)

// fixedLength maps record types to their total byte count when the
// payload size is fixed. Types not listed are 4-byte records with no payload
// unless written through a variable-length helper.
var fixedLength = map[RecordType]uint16{
	Header:       6,
	Layer:        6,
	DataType:     6,
	TextType:     6,
	STrans:       6,
	Presentation: 6,
	BgnStr:       28,
	BgnLib:       28,
	Units:        20,
}

var recordNames = map[RecordType]string{
	Header:       "HEADER",
	BgnLib:       "BGNLIB",
	LibName:      "LIBNAME",
	Units:        "UNITS",
	EndLib:       "ENDLIB",
	BgnStr:       "BGNSTR",
	StrName:      "STRNAME",
	EndStr:       "ENDSTR",
	Boundary:     "BOUNDARY",
	Path:         "PATH",
	SRef:         "SREF",
	ARef:         "AREF",
	Text:         "TEXT",
	Layer:        "LAYER",
	DataType:     "DATATYPE",
	Width:        "WIDTH",
	XY:           "XY",
	EndEl:        "ENDEL",
	SName:        "SNAME",
	ColRow:       "COLROW",
	TextType:     "TEXTTYPE",
	Presentation: "PRESENTATION",
	String:       "STRING",
	STrans:       "STRANS",
	Mag:          "MAG",
	Angle:        "ANGLE",
	PathType:     "PATHTYPE",
	PropAttr:     "PROPATTR",
	PropValue:    "PROPVALUE",
}

// Length returns the fixed record length for rt, or 4 for header-only records.
func (rt RecordType) Length() uint16 {
	if n, ok := fixedLength[rt]; ok {
		return n
	}
	return 4
}

// DataKind returns the payload data type code.
func (rt RecordType) DataKind() byte {
	return byte(rt)
}

func (rt RecordType) String() string {
	if name, ok := recordNames[rt]; ok {
		return name
	}
	return fmt.Sprintf("RECORD(0x%04X)", uint16(rt))
}
