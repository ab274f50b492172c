// Package gds encodes GDSII stream records.
//
// A stream is a sequence of records, each a big-endian 16-bit length
// (including the 4-byte header), a 16-bit record type and a payload whose
// length is always even. Output is buffered into 512-byte blocks and the
// block count is padded to a multiple of four when the encoder is closed.
//
// # Encoding
//
//	enc := gds.NewEncoder(w, gds.EncoderOptions{})
//	enc.BeginLib(time.Now())
//	enc.Name(gds.LibName, "mylib", gds.MaxLibNameLength)
//	enc.Units(1e-3, 1e-9)
//	enc.BeginStr(time.Now())
//	enc.Name(gds.StrName, "TOP", 32)
//	enc.Header(gds.EndStr)
//	enc.Header(gds.EndLib)
//	err := enc.Close()
//
// # Reals
//
// GDSII stores floating point values as excess-64, base-16 numbers with a
// 56-bit fraction. EncodeReal and DecodeReal convert between that form and
// float64.
//
// # Inspection
//
// Decode splits a finished stream back into records for dumps and tests.
// It does not rebuild a design.
package gds
