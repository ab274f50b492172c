package binary

import (
	"io"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

const (
	// BlockSize is the fixed output unit of a GDSII stream.
	BlockSize = 512

	// BlockGroup is the number of blocks the stream length is padded to.
	BlockGroup = 4
)

// BlockWriter buffers big-endian output into fixed 512-byte blocks.
//
// The first sink error is logged and latched; after that every write is a
// no-op and Err reports the failure.
type BlockWriter struct {
	sink   io.Writer
	log    *zap.Logger
	digest *xxhash.Digest
	err    error
	buf    [BlockSize]byte
	n      int
	blocks int
	closed bool
}

// NewBlockWriter creates a BlockWriter flushing to sink.
func NewBlockWriter(sink io.Writer, log *zap.Logger) *BlockWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &BlockWriter{sink: sink, log: log, digest: xxhash.New()}
}

// WriteByte appends a single byte.
func (w *BlockWriter) WriteByte(b byte) error {
	if w.err != nil || w.closed {
		return w.err
	}
	w.buf[w.n] = b
	w.n++
	if w.n == BlockSize {
		w.flush()
	}
	return w.err
}

// WriteBytes appends a byte slice.
func (w *BlockWriter) WriteBytes(data []byte) {
	for _, b := range data {
		if w.WriteByte(b) != nil {
			return
		}
	}
}

// WriteShort appends a big-endian 16-bit value.
func (w *BlockWriter) WriteShort(v uint16) {
	w.WriteByte(byte(v >> 8))
	w.WriteByte(byte(v))
}

// WriteInt appends a big-endian 32-bit value as two shorts, high half first.
func (w *BlockWriter) WriteInt(v int32) {
	u := uint32(v)
	w.WriteShort(uint16(u >> 16))
	w.WriteShort(uint16(u))
}

// WriteShorts appends each value as a big-endian short.
func (w *BlockWriter) WriteShorts(vs []uint16) {
	for _, v := range vs {
		w.WriteShort(v)
	}
}

func (w *BlockWriter) flush() {
	block := w.buf[:]
	if _, err := w.sink.Write(block); err != nil {
		w.err = err
		w.log.Error("gds: block write failed", zap.Int("block", w.blocks), zap.Error(err))
		return
	}
	w.digest.Write(block)
	w.blocks++
	w.n = 0
}

// Close zero-pads the partial final block and appends empty blocks until
// the block count is a multiple of BlockGroup. It does not close the sink.
func (w *BlockWriter) Close() error {
	if w.closed {
		return w.err
	}
	if w.err == nil && w.n > 0 {
		clear(w.buf[w.n:])
		w.flush()
	}
	for w.err == nil && w.blocks%BlockGroup != 0 {
		clear(w.buf[:])
		w.flush()
	}
	w.closed = true
	return w.err
}

// Err returns the latched sink error, if any.
func (w *BlockWriter) Err() error {
	return w.err
}

// Blocks returns the number of blocks flushed so far.
func (w *BlockWriter) Blocks() int {
	return w.blocks
}

// Len returns the number of bytes accepted, including the buffered tail.
func (w *BlockWriter) Len() int {
	return w.blocks*BlockSize + w.n
}

// Sum64 returns the xxhash64 digest of every flushed block.
func (w *BlockWriter) Sum64() uint64 {
	return w.digest.Sum64()
}
