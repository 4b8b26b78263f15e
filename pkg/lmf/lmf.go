// Package lmf implements the loam model file format: a little-endian binary
// container holding the tokenization settings, the vocabulary with frequency
// counts, and the two embedding matrices of a trained classifier.
//
// Layout, in order: a 4-byte magic and uint32 format version, the fixed
// header, the vocabulary entries (length-prefixed UTF-8 text, int64 count,
// uint8 kind), then the input and output matrices as int64 row/column counts
// followed by row-major float32 data.
package lmf

import (
	"encoding/binary"
	"math"
)

// MagicLMF identifies an LMF file.
const MagicLMF = "LMF1"

// CurrentVersion is the format version this package reads and writes.
const CurrentVersion = uint32(1)

// Entry is one serialized vocabulary item.
type Entry struct {
	Text  string
	Count int64
	// Label marks label entries; everything else is a word.
	Label bool
}

// Matrix is a serialized row-major float32 matrix.
type Matrix struct {
	Rows, Cols int64
	Data       []float32
}

// Model is the deserialized content of an LMF file.
type Model struct {
	// Dim is the embedding dimension.
	Dim int32
	// Loss names the output-layer strategy the model was trained with
	// ("softmax", "hs", "ns").
	Loss string
	// WordNgrams, Bucket, MinN and MaxN reproduce the tokenization settings
	// the dictionary was finalized with.
	WordNgrams int32
	Bucket     int32
	MinN       int32
	MaxN       int32
	// Tokens is the corpus token total the vocabulary was counted over.
	Tokens int64

	Entries []Entry
	Input   Matrix
	Output  Matrix
}

var byteOrder = binary.LittleEndian

// cursor is a bounds-checked reader over a decoded byte buffer.  Every read
// fails sticky once the buffer is exhausted, so decode paths can check the
// error once at the end.
type cursor struct {
	data []byte
	off  int
	err  error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.off+n > len(c.data) || c.off+n < c.off {
		c.err = ErrCorruptFile
		return nil
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) u8() uint8 {
	b := c.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *cursor) u32() uint32 {
	b := c.take(4)
	if b == nil {
		return 0
	}
	return byteOrder.Uint32(b)
}

func (c *cursor) i32() int32 { return int32(c.u32()) }

func (c *cursor) i64() int64 {
	b := c.take(8)
	if b == nil {
		return 0
	}
	return int64(byteOrder.Uint64(b))
}

func (c *cursor) str() string {
	n := c.u32()
	b := c.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}

func (c *cursor) f32s(n int) []float32 {
	b := c.take(n * 4)
	if b == nil {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(byteOrder.Uint32(b[i*4:]))
	}
	return out
}
