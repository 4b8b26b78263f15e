package lmf

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// maxVocabSize bounds the decoded vocabulary so a corrupt length field cannot
// drive a huge allocation before the bounds checks catch it.
const maxVocabSize = 1 << 28

// Open reads and decodes an LMF file.  The file is mapped read-only where
// mmap is available and decoded out of the mapping, which is released before
// returning; if mmap fails the file is read with ReadAt instead.
func Open(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < 0 {
		return nil, ErrCorruptFile
	}
	if size64 > int64(int(^uint(0)>>1)) {
		// cannot index this file safely as []byte on this architecture.
		return nil, ErrCorruptFile
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		m, decodeErr := Decode(data)
		_ = unix.Munmap(data)
		return m, decodeErr
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Read decodes an LMF model from a random-access reader without mmap.
func Read(r io.ReaderAt, size int64) (*Model, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// Decode parses a complete LMF file image.  The returned Model owns copies of
// everything it needs; data may be released afterwards.
func Decode(data []byte) (*Model, error) {
	c := &cursor{data: data}

	magic := c.take(4)
	if c.err != nil {
		return nil, ErrCorruptFile
	}
	if string(magic) != MagicLMF {
		return nil, ErrInvalidMagic
	}
	if v := c.u32(); c.err == nil && v != CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	m := &Model{}
	m.Dim = c.i32()
	m.Loss = c.str()
	m.WordNgrams = c.i32()
	m.Bucket = c.i32()
	m.MinN = c.i32()
	m.MaxN = c.i32()
	m.Tokens = c.i64()

	nentries := c.i32()
	if c.err != nil {
		return nil, c.err
	}
	if nentries < 0 || nentries > maxVocabSize {
		return nil, ErrCorruptFile
	}
	m.Entries = make([]Entry, 0, nentries)
	for i := int32(0); i < nentries && c.err == nil; i++ {
		e := Entry{Text: c.str(), Count: c.i64()}
		e.Label = c.u8() != 0
		m.Entries = append(m.Entries, e)
	}

	var err error
	m.Input, err = decodeMatrix(c)
	if err != nil {
		return nil, err
	}
	m.Output, err = decodeMatrix(c)
	if err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}
	if c.off != len(data) {
		return nil, ErrCorruptFile
	}
	if m.Dim <= 0 || m.Input.Cols != int64(m.Dim) || m.Output.Cols != int64(m.Dim) {
		return nil, ErrCorruptFile
	}
	return m, nil
}

func decodeMatrix(c *cursor) (Matrix, error) {
	rows := c.i64()
	cols := c.i64()
	if c.err != nil {
		return Matrix{}, c.err
	}
	if rows < 0 || cols < 0 {
		return Matrix{}, ErrCorruptFile
	}
	n := rows * cols
	if cols != 0 && n/cols != rows {
		return Matrix{}, ErrCorruptFile
	}
	if n*4 > int64(len(c.data)-c.off) {
		return Matrix{}, ErrCorruptFile
	}
	data := c.f32s(int(n))
	if c.err != nil {
		return Matrix{}, c.err
	}
	return Matrix{Rows: rows, Cols: cols, Data: data}, nil
}
