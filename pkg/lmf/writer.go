package lmf

import (
	"bufio"
	"errors"
	"math"
	"os"
)

// WriteFile encodes the model and writes it atomically-enough for a model
// artifact: into the target path via a buffered writer, synced before close.
func WriteFile(path string, m *Model) error {
	if m == nil {
		return errors.New("lmf: nil model")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriterSize(f, 1<<20)

	enc := &encoder{w: w}
	enc.bytes([]byte(MagicLMF))
	enc.u32(CurrentVersion)
	enc.i32(m.Dim)
	enc.str(m.Loss)
	enc.i32(m.WordNgrams)
	enc.i32(m.Bucket)
	enc.i32(m.MinN)
	enc.i32(m.MaxN)
	enc.i64(m.Tokens)

	enc.i32(int32(len(m.Entries)))
	for i := range m.Entries {
		e := &m.Entries[i]
		enc.str(e.Text)
		enc.i64(e.Count)
		if e.Label {
			enc.u8(1)
		} else {
			enc.u8(0)
		}
	}
	enc.matrix(&m.Input)
	enc.matrix(&m.Output)

	if enc.err != nil {
		_ = f.Close()
		return enc.err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

type encoder struct {
	w   *bufio.Writer
	err error
	buf [8]byte
}

func (e *encoder) bytes(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) u8(v uint8) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(v)
}

func (e *encoder) u32(v uint32) {
	byteOrder.PutUint32(e.buf[:4], v)
	e.bytes(e.buf[:4])
}

func (e *encoder) i32(v int32) { e.u32(uint32(v)) }

func (e *encoder) i64(v int64) {
	byteOrder.PutUint64(e.buf[:8], uint64(v))
	e.bytes(e.buf[:8])
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *encoder) matrix(m *Matrix) {
	if e.err == nil && int64(len(m.Data)) != m.Rows*m.Cols {
		e.err = errors.New("lmf: matrix data length mismatch")
		return
	}
	e.i64(m.Rows)
	e.i64(m.Cols)
	for _, v := range m.Data {
		e.u32(math.Float32bits(v))
	}
}
