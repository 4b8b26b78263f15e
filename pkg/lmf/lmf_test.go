package lmf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testModel() *Model {
	return &Model{
		Dim:        4,
		Loss:       "softmax",
		WordNgrams: 2,
		Bucket:     100,
		MinN:       0,
		MaxN:       0,
		Tokens:     42,
		Entries: []Entry{
			{Text: "good", Count: 10},
			{Text: "bad", Count: 7},
			{Text: "__label__pos", Count: 6, Label: true},
			{Text: "__label__neg", Count: 5, Label: true},
		},
		Input: Matrix{
			Rows: 3, Cols: 4,
			Data: []float32{0.1, -0.2, 0.3, 0, 1, 2, 3, 4, -1, -2, -3, -4},
		},
		Output: Matrix{
			Rows: 2, Cols: 4,
			Data: []float32{0.5, 0.25, -0.5, 0, 0.125, 0, 0, 1},
		},
	}
}

func TestWriteOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.lmf")
	want := testModel()
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got.Dim != want.Dim || got.Loss != want.Loss || got.Tokens != want.Tokens {
		t.Fatalf("header mismatch: %+v", got)
	}
	if got.WordNgrams != want.WordNgrams || got.Bucket != want.Bucket ||
		got.MinN != want.MinN || got.MaxN != want.MaxN {
		t.Fatalf("tokenization settings mismatch: %+v", got)
	}
	if len(got.Entries) != len(want.Entries) {
		t.Fatalf("entries: got %d want %d", len(got.Entries), len(want.Entries))
	}
	for i := range want.Entries {
		if got.Entries[i] != want.Entries[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, got.Entries[i], want.Entries[i])
		}
	}
	for name, pair := range map[string][2]Matrix{
		"input":  {got.Input, want.Input},
		"output": {got.Output, want.Output},
	} {
		g, w := pair[0], pair[1]
		if g.Rows != w.Rows || g.Cols != w.Cols || len(g.Data) != len(w.Data) {
			t.Fatalf("%s matrix shape mismatch", name)
		}
		for i := range w.Data {
			if g.Data[i] != w.Data[i] {
				t.Fatalf("%s matrix data[%d]: got %v want %v", name, i, g.Data[i], w.Data[i])
			}
		}
	}
}

func TestReadFromReaderAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.lmf")
	if err := WriteFile(path, testModel()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	stat, _ := f.Stat()
	m, err := Read(f, stat.Size())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.Dim != 4 || len(m.Entries) != 4 {
		t.Fatalf("decoded model wrong: %+v", m)
	}
}

func encodeToBytes(t *testing.T, m *Model) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.lmf")
	if err := WriteFile(path, m); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return data
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := encodeToBytes(t, testModel())
	copy(data, "NOPE")
	if _, err := Decode(data); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("got %v, want ErrInvalidMagic", err)
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	data := encodeToBytes(t, testModel())
	data[4] = 99
	if _, err := Decode(data); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("got %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecodeRejectsTruncation(t *testing.T) {
	data := encodeToBytes(t, testModel())
	for _, cut := range []int{5, 20, len(data) / 2, len(data) - 1} {
		if _, err := Decode(data[:cut]); err == nil {
			t.Fatalf("truncation at %d not detected", cut)
		}
	}
}

func TestDecodeRejectsTrailingGarbage(t *testing.T) {
	data := encodeToBytes(t, testModel())
	data = append(data, 0xFF)
	if _, err := Decode(data); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("got %v, want ErrCorruptFile", err)
	}
}

func TestDecodeRejectsEmpty(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("got %v, want ErrCorruptFile", err)
	}
	if _, err := Decode(bytes.Repeat([]byte{0}, 3)); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("got %v, want ErrCorruptFile", err)
	}
}
