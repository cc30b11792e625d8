package binary

import (
	"bytes"
	"testing"
)

func TestWriterBasic(t *testing.T) {
	w := NewWriter()
	if w.Len() != 0 {
		t.Errorf("initial Len: got %d, want 0", w.Len())
	}

	w.Byte(0x42)
	if w.Len() != 1 {
		t.Errorf("Len after Byte: got %d, want 1", w.Len())
	}

	w.WriteBytes([]byte{0x01, 0x02, 0x03})
	if w.Len() != 4 {
		t.Errorf("Len after WriteBytes: got %d, want 4", w.Len())
	}

	got := w.Bytes()
	want := []byte{0x42, 0x01, 0x02, 0x03}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes: got %v, want %v", got, want)
	}
}

func TestWriterWriteU32(t *testing.T) {
	tests := []struct {
		want  []byte
		value uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		w := NewWriter()
		w.WriteU32(tt.value)
		got := w.Bytes()
		if !bytes.Equal(got, tt.want) {
			t.Errorf("WriteU32(%d): got %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestWriterWriteName(t *testing.T) {
	w := NewWriter()
	w.WriteName("test")
	got := w.Bytes()
	want := []byte{0x04, 't', 'e', 's', 't'}
	if !bytes.Equal(got, want) {
		t.Errorf("WriteName: got %v, want %v", got, want)
	}
}

func TestWriterWriteU32LE(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(0x04030201)
	got := w.Bytes()
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(got, want) {
		t.Errorf("WriteU32LE: got %v, want %v", got, want)
	}
}

func TestWriterChaining(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(0x6d736100)
	w.WriteU32(1)
	w.WriteName("main")
	if got, want := w.Len(), 4+1+1+4; got != want {
		t.Errorf("Len after chained writes: got %d, want %d", got, want)
	}
}
