package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)
	fr := NewFrameReader(&buf)

	payloads := [][]byte{
		[]byte("first"),
		[]byte{0x00},
		bytes.Repeat([]byte{0xab}, 4096),
	}
	for _, p := range payloads {
		if err := fw.WriteFrame(p); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	for i, want := range payloads {
		got, err := fr.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %q, want %q", i, got, want)
		}
	}
}

func TestWriteFrameRejectsEmpty(t *testing.T) {
	fw := NewFrameWriter(&bytes.Buffer{})
	if err := fw.WriteFrame(nil); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("error = %v, want ErrMessageEmpty", err)
	}
}

func TestWriteFrameRejectsOversized(t *testing.T) {
	fw := NewFrameWriter(&bytes.Buffer{})
	oversized := make([]byte, DefaultMaxMessageSize+1)
	if err := fw.WriteFrame(oversized); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("error = %v, want ErrMessageTooLarge", err)
	}
}

func TestReadFrameRejectsOversizedPrefix(t *testing.T) {
	var buf bytes.Buffer
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], DefaultMaxMessageSize+1)
	buf.Write(prefix[:])

	fr := NewFrameReader(&buf)
	if _, err := fr.ReadFrame(); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("error = %v, want ErrMessageTooLarge", err)
	}
}

func TestReadFrameTruncated(t *testing.T) {
	var buf bytes.Buffer
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], 100)
	buf.Write(prefix[:])
	buf.Write([]byte("short"))

	fr := NewFrameReader(&buf)
	if _, err := fr.ReadFrame(); !errors.Is(err, ErrFrameTruncated) {
		t.Errorf("error = %v, want ErrFrameTruncated", err)
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	fr := NewFrameReader(&bytes.Buffer{})
	if _, err := fr.ReadFrame(); err != io.EOF {
		t.Errorf("error = %v, want io.EOF", err)
	}
}
