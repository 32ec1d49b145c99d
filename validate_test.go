package marktree

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestValidateInputRejectsInvalidUTF8(t *testing.T) {
	data := []byte{0xff, 0xfe, 0xfd}
	if err := ValidateInput(data); err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestValidateInputRejectsBinary(t *testing.T) {
	data := append([]byte("hello"), 0x00)
	if err := ValidateInput(data); err != ErrBinaryInput {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
}

func TestReadSourceAcceptsSplitRunes(t *testing.T) {
	src := strings.Repeat("héllo wörld ☃\n", 50)
	got, err := readSource(iotest.OneByteReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != src {
		t.Fatalf("source mismatch: got %d bytes, want %d", len(got), len(src))
	}
}

func TestReadSourceRejectsBinary(t *testing.T) {
	data := bytes.Repeat([]byte{0x01, 'a'}, 64)
	if _, err := readSource(bytes.NewReader(data)); !errors.Is(err, ErrBinaryInput) {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
}

func TestReadSourceRejectsTruncatedRune(t *testing.T) {
	data := []byte("ok \xe2\x98")
	if _, err := readSource(bytes.NewReader(data)); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestReadSourceNilReader(t *testing.T) {
	if _, err := readSource(nil); !errors.Is(err, ErrNilReader) {
		t.Fatalf("expected ErrNilReader, got %v", err)
	}
}
