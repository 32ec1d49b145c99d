package marktree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 reports invalid UTF-8 input.
	ErrInvalidUTF8 = errors.New("invalid utf-8 input")
	// ErrBinaryInput reports input that appears to be binary.
	ErrBinaryInput = errors.New("binary input detected")
)

const (
	minBinarySample = 64
	maxControlPct   = 2
)

// ValidateInput returns an error if the input is not valid UTF-8 or appears binary.
func ValidateInput(src []byte) error {
	var v validator
	rest, err := v.addBytes(src)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return ErrInvalidUTF8
	}
	return v.finish()
}

var readerPool = sync.Pool{
	New: func() any {
		return bufio.NewReaderSize(nil, 4096)
	},
}

// readSource reads r to the end, validating as it goes so binary streams
// are rejected without being buffered whole.
func readSource(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, ErrNilReader
	}
	br := readerPool.Get().(*bufio.Reader)
	br.Reset(r)
	defer func() {
		br.Reset(nil)
		readerPool.Put(br)
	}()

	var (
		v    validator
		out  []byte
		tail []byte
		buf  [4096]byte
	)
	for {
		n, err := br.Read(buf[:])
		if n > 0 {
			out = append(out, buf[:n]...)
			tail = append(tail, buf[:n]...)
			rest, verr := v.addBytes(tail)
			if verr != nil {
				return nil, verr
			}
			tail = append(tail[:0], rest...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
	}
	if len(tail) > 0 {
		return nil, ErrInvalidUTF8
	}
	if err := v.finish(); err != nil {
		return nil, err
	}
	return out, nil
}

// validator checks a byte stream incrementally. Input is binary when it
// holds a NUL or when at least maxControlPct percent of a sample of
// minBinarySample bytes or more are control characters.
type validator struct {
	total   int
	control int
}

// addBytes consumes every complete rune in b and returns the incomplete
// remainder.
func (v *validator) addBytes(b []byte) ([]byte, error) {
	i := 0
	for i < len(b) {
		if !utf8.FullRune(b[i:]) {
			break
		}
		r, size := utf8.DecodeRune(b[i:])
		if err := v.addRune(r, size); err != nil {
			return nil, err
		}
		i += size
	}
	return b[i:], nil
}

func (v *validator) addRune(r rune, size int) error {
	if r == utf8.RuneError && size == 1 {
		return ErrInvalidUTF8
	}
	if r == 0 {
		return ErrBinaryInput
	}
	v.total += size
	if isControlRune(r) {
		v.control++
		if v.tooManyControls() {
			return ErrBinaryInput
		}
	}
	return nil
}

// finish applies the control ratio to the complete input; a short run of
// control bytes may only cross the threshold once the total is known.
func (v *validator) finish() error {
	if v.tooManyControls() {
		return ErrBinaryInput
	}
	return nil
}

func (v *validator) tooManyControls() bool {
	return v.total >= minBinarySample && v.control*100 >= v.total*maxControlPct
}

func isControlRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return false
	}
	if r < 0x20 || r == 0x7F {
		return true
	}
	return false
}
