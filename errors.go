package marktree

import (
	"errors"
	"fmt"
)

var (
	// ErrNilReader reports a request without a source reader.
	ErrNilReader = errors.New("reader is nil")
	// ErrNoLinks reports an inline lexer constructed without a link table.
	ErrNoLinks = errors.New("inline lexer requires a link table")
	// ErrInfiniteLoop reports input no grammar rule could consume.
	ErrInfiniteLoop = errors.New("no grammar rule matched")
	// ErrFrontMatter reports a front matter block that could not be decoded.
	ErrFrontMatter = errors.New("invalid front matter")
)

// LoopError carries the rune a lexer stalled on.
type LoopError struct {
	Stage string
	Char  rune
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("%s: infinite loop on char %q (U+%04X)", e.Stage, e.Char, e.Char)
}

func (e *LoopError) Unwrap() error {
	return ErrInfiniteLoop
}

// ErrUnbalanced reports a token stream whose container start and end
// tokens do not pair up.
var ErrUnbalanced = errors.New("unbalanced container tokens")
