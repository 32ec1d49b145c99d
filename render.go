package marktree

import (
	"fmt"
	"io"
)

// RenderRequest configures Render.
type RenderRequest struct {
	Reader  io.Reader
	Writer  io.Writer
	Width   int
	Theme   Theme
	Options []Option
}

// Render reads Markdown from a reader and writes styled terminal text.
// Width 0 disables wrapping.
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("render: %w", ErrNilReader)
	}
	if req.Writer == nil {
		return fmt.Errorf("render: writer is nil")
	}
	r := NewANSIRenderer(req.Theme, req.Width, req.Options...)
	o := r.options()

	var blocks []string
	src, err := readSource(req.Reader)
	if err != nil {
		blocks, err = recoverWith[string](r, o, err)
	} else {
		blocks, err = parse(string(src), r, o)
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if _, err := io.WriteString(req.Writer, r.Layout(blocks)); err != nil {
		return fmt.Errorf("render: write: %w", err)
	}
	return nil
}

// RenderString renders src as styled terminal text.
func RenderString(src string, width int, theme Theme, opts ...Option) (string, error) {
	r := NewANSIRenderer(theme, width, opts...)
	blocks, err := parse(src, r, r.options())
	if err != nil {
		return "", err
	}
	return r.Layout(blocks), nil
}
