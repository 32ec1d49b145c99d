package marktree

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParseAsync hands every code block to Options.HighlightAsync concurrently
// and renders once all of them are done. The first highlighter error cancels
// the context passed to the others and is returned as is; nothing is
// rendered in that case. Without an async highlighter it behaves like Parse.
func ParseAsync[T any](ctx context.Context, src string, r Renderer[T], opts ...Option) ([]T, error) {
	o := newConfig(opts...)
	if o.HighlightAsync == nil {
		return parse(src, r, o)
	}
	tokens, links, err := lex(src, o)
	if err != nil {
		return recoverWith(r, o, err)
	}
	if err := highlight(ctx, tokens, o); err != nil {
		return nil, err
	}
	out, err := render(tokens, links, r, o)
	if err != nil {
		return recoverWith(r, o, err)
	}
	return out, nil
}

// HTMLAsync is ParseAsync with the HTML renderer.
func HTMLAsync(ctx context.Context, src string, opts ...Option) (string, error) {
	o := newConfig(opts...)
	r := o.Renderer
	if r == nil {
		r = &HTMLRenderer{}
	}
	out, err := ParseAsync(ctx, src, r, opts...)
	if err != nil {
		return "", err
	}
	return concat(out), nil
}

// highlight rewrites code tokens in place. Highlighted blocks are marked
// escaped so renderers emit them verbatim.
func highlight(ctx context.Context, tokens []Token, o *Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	pending := 0
	for i := range tokens {
		t := &tokens[i]
		if t.Type != TokenCode {
			continue
		}
		pending++
		g.Go(func() error {
			out, err := o.HighlightAsync(ctx, t.Text, t.Lang)
			if err != nil {
				return err
			}
			if out != "" && out != t.Text {
				t.Text = out
				t.Escaped = true
			}
			return nil
		})
	}
	o.Logger.Debug("highlighting code blocks", "blocks", pending)
	if err := g.Wait(); err != nil {
		o.Logger.Debug("highlight failed", "error", err)
		return err
	}
	return nil
}
