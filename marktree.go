package marktree

import (
	"fmt"
	"strings"
)

const errorNoticeText = "An error occurred:"

// Lex tokenizes src into a flat token stream and the document's link
// reference definitions. Every string is accepted: NUL becomes U+FFFD, as
// do invalid UTF-8 sequences.
func Lex(src string, opts ...Option) ([]Token, Links, error) {
	return lex(src, newConfig(opts...))
}

func lex(src string, o *Options) ([]Token, Links, error) {
	l := newBlockLexer(o)
	if o.FrontMatter {
		if fm, body, ok := SplitFrontMatter(src); ok {
			o.Logger.Debug("front matter stripped", "format", fm.Format.String(), "lines", fm.Lines)
			src = body
			l.line += fm.Lines
		}
	}
	tokens, links, err := l.lex(src)
	if err != nil {
		return nil, nil, fmt.Errorf("lex: %w", err)
	}
	o.Logger.Debug("lexed document", "tokens", len(tokens), "links", len(links))
	return tokens, links, nil
}

// ParseTokens renders a token stream produced by Lex. Streams with
// unpaired container tokens are rejected.
func ParseTokens[T any](tokens []Token, links Links, r Renderer[T], opts ...Option) ([]T, error) {
	o := newConfig(opts...)
	if !Balanced(tokens) {
		return recoverWith(r, o, ErrUnbalanced)
	}
	out, err := render(tokens, links, r, o)
	if err != nil {
		return recoverWith(r, o, err)
	}
	return out, nil
}

// Parse lexes src and renders it through r. In silent mode failures are
// rendered as an error notice instead of being returned.
func Parse[T any](src string, r Renderer[T], opts ...Option) ([]T, error) {
	return parse(src, r, newConfig(opts...))
}

func parse[T any](src string, r Renderer[T], o *Options) ([]T, error) {
	tokens, links, err := lex(src, o)
	if err != nil {
		return recoverWith(r, o, err)
	}
	out, err := render(tokens, links, r, o)
	if err != nil {
		return recoverWith(r, o, err)
	}
	return out, nil
}

func render[T any](tokens []Token, links Links, r Renderer[T], o *Options) ([]T, error) {
	p, err := newParser(r, links, o)
	if err != nil {
		return nil, err
	}
	out, err := p.parse(tokens)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return out, nil
}

// recoverWith returns err, or in silent mode the error notice built by r.
func recoverWith[T any](r Renderer[T], o *Options, err error) ([]T, error) {
	if !o.Silent {
		return nil, err
	}
	o.Logger.Warn("markdown rendering failed, emitting error notice", "error", err)
	return errorNotice(r, o, err), nil
}

func errorNotice[T any](r Renderer[T], o *Options, err error) []T {
	if c, ok := any(r).(Configurer); ok {
		c.Configure(o)
	}
	pos, _ := any(r).(Positioner)
	if pos != nil {
		pos.SetPosition(nil)
	}
	para := r.Paragraph([]T{r.Text(errorNoticeText)})
	if pos != nil {
		pos.SetPosition(nil)
	}
	return []T{para, r.Code(err.Error(), "", false)}
}

// HTML renders src as HTML. Options.Renderer replaces the built-in
// renderer when set.
func HTML(src string, opts ...Option) (string, error) {
	o := newConfig(opts...)
	r := o.Renderer
	if r == nil {
		r = &HTMLRenderer{}
	}
	out, err := parse(src, r, o)
	if err != nil {
		return "", err
	}
	return concat(out), nil
}

// Tree renders src as element nodes.
func Tree(src string, opts ...Option) ([]*Node, error) {
	return Parse[*Node](src, &TreeRenderer{}, opts...)
}

// Text renders the plain text of src.
func Text(src string, opts ...Option) (string, error) {
	out, err := Parse[string](src, TextRenderer{}, opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(concat(out), "\n"), nil
}
