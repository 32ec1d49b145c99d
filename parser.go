package marktree

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// parser walks a token stream and drives a renderer. Containers are
// resolved by popping tokens until the matching end token.
type parser[T any] struct {
	opts       *Options
	renderer   Renderer[T]
	positioner Positioner
	inline     *inlineLexer[T]
	plain      *inlineLexer[string]
	tokens     *arraystack.Stack
	token      *Token
}

func newParser[T any](r Renderer[T], links Links, opts *Options) (*parser[T], error) {
	inline, err := newInlineLexer(links, r, opts)
	if err != nil {
		return nil, err
	}
	plain, err := newInlineLexer[string](links, TextRenderer{}, opts)
	if err != nil {
		return nil, err
	}
	if c, ok := any(r).(Configurer); ok {
		c.Configure(opts)
	}
	p := &parser[T]{
		opts:     opts,
		renderer: r,
		inline:   inline,
		plain:    plain,
		tokens:   arraystack.New(),
	}
	p.positioner, _ = any(r).(Positioner)
	return p, nil
}

func (p *parser[T]) parse(tokens []Token) ([]T, error) {
	p.tokens.Clear()
	for i := len(tokens) - 1; i >= 0; i-- {
		p.tokens.Push(&tokens[i])
	}
	var out []T
	for p.next() {
		nodes, err := p.tok()
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func (p *parser[T]) next() bool {
	v, ok := p.tokens.Pop()
	if !ok {
		p.token = nil
		return false
	}
	p.token = v.(*Token)
	return true
}

func (p *parser[T]) peek() *Token {
	v, ok := p.tokens.Peek()
	if !ok {
		return nil
	}
	return v.(*Token)
}

// until advances to the next token and reports whether it is still inside
// the container closed by end. A truncated stream closes every open
// container.
func (p *parser[T]) until(end TokenType) bool {
	return p.next() && p.token.Type != end
}

func (p *parser[T]) at(pos *Position) {
	if p.positioner != nil {
		p.positioner.SetPosition(pos)
	}
}

// parseText joins the current text token with the text tokens following
// it and compiles them as one span.
func (p *parser[T]) parseText() ([]T, *Position, error) {
	body := p.token.Text
	pos := p.token.Position
	for next := p.peek(); next != nil && next.Type == TokenText; next = p.peek() {
		p.next()
		body += "\n" + p.token.Text
		pos = pos.union(p.token.Position)
	}
	nodes, err := p.inline.output(body)
	return nodes, pos, err
}

func (p *parser[T]) tok() ([]T, error) {
	r := p.renderer
	t := p.token
	switch t.Type {
	case TokenSpace:
		return nil, nil
	case TokenHR:
		p.at(t.Position)
		return []T{r.HR()}, nil
	case TokenHeading:
		children, err := p.inline.output(t.Text)
		if err != nil {
			return nil, err
		}
		plain, err := p.plain.output(t.Text)
		if err != nil {
			return nil, err
		}
		p.at(t.Position)
		return []T{r.Heading(children, t.Depth, unescapeHTML(concat(plain)))}, nil
	case TokenCode:
		p.at(t.Position)
		return []T{r.Code(t.Text, t.Lang, t.Escaped)}, nil
	case TokenTable:
		return p.table(t)
	case TokenBlockquoteStart:
		var body []T
		for p.until(TokenBlockquoteEnd) {
			nodes, err := p.tok()
			if err != nil {
				return nil, err
			}
			body = append(body, nodes...)
		}
		p.at(t.Position)
		return []T{r.Blockquote(body)}, nil
	case TokenListStart:
		var body []T
		for p.until(TokenListEnd) {
			nodes, err := p.tok()
			if err != nil {
				return nil, err
			}
			body = append(body, nodes...)
		}
		p.at(t.Position)
		return []T{r.List(body, t.Ordered, t.Start)}, nil
	case TokenListItemStart:
		var body []T
		if t.Task {
			body = append(body, r.Checkbox(t.Checked), r.Text(" "))
		}
		for p.until(TokenListItemEnd) {
			var (
				nodes []T
				err   error
			)
			if !t.Loose && p.token.Type == TokenText {
				nodes, _, err = p.parseText()
			} else {
				nodes, err = p.tok()
			}
			if err != nil {
				return nil, err
			}
			body = append(body, nodes...)
		}
		p.at(t.Position)
		return []T{r.ListItem(body)}, nil
	case TokenHTML:
		p.at(t.Position)
		return []T{r.HTML(t.Text)}, nil
	case TokenParagraph:
		children, err := p.inline.output(t.Text)
		if err != nil {
			return nil, err
		}
		p.at(t.Position)
		return []T{r.Paragraph(children)}, nil
	case TokenText:
		children, pos, err := p.parseText()
		if err != nil {
			return nil, err
		}
		p.at(pos)
		return []T{r.Paragraph(children)}, nil
	}
	// Stray end tokens close nothing.
	return nil, nil
}

func (p *parser[T]) table(t *Token) ([]T, error) {
	r := p.renderer
	cells := make([]T, 0, len(t.Header))
	for i, text := range t.Header {
		children, err := p.inline.output(text)
		if err != nil {
			return nil, err
		}
		cells = append(cells, r.TableCell(children, CellFlags{Header: true, Align: alignAt(t.Align, i)}))
	}
	header := []T{r.TableRow(cells)}

	body := make([]T, 0, len(t.Cells))
	for _, row := range t.Cells {
		cells := make([]T, 0, len(row))
		for j, text := range row {
			children, err := p.inline.output(text)
			if err != nil {
				return nil, err
			}
			cells = append(cells, r.TableCell(children, CellFlags{Align: alignAt(t.Align, j)}))
		}
		body = append(body, r.TableRow(cells))
	}
	p.at(t.Position)
	return []T{r.Table(header, body)}, nil
}

func alignAt(aligns []Align, i int) Align {
	if i < len(aligns) {
		return aligns[i]
	}
	return AlignNone
}
