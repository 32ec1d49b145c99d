package marktree

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

var (
	sourceNormalizer = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\t", "    ",
		"\u00a0", " ",
		"\u2424", "\n",
		"\x00", "\uFFFD",
	)
	blankLinePattern    = search(`^ +$`, regexp2.Multiline)
	codeIndentPattern   = search(`^ {4}`, regexp2.Multiline)
	quoteMarkerPattern  = search(`^ *> ?`, regexp2.Multiline)
	bulletStripPattern  = search(`^ *(?:[*+-]|\d+\.) +`, regexp2.None)
	pedanticOutdent     = search(`^ {1,4}`, regexp2.Multiline)
	taskPattern         = search(`^\[[ xX]\] +`, regexp2.None)
	headerRowTrim       = search(`^ *| *\| *$`, regexp2.None)
	alignRowTrim        = search(`^ *|\| *$`, regexp2.None)
	tableRowsTrailer    = search(`(?: *\| *)?\n$`, regexp2.None)
	tableRowPipes       = search(`^ *\| *| *\| *$`, regexp2.None)
	paragraphBlankLines = search(`\n\n(?!\s*$)`, regexp2.None)
)

// blockLexer turns normalized source into a flat token stream. One lexer
// serves one document.
type blockLexer struct {
	opts    *Options
	rules   *blockRules
	tokens  []Token
	links   Links
	line    int
	outdent map[int]pattern
	logger  *slog.Logger
}

func newBlockLexer(opts *Options) *blockLexer {
	return &blockLexer{
		opts:   opts,
		rules:  blockGrammars[blockProfile(opts)],
		links:  make(Links),
		line:   1,
		logger: opts.Logger,
	}
}

// lex normalizes line endings, tabs and special spaces, then tokenizes src
// as top level content.
func (l *blockLexer) lex(src string) ([]Token, Links, error) {
	src = sourceNormalizer.Replace(strings.ToValidUTF8(src, "\uFFFD"))
	if err := l.token(src, true); err != nil {
		return nil, nil, err
	}
	return l.tokens, l.links, nil
}

func (l *blockLexer) push(tok Token) int {
	l.tokens = append(l.tokens, tok)
	return len(l.tokens) - 1
}

func (l *blockLexer) exec(p pattern, src []rune) *match {
	m, err := p.exec(src)
	if err != nil {
		l.logger.Debug("block rule abandoned", "line", l.line, "error", err)
		return nil
	}
	return m
}

// advance moves the line counter past s and returns the lines s covered.
// Trailing newlines count towards the counter but not the range.
func (l *blockLexer) advance(s string) *Position {
	if s == "" {
		return nil
	}
	pos := &Position{StartLine: l.line, EndLine: l.line}
	trailing := true
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '\n' {
			trailing = false
			continue
		}
		l.line++
		if !trailing {
			pos.EndLine++
		}
	}
	return pos
}

// spanOf covers every positioned token in toks.
func spanOf(toks []Token) *Position {
	var span *Position
	for i := range toks {
		span = span.union(toks[i].Position)
	}
	return span
}

func (l *blockLexer) token(text string, top bool) error {
	src := []rune(blankLinePattern.replace(text, ""))
	r := l.rules
	for len(src) > 0 {
		// newline
		if m := l.exec(r.newline, src); m != nil {
			src = src[m.n:]
			l.advance(m.text())
			if m.n > 1 {
				l.push(Token{Type: TokenSpace})
			}
		}

		// indented code
		if m := l.exec(r.code, src); m != nil {
			src = src[m.n:]
			code := codeIndentPattern.replace(m.text(), "")
			pos := l.advance(code)
			if !l.opts.Pedantic {
				code = rtrim(code, '\n')
			}
			l.push(Token{Type: TokenCode, Text: code, Position: pos})
			continue
		}

		// fenced code
		if m := r.fences.exec(src); m != nil {
			src = src[m.n:]
			l.push(Token{
				Type:     TokenCode,
				Lang:     strings.TrimSpace(m.group(2)),
				Text:     m.group(3),
				Position: l.advance(m.text()),
			})
			continue
		}

		// heading
		if m := l.exec(r.heading, src); m != nil {
			src = src[m.n:]
			l.push(Token{
				Type:     TokenHeading,
				Depth:    len(m.group(1)),
				Text:     m.group(2),
				Position: l.advance(m.text()),
			})
			continue
		}

		// table without leading pipe
		if top {
			if m := l.exec(r.nptable, src); m != nil {
				if tok, ok := l.table(m, false); ok {
					src = src[m.n:]
					l.push(tok)
					continue
				}
			}
		}

		// thematic break
		if m := l.exec(r.hr, src); m != nil {
			src = src[m.n:]
			l.push(Token{Type: TokenHR, Position: l.advance(m.text())})
			continue
		}

		// blockquote
		if m := l.exec(r.blockquote, src); m != nil {
			src = src[m.n:]
			start := l.push(Token{Type: TokenBlockquoteStart})
			if err := l.token(quoteMarkerPattern.replace(m.text(), ""), top); err != nil {
				return err
			}
			pos := spanOf(l.tokens[start+1:])
			l.tokens[start].Position = pos
			l.push(Token{Type: TokenBlockquoteEnd, Position: pos})
			continue
		}

		// list
		if m := l.exec(r.list, src); m != nil {
			src = src[m.n:]
			rest, err := l.list(m)
			if err != nil {
				return err
			}
			if rest != "" {
				src = append([]rune(rest), src...)
			}
			continue
		}

		// raw html
		if m := l.exec(r.html, src); m != nil {
			src = src[m.n:]
			typ := TokenHTML
			if l.opts.Sanitize {
				typ = TokenParagraph
			}
			tag := m.group(1)
			l.push(Token{
				Type:     typ,
				Text:     m.text(),
				Pre:      l.opts.Sanitizer == nil && (tag == "pre" || tag == "script" || tag == "style"),
				Position: l.advance(m.text()),
			})
			continue
		}

		// link definition
		if top {
			if m := l.exec(r.def, src); m != nil {
				src = src[m.n:]
				title := m.group(3)
				if len(title) >= 2 {
					title = title[1 : len(title)-1]
				}
				l.links.define(m.group(1), Link{Href: m.group(2), Title: title})
				l.advance(m.text())
				continue
			}
		}

		// table with leading pipe
		if top {
			if m := l.exec(r.table, src); m != nil {
				if tok, ok := l.table(m, true); ok {
					src = src[m.n:]
					l.push(tok)
					continue
				}
			}
		}

		// setext heading
		if m := l.exec(r.lheading, src); m != nil {
			src = src[m.n:]
			depth := 2
			if m.group(2) == "=" {
				depth = 1
			}
			l.push(Token{
				Type:     TokenHeading,
				Depth:    depth,
				Text:     m.group(1),
				Position: l.advance(m.text()),
			})
			continue
		}

		// top level paragraph
		if top {
			if m := l.exec(r.paragraph, src); m != nil {
				src = src[m.n:]
				l.push(Token{
					Type:     TokenParagraph,
					Text:     strings.TrimSuffix(m.group(1), "\n"),
					Position: l.advance(m.text()),
				})
				continue
			}
		}

		// text
		if m := l.exec(r.text, src); m != nil {
			src = src[m.n:]
			l.push(Token{Type: TokenText, Text: m.text(), Position: l.advance(m.text())})
			continue
		}

		if len(src) > 0 {
			return &LoopError{Stage: "block lexer", Char: src[0]}
		}
	}
	return nil
}

// table builds a table token from a piped or pipeless table match. The
// header and the alignment row must agree on the column count.
func (l *blockLexer) table(m *match, piped bool) (Token, bool) {
	header := splitCells(headerRowTrim.replace(m.group(1), ""), -1)
	aligns := strings.Split(alignRowTrim.replace(m.group(2), ""), "|")
	if len(header) != len(aligns) {
		return Token{}, false
	}
	tok := Token{Type: TokenTable, Header: header, Align: make([]Align, len(aligns))}
	for i, a := range aligns {
		tok.Align[i] = parseAlign(a)
	}
	if rows := m.group(3); rows != "" {
		if piped {
			rows = tableRowsTrailer.replace(rows, "")
		} else {
			rows = strings.TrimSuffix(rows, "\n")
		}
		for _, row := range strings.Split(rows, "\n") {
			if piped {
				row = tableRowPipes.replace(row, "")
			}
			tok.Cells = append(tok.Cells, splitCells(row, len(header)))
		}
	}
	tok.Position = l.advance(m.text())
	return tok, true
}

func parseAlign(s string) Align {
	s = strings.Trim(s, " ")
	left := strings.HasPrefix(s, ":")
	right := len(s) > 1 && strings.HasSuffix(s, ":")
	dashes := strings.TrimSuffix(strings.TrimPrefix(s, ":"), ":")
	if dashes == "" || strings.Trim(dashes, "-") != "" {
		return AlignNone
	}
	switch {
	case left && right:
		return AlignCenter
	case right:
		return AlignRight
	case left:
		return AlignLeft
	}
	return AlignNone
}

// list emits one list and its items. Items whose bullet does not belong to
// this list are handed back as source to lex next.
func (l *blockLexer) list(m *match) (string, error) {
	bull := m.group(2)
	ordered := len(bull) > 1
	listTok := Token{Type: TokenListStart, Ordered: ordered}
	if ordered {
		listTok.Start, _ = strconv.Atoi(strings.TrimSuffix(bull, "."))
	}
	listIdx := l.push(listTok)

	var (
		rest  string
		items = itemPattern.findAll(m.text())
		heads []int
		next  bool
	)
	for i := 0; i < len(items); i++ {
		item := items[i]
		hasNext := i != len(items)-1

		space := len(item)
		item = bulletStripPattern.replace(item, "")
		if strings.Contains(item, "\n ") {
			space -= len(item)
			if l.opts.Pedantic {
				item = pedanticOutdent.replace(item, "")
			} else {
				item = l.outdentPattern(space).replace(item, "")
			}
		}

		if hasNext {
			b := ""
			if bm := bulletPattern.find(items[i+1]); bm != nil {
				b = bm.text()
			}
			var foreign bool
			if len(bull) > 1 {
				foreign = len(b) == 1
			} else {
				foreign = len(b) > 1 || (l.opts.SmartLists && b != bull)
			}
			if foreign {
				rest = strings.Join(items[i+1:], "\n")
				items = items[:i+1]
			}
		}

		loose := next || paragraphBlankLines.test(item)
		if i != len(items)-1 {
			next = strings.HasSuffix(item, "\n")
			if !loose {
				loose = next
			}
		}
		if loose {
			l.tokens[listIdx].Loose = true
		}

		itemTok := Token{Type: TokenListItemStart, Loose: loose}
		if tm := taskPattern.find(item); tm != nil {
			itemTok.Task = true
			itemTok.Checked = item[1] != ' '
			item = item[len(tm.text()):]
		}
		head := l.push(itemTok)
		heads = append(heads, head)

		if err := l.token(item, false); err != nil {
			return "", err
		}

		pos := spanOf(l.tokens[head+1:])
		l.tokens[head].Position = pos
		l.push(Token{Type: TokenListItemEnd, Position: pos})

		// The newline separating this item from the next one is not part
		// of either item.
		if hasNext {
			l.line++
		}
	}

	if l.tokens[listIdx].Loose {
		for _, head := range heads {
			l.tokens[head].Loose = true
		}
	}
	pos := spanOf(l.tokens[listIdx+1:])
	l.tokens[listIdx].Position = pos
	l.push(Token{Type: TokenListEnd, Position: pos})
	return rest, nil
}

func (l *blockLexer) outdentPattern(space int) pattern {
	if p, ok := l.outdent[space]; ok {
		return p
	}
	if l.outdent == nil {
		l.outdent = make(map[int]pattern)
	}
	p := search(`^ {1,`+strconv.Itoa(space)+`}`, regexp2.Multiline)
	l.outdent[space] = p
	return p
}
