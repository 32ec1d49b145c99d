package marktree

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Token is one block-level unit of the lexed stream. Containers are framed
// by balanced start and end tokens rather than nested.
type Token struct {
	Type TokenType `json:"type" yaml:"type"`
	Text string    `json:"text,omitempty" yaml:"text,omitempty"`

	// Code blocks.
	Lang    string `json:"lang,omitempty" yaml:"lang,omitempty"`
	Escaped bool   `json:"escaped,omitempty" yaml:"escaped,omitempty"`

	// Headings.
	Depth int `json:"depth,omitempty" yaml:"depth,omitempty"`

	// Lists and list items.
	Ordered bool `json:"ordered,omitempty" yaml:"ordered,omitempty"`
	Start   int  `json:"start,omitempty" yaml:"start,omitempty"`
	Loose   bool `json:"loose,omitempty" yaml:"loose,omitempty"`
	Task    bool `json:"task,omitempty" yaml:"task,omitempty"`
	Checked bool `json:"checked,omitempty" yaml:"checked,omitempty"`

	// Raw HTML blocks.
	Pre bool `json:"pre,omitempty" yaml:"pre,omitempty"`

	// Tables.
	Header []string   `json:"header,omitempty" yaml:"header,omitempty"`
	Align  []Align    `json:"align,omitempty" yaml:"align,omitempty"`
	Cells  [][]string `json:"cells,omitempty" yaml:"cells,omitempty"`

	Position *Position `json:"position,omitempty" yaml:"position,omitempty"`
}

// TokenType identifies the kind of a Token.
type TokenType uint8

const (
	TokenSpace TokenType = iota
	TokenCode
	TokenHeading
	TokenHR
	TokenBlockquoteStart
	TokenBlockquoteEnd
	TokenListStart
	TokenListEnd
	TokenListItemStart
	TokenListItemEnd
	TokenHTML
	TokenTable
	TokenParagraph
	TokenText
)

var tokenTypeNames = [...]string{
	TokenSpace:           "space",
	TokenCode:            "code",
	TokenHeading:         "heading",
	TokenHR:              "hr",
	TokenBlockquoteStart: "blockquote_start",
	TokenBlockquoteEnd:   "blockquote_end",
	TokenListStart:       "list_start",
	TokenListEnd:         "list_end",
	TokenListItemStart:   "list_item_start",
	TokenListItemEnd:     "list_item_end",
	TokenHTML:            "html",
	TokenTable:           "table",
	TokenParagraph:       "paragraph",
	TokenText:            "text",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return "unknown"
}

func (t TokenType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// closer returns the end token matching a container start token.
func (t TokenType) closer() (TokenType, bool) {
	switch t {
	case TokenBlockquoteStart:
		return TokenBlockquoteEnd, true
	case TokenListStart:
		return TokenListEnd, true
	case TokenListItemStart:
		return TokenListItemEnd, true
	}
	return 0, false
}

// Align is a table column alignment.
type Align uint8

const (
	AlignNone Align = iota
	AlignLeft
	AlignRight
	AlignCenter
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	default:
		return ""
	}
}

func (a Align) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Position is the inclusive source line range a block came from.
type Position struct {
	StartLine int `json:"start" yaml:"start"`
	EndLine   int `json:"end" yaml:"end"`
}

// union returns the smallest range covering p and q. Either may be nil.
func (p *Position) union(q *Position) *Position {
	switch {
	case q == nil:
		return p
	case p == nil:
		return &Position{StartLine: q.StartLine, EndLine: q.EndLine}
	}
	return &Position{
		StartLine: min(p.StartLine, q.StartLine),
		EndLine:   max(p.EndLine, q.EndLine),
	}
}

// Balanced reports whether every container start token in toks is closed
// by its end token at the same depth.
func Balanced(toks []Token) bool {
	var open []TokenType
	for _, t := range toks {
		if end, ok := t.Type.closer(); ok {
			open = append(open, end)
			continue
		}
		switch t.Type {
		case TokenBlockquoteEnd, TokenListEnd, TokenListItemEnd:
			if len(open) == 0 || open[len(open)-1] != t.Type {
				return false
			}
			open = open[:len(open)-1]
		}
	}
	return len(open) == 0
}

// Link is a resolved link reference definition.
type Link struct {
	Href  string `json:"href" yaml:"href"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Links maps normalized reference labels to their definitions.
type Links map[string]Link

// NormalizeLabel lowercases and collapses whitespace runs so that
// [Foo  Bar] and [foo bar] name the same definition. Lowercasing keeps
// [ß] and [ss] apart.
func NormalizeLabel(label string) string {
	return strings.Join(strings.Fields(cases.Lower(language.Und).String(label)), " ")
}

// Lookup finds the definition for a raw label.
func (l Links) Lookup(label string) (Link, bool) {
	link, ok := l[NormalizeLabel(label)]
	return link, ok
}

// define records a definition unless the label is already taken.
func (l Links) define(label string, link Link) {
	key := NormalizeLabel(label)
	if _, ok := l[key]; ok {
		return
	}
	l[key] = link
}
