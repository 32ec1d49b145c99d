package marktree

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// kinds drops space tokens and returns the type sequence.
func kinds(toks []Token) []TokenType {
	var out []TokenType
	for _, t := range toks {
		if t.Type != TokenSpace {
			out = append(out, t.Type)
		}
	}
	return out
}

func TestLexThematicBreaks(t *testing.T) {
	for _, src := range []string{"* * *", "---", "___", "- - -\n"} {
		toks, _, err := Lex(src)
		require.NoError(t, err, src)
		require.Equal(t, []TokenType{TokenHR}, kinds(toks), src)
	}
}

func TestLexParagraph(t *testing.T) {
	toks, _, err := Lex("hello")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, TokenParagraph, toks[0].Type)
	require.Equal(t, "hello", toks[0].Text)
}

func TestLexHeadings(t *testing.T) {
	toks, _, err := Lex("# One\n\nTwo\n---\n\n### Three ###\n")
	require.NoError(t, err)
	var depths []int
	var texts []string
	for _, tok := range toks {
		if tok.Type == TokenHeading {
			depths = append(depths, tok.Depth)
			texts = append(texts, tok.Text)
		}
	}
	require.Equal(t, []int{1, 2, 3}, depths)
	require.Equal(t, []string{"One", "Two", "Three"}, texts)
}

func TestLexFencedCode(t *testing.T) {
	toks, _, err := Lex("```go\nx := 1\n```\n")
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenCode}, kinds(toks))
	require.Equal(t, "go", toks[0].Lang)
	require.Equal(t, "x := 1", toks[0].Text)
}

func TestLexIndentedCode(t *testing.T) {
	toks, _, err := Lex("    a\n    b\n")
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenCode}, kinds(toks))
	require.Equal(t, "a\nb", toks[0].Text)
}

func TestLexListLooseness(t *testing.T) {
	toks, _, err := Lex("- a\n\n- b\n")
	require.NoError(t, err)
	require.Equal(t, TokenListStart, toks[0].Type)
	require.True(t, toks[0].Loose)
	items := 0
	for _, tok := range toks {
		if tok.Type == TokenListItemStart {
			items++
			require.True(t, tok.Loose)
		}
	}
	require.Equal(t, 2, items)

	toks, _, err = Lex("- a\n- b\n")
	require.NoError(t, err)
	require.Equal(t, []TokenType{
		TokenListStart,
		TokenListItemStart, TokenText, TokenListItemEnd,
		TokenListItemStart, TokenText, TokenListItemEnd,
		TokenListEnd,
	}, kinds(toks))
	require.False(t, toks[0].Loose)
	for _, tok := range toks {
		if tok.Type == TokenListItemStart {
			require.False(t, tok.Loose)
		}
	}
}

func TestLexOrderedListStart(t *testing.T) {
	toks, _, err := Lex("3. a\n4. b\n")
	require.NoError(t, err)
	require.Equal(t, TokenListStart, toks[0].Type)
	require.True(t, toks[0].Ordered)
	require.Equal(t, 3, toks[0].Start)
}

// lists returns the ordered flag of every list in toks.
func lists(toks []Token) []bool {
	var out []bool
	for _, tok := range toks {
		if tok.Type == TokenListStart {
			out = append(out, tok.Ordered)
		}
	}
	return out
}

func TestLexListBulletContinuation(t *testing.T) {
	toks, _, err := Lex("1. a\n- b")
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, lists(toks))
	require.True(t, Balanced(toks))

	toks, _, err = Lex("- a\n* b")
	require.NoError(t, err)
	require.Equal(t, []bool{false}, lists(toks))

	toks, _, err = Lex("- a\n* b", WithSmartLists(true))
	require.NoError(t, err)
	require.Equal(t, []bool{false, false}, lists(toks))
	require.True(t, Balanced(toks))
}

func TestLexTaskItems(t *testing.T) {
	toks, _, err := Lex("- [x] done\n- [ ] open\n")
	require.NoError(t, err)
	var checked []bool
	for _, tok := range toks {
		if tok.Type == TokenListItemStart {
			require.True(t, tok.Task)
			checked = append(checked, tok.Checked)
		}
	}
	require.Equal(t, []bool{true, false}, checked)
}

func TestLexTableAlignment(t *testing.T) {
	toks, _, err := Lex("a|b\n:--|--:\n1|2\n")
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenTable}, kinds(toks))
	require.Equal(t, []Align{AlignLeft, AlignRight}, toks[0].Align)
	require.Equal(t, []string{"a", "b"}, toks[0].Header)
	require.Equal(t, [][]string{{"1", "2"}}, toks[0].Cells)
}

func TestLexTablesNeedGFM(t *testing.T) {
	toks, _, err := Lex("a|b\n--|--\n", WithGFM(false))
	require.NoError(t, err)
	require.NotContains(t, kinds(toks), TokenTable)
}

func TestLexLinkDefinitions(t *testing.T) {
	toks, links, err := Lex("[X]: /u \"t\"\n[x]: /other\n\n[Foo  Bar]: /fb\n")
	require.NoError(t, err)
	require.Empty(t, kinds(toks))
	link, ok := links.Lookup("x")
	require.True(t, ok)
	require.Equal(t, Link{Href: "/u", Title: "t"}, link)
	link, ok = links.Lookup("foo bar")
	require.True(t, ok)
	require.Equal(t, "/fb", link.Href)
}

func TestLinkLabelsLowercaseWithoutFolding(t *testing.T) {
	_, links, err := Lex("[ß]: /sharp\n[SS]: /double\n")
	require.NoError(t, err)
	require.Equal(t, "foo bar", NormalizeLabel(" Foo \t BAR "))
	link, ok := links.Lookup("ß")
	require.True(t, ok)
	require.Equal(t, "/sharp", link.Href)
	link, ok = links.Lookup("ss")
	require.True(t, ok)
	require.Equal(t, "/double", link.Href)

	require.Equal(t, "<p>[ss]</p>\n", mustHTML(t, "[ß]: /sharp\n\n[ss]"))
}

func TestLexBlockquoteBalanced(t *testing.T) {
	toks, _, err := Lex("> quote\n> - a\n>   - b\n")
	require.NoError(t, err)
	require.True(t, Balanced(toks))
	require.Equal(t, TokenBlockquoteStart, toks[0].Type)
	require.Equal(t, TokenBlockquoteEnd, toks[len(toks)-1].Type)
}

func TestLexRawHTML(t *testing.T) {
	toks, _, err := Lex("<div>\nhi\n</div>\n")
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenHTML}, kinds(toks))

	toks, _, err = Lex("<div>\nhi\n</div>\n", WithSanitize(true))
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenParagraph}, kinds(toks))
}

func TestLexPositions(t *testing.T) {
	toks, _, err := Lex("# A\n\npara\nline2\n")
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenHeading, TokenParagraph}, kinds(toks))
	var got []Position
	for _, tok := range toks {
		if tok.Position != nil {
			got = append(got, *tok.Position)
		}
	}
	require.Equal(t, []Position{{StartLine: 1, EndLine: 1}, {StartLine: 3, EndLine: 4}}, got)
}

func TestLexFrontMatterKeepsLineNumbers(t *testing.T) {
	src := "---\ntitle: x\n---\n# A\n"
	toks, _, err := Lex(src, WithFrontMatter(true))
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenHeading}, kinds(toks))
	require.Equal(t, &Position{StartLine: 4, EndLine: 4}, toks[0].Position)

	toks, _, err = Lex(src)
	require.NoError(t, err)
	require.NotEqual(t, []TokenType{TokenHeading}, kinds(toks))
}

func TestLexAcceptsAnyString(t *testing.T) {
	for src, want := range map[string]string{
		"a\x00b": "a\uFFFDb",
		"a\xffb": "a\uFFFDb",
	} {
		toks, _, err := Lex(src)
		require.NoError(t, err, src)
		require.Equal(t, []TokenType{TokenParagraph}, kinds(toks), src)
		require.Equal(t, want, toks[0].Text, src)
	}

	escapes := "para " + strings.Repeat("\x1b", 60) + " end"
	toks, _, err := Lex(escapes)
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenParagraph}, kinds(toks))

	out, err := HTML("a\x00b")
	require.NoError(t, err)
	require.Equal(t, "<p>a\uFFFDb</p>\n", out)
}

func TestLexNormalizesLineEndings(t *testing.T) {
	a, _, err := Lex("# A\r\n\r\ntext\r\n")
	require.NoError(t, err)
	b, _, err := Lex("# A\n\ntext\n")
	require.NoError(t, err)
	require.Equal(t, b, a)
}

func TestBalanced(t *testing.T) {
	require.True(t, Balanced(nil))
	require.False(t, Balanced([]Token{{Type: TokenListStart}}))
	require.False(t, Balanced([]Token{{Type: TokenListStart}, {Type: TokenBlockquoteEnd}}))
	require.False(t, Balanced([]Token{{Type: TokenListItemEnd}}))
}

func TestLoopErrorUnwraps(t *testing.T) {
	var err error = &LoopError{Stage: "block lexer", Char: 'x'}
	require.True(t, errors.Is(err, ErrInfiniteLoop))
	require.Contains(t, err.Error(), "U+0078")
}
