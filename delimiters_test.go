package marktree

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCodeSpanRuns(t *testing.T) {
	cases := map[string]string{
		"`a`":         "<p><code>a</code></p>\n",
		"`` a`b ``":   "<p><code>a`b</code></p>\n",
		"``a`":        "<p>``a`</p>\n",
		"```` x ``":   "<p>```` x ``</p>\n",
		"a `b` ``c``": "<p>a <code>b</code> <code>c</code></p>\n",
		"```\ncode":   "<p>```\ncode</p>\n",
	}
	for src, want := range cases {
		require.Equal(t, want, mustHTML(t, src), src)
	}
}

func TestEmphasisDelimiters(t *testing.T) {
	cases := map[string]string{
		"*a*":         "<p><em>a</em></p>\n",
		"_a b_":       "<p><em>a b</em></p>\n",
		"**a b**":     "<p><strong>a b</strong></p>\n",
		"__a__":       "<p><strong>a</strong></p>\n",
		"a*b":         "<p>a*b</p>\n",
		"*a **b** c*": "<p><em>a <strong>b</strong> c</em></p>\n",
		"a * b*":      "<p>a * b*</p>\n",
		"~~del~~":     "<p><del>del</del></p>\n",
		"~ a~":        "<p>~ a~</p>\n",
	}
	for src, want := range cases {
		require.Equal(t, want, mustHTML(t, src), src)
	}
	require.Equal(t, "<p>~~del~~</p>\n", mustHTML(t, "~~del~~", WithGFM(false)))
	require.Equal(t, "<p><em>a</em>b</p>\n", mustHTML(t, "*a*b", WithPedantic(true)))
}

func TestFencedCodeClosers(t *testing.T) {
	toks, _, err := Lex("````\n```\n````\n")
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenCode}, kinds(toks))
	require.Equal(t, "```", toks[0].Text)

	toks, _, err = Lex("~~~ .sh \nls\n~~~")
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenCode}, kinds(toks))
	require.Equal(t, "sh", toks[0].Lang)
	require.Equal(t, "ls", toks[0].Text)

	toks, _, err = Lex("```go x\ny\n```\n")
	require.NoError(t, err)
	require.NotContains(t, kinds(toks), TokenCode)
}

func TestInlineLexingStaysLinear(t *testing.T) {
	inputs := map[string]string{
		"backticks":     strings.Repeat("`", 20000),
		"stars":         strings.Repeat("*a", 20000),
		"underscores":   strings.Repeat("_a", 20000),
		"tildes":        strings.Repeat("~a ", 10000),
		"open comments": strings.Repeat("<!--", 5000),
		"email prefix":  strings.Repeat("a", 20000) + "@",
	}
	for name, src := range inputs {
		start := time.Now()
		_, err := HTML(src)
		require.NoError(t, err, name)
		require.Less(t, time.Since(start), time.Second, name)
	}
}
