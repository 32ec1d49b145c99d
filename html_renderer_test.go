package marktree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustHTML(t *testing.T, src string, opts ...Option) string {
	t.Helper()
	out, err := HTML(src, opts...)
	require.NoError(t, err)
	return out
}

func TestHTMLBlocks(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		opts []Option
	}{
		{name: "paragraph", src: "hello", want: "<p>hello</p>\n"},
		{name: "hr", src: "* * *", want: "<hr>\n"},
		{name: "hr xhtml", src: "___", want: "<hr/>\n", opts: []Option{WithXHTML(true)}},
		{name: "heading id", src: "# Hello World", want: "<h1 id=\"hello-world\">Hello World</h1>\n"},
		{name: "heading prefix", src: "## Intro", want: "<h2 id=\"doc-intro\">Intro</h2>\n", opts: []Option{WithHeaderPrefix("doc-")}},
		{name: "heading without ids", src: "# Intro", want: "<h1>Intro</h1>\n", opts: []Option{WithHeaderIDs(false)}},
		{name: "fenced code", src: "```go\nx := 1 < 2\n```", want: "<pre><code class=\"language-go\">x := 1 &lt; 2</code></pre>\n"},
		{name: "indented code", src: "    a & b", want: "<pre><code>a &amp; b</code></pre>"},
		{name: "lang prefix", src: "```js\nx\n```", want: "<pre><code class=\"lang-js\">x</code></pre>\n", opts: []Option{WithLangPrefix("lang-")}},
		{name: "blockquote", src: "> quoted", want: "<blockquote>\n<p>quoted</p>\n</blockquote>\n"},
		{name: "tight list", src: "- a\n- b\n", want: "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n"},
		{name: "loose list", src: "- a\n\n- b\n", want: "<ul>\n<li><p>a</p>\n</li>\n<li><p>b</p>\n</li>\n</ul>\n"},
		{name: "ordered start", src: "3. a\n4. b\n", want: "<ol start=\"3\">\n<li>a</li>\n<li>b</li>\n</ol>\n"},
		{name: "ordered from one", src: "1. a\n", want: "<ol>\n<li>a</li>\n</ol>\n"},
		{name: "raw html", src: "<div>\nhi\n</div>\n", want: "<div>\nhi\n</div>\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, mustHTML(t, tc.src, tc.opts...))
		})
	}
}

func TestHTMLInline(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		opts []Option
	}{
		{name: "emphasis nesting", src: "**a *b* c**", want: "<p><strong>a <em>b</em> c</strong></p>\n"},
		{name: "codespan", src: "use `a<b`", want: "<p>use <code>a&lt;b</code></p>\n"},
		{name: "del", src: "~~gone~~", want: "<p><del>gone</del></p>\n"},
		{name: "inline link", src: "[site](https://example.com \"T\")", want: "<p><a href=\"https://example.com\" title=\"T\">site</a></p>\n"},
		{name: "image", src: "![alt](/i.png)", want: "<p><img src=\"/i.png\" alt=\"alt\"></p>\n"},
		{name: "image xhtml", src: "![alt](/i.png)", want: "<p><img src=\"/i.png\" alt=\"alt\"/></p>\n", opts: []Option{WithXHTML(true)}},
		{name: "escape", src: `\*not em\*`, want: "<p>*not em*</p>\n"},
		{name: "entities kept", src: "a &amp; b & c", want: "<p>a &amp; b &amp; c</p>\n"},
		{name: "inline html", src: "a <span>b</span>", want: "<p>a <span>b</span></p>\n"},
		{name: "sanitized inline html", src: "a <span>b</span>", want: "<p>a &lt;span&gt;b&lt;/span&gt;</p>\n", opts: []Option{WithSanitize(true)}},
		{name: "bare url", src: "see https://example.com now", want: "<p>see <a href=\"https://example.com\">https://example.com</a> now</p>\n"},
		{name: "www url", src: "www.example.com", want: "<p><a href=\"http://www.example.com\">www.example.com</a></p>\n"},
		{name: "hard break", src: "a  \nb", want: "<p>a<br>b</p>\n"},
		{name: "gfm breaks", src: "a\nb", want: "<p>a<br>b</p>\n", opts: []Option{WithBreaks(true)}},
		{name: "soft break", src: "a\nb", want: "<p>a\nb</p>\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, mustHTML(t, tc.src, tc.opts...))
		})
	}
}

func TestHTMLReferenceLinks(t *testing.T) {
	require.Equal(t,
		"<p><a href=\"/u\" title=\"t\">x</a></p>\n",
		mustHTML(t, "[x]: /u \"t\"\n\n[x]"))
	require.Equal(t,
		"<p><a href=\"/u\">text</a></p>\n",
		mustHTML(t, "[Label]: /u\n\n[text][label]"))
	require.Equal(t, "<p>[y]</p>\n", mustHTML(t, "[y]"))
}

func TestHTMLTable(t *testing.T) {
	out := mustHTML(t, "a|b\n:--|--:\n1|2\n")
	want := "<table>\n<thead>\n<tr>\n<th align=\"left\">a</th>\n<th align=\"right\">b</th>\n</tr>\n</thead>\n" +
		"<tbody><tr>\n<td align=\"left\">1</td>\n<td align=\"right\">2</td>\n</tr>\n</tbody></table>\n"
	require.Equal(t, want, out)
}

func TestHTMLTaskList(t *testing.T) {
	out := mustHTML(t, "- [x] done\n- [ ] open\n")
	require.Contains(t, out, `<li><input checked="" disabled="" type="checkbox"> done</li>`)
	require.Contains(t, out, `<li><input disabled="" type="checkbox"> open</li>`)
}

func TestHTMLSanitizeDropsScriptLinks(t *testing.T) {
	out := mustHTML(t, "[x](javascript:alert(1))", WithSanitize(true))
	require.Equal(t, "<p>x</p>\n", out)

	out = mustHTML(t, "[x](javascript:alert(1))")
	require.Contains(t, out, `href="javascript:alert(1)"`)
}

func TestHTMLSanitizerFunction(t *testing.T) {
	out := mustHTML(t, "a <b>x</b>", WithSanitize(true), WithSanitizer(func(s string) string {
		return strings.ToUpper(s)
	}))
	require.Equal(t, "<p>a <B>x</B></p>\n", out)
}

func TestHTMLBaseURL(t *testing.T) {
	tests := map[string]string{
		"[a](page)":         `href="https://example.com/docs/page"`,
		"[a](/root)":        `href="https://example.com/root"`,
		"[a](//cdn.io/x)":   `href="https://cdn.io/x"`,
		"[a](#frag)":        `href="#frag"`,
		"[a](mailto:x@y.z)": `href="mailto:x@y.z"`,
	}
	for src, want := range tests {
		require.Contains(t, mustHTML(t, src, WithBaseURL("https://example.com/docs/index.html")), want, src)
	}
}

func TestHTMLEncodesURLs(t *testing.T) {
	require.Contains(t, mustHTML(t, "[a](/a%20b/ü)"), `href="/a%20b/%C3%BC"`)
}

func TestHTMLSmartypants(t *testing.T) {
	out := mustHTML(t, `"quoted" -- it's...`, WithSmartypants(true))
	require.Equal(t, "<p>“quoted” – it’s…</p>\n", out)
}

func TestHTMLHighlight(t *testing.T) {
	hl := func(code, lang string) string {
		return "<span class=\"" + lang + "\">" + code + "</span>"
	}
	out := mustHTML(t, "```go\na<b\n```", WithHighlight(hl))
	require.Equal(t, "<pre><code class=\"language-go\"><span class=\"go\">a<b</span></code></pre>\n", out)

	unchanged := func(code, _ string) string { return code }
	out = mustHTML(t, "```go\na<b\n```", WithHighlight(unchanged))
	require.Equal(t, "<pre><code class=\"language-go\">a&lt;b</code></pre>\n", out)
}

func TestHTMLPositions(t *testing.T) {
	out := mustHTML(t, "# A\n\npara\nline2\n\n- x\n- y\n", WithPositions(true))
	require.Contains(t, out, `<h1 id="a" data-lines="1-1">A</h1>`)
	require.Contains(t, out, `<p data-lines="3-4">para`)
	require.Contains(t, out, `<ul data-lines="6-7">`)
	require.Contains(t, out, `<li data-lines="6-6">x</li>`)
	require.Contains(t, out, `<li data-lines="7-7">y</li>`)

	require.NotContains(t, mustHTML(t, "# A\n"), "data-lines")
}

func TestHTMLPedantic(t *testing.T) {
	require.Equal(t, "<p>snake_case_word</p>\n", mustHTML(t, "snake_case_word"))
	require.Equal(t, "<h1 id=\"a\">A</h1>\n", mustHTML(t, "#A", WithPedantic(true)))
}

func TestHTMLCustomRenderer(t *testing.T) {
	out := mustHTML(t, "# Title\n\nbody", WithRenderer(TextRenderer{}))
	require.Equal(t, "Title\n\nbody\n\n", out)
}

func TestHTMLStable(t *testing.T) {
	src := "# T\n\n- a\n- b\n\n> q\n\n| x | y |\n|---|---|\n| 1 | 2 |\n"
	require.Equal(t, mustHTML(t, src), mustHTML(t, src))
}
