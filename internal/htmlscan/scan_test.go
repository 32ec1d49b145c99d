package htmlscan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNestedElements(t *testing.T) {
	nodes := Parse(`<div class="note" id='x'><p>Hello <b>you</b>!</p></div>`)
	require.Len(t, nodes, 1)

	div := nodes[0]
	require.Equal(t, Element, div.Kind)
	require.Equal(t, "div", div.Name)
	require.Equal(t, map[string]string{"class": "note", "id": "x"}, div.Attrs)
	require.Len(t, div.Children, 1)

	p := div.Children[0]
	require.Equal(t, "p", p.Name)
	require.Len(t, p.Children, 3)
	require.Equal(t, Text, p.Children[0].Kind)
	require.Equal(t, "Hello ", p.Children[0].Text)
	require.Equal(t, "b", p.Children[1].Name)
	require.Equal(t, "you", p.Children[1].Children[0].Text)
	require.Equal(t, "!", p.Children[2].Text)
}

func TestParseVoidElements(t *testing.T) {
	nodes := Parse(`<p>a<br>b<img src="x.png"/>c</p>`)
	require.Len(t, nodes, 1)
	children := nodes[0].Children
	require.Len(t, children, 5)
	require.True(t, children[1].Void)
	require.Equal(t, "br", children[1].Name)
	require.True(t, children[3].Void)
	require.Equal(t, "x.png", children[3].Attrs["src"])
	require.Equal(t, "c", children[4].Text)
}

func TestParseSelfClosingCustomTag(t *testing.T) {
	nodes := Parse(`<widget size=3 /><span>x</span>`)
	require.Len(t, nodes, 2)
	require.True(t, nodes[0].Void)
	require.Equal(t, "3", nodes[0].Attrs["size"])
	require.Equal(t, "span", nodes[1].Name)
}

func TestParseBooleanAttribute(t *testing.T) {
	nodes := Parse(`<input disabled type="checkbox">`)
	require.Len(t, nodes, 1)
	require.Equal(t, map[string]string{"disabled": "", "type": "checkbox"}, nodes[0].Attrs)
}

func TestParseComponentIsOpaque(t *testing.T) {
	nodes := Parse(`<div><Chart data="1"><b>not scanned</b></Chart><i>after</i></div>`, "chart")
	require.Len(t, nodes, 1)
	children := nodes[0].Children
	require.Len(t, children, 2)
	require.Equal(t, Component, children[0].Kind)
	require.Equal(t, "chart", children[0].Name)
	require.Equal(t, "<b>not scanned</b>", children[0].Text)
	require.Empty(t, children[0].Children)
	require.Equal(t, "i", children[1].Name)
}

func TestParseUnterminatedComponentKeepsRest(t *testing.T) {
	nodes := Parse(`<x-card>body <b>bold</b>`, "x-card")
	require.Len(t, nodes, 1)
	require.Equal(t, Component, nodes[0].Kind)
	require.Equal(t, "body <b>bold</b>", nodes[0].Text)
}

func TestParseMalformedInput(t *testing.T) {
	nodes := Parse(`</span><div><p>open<em>deep</div>tail`)
	require.Len(t, nodes, 2)
	require.Equal(t, "div", nodes[0].Name)
	p := nodes[0].Children[0]
	require.Equal(t, "p", p.Name)
	require.Equal(t, "em", p.Children[1].Name)
	require.Equal(t, Text, nodes[1].Kind)
	require.Equal(t, "tail", nodes[1].Text)
}

func TestParseSkipsComments(t *testing.T) {
	nodes := Parse("<!-- note -->\n<p>x</p>")
	require.Len(t, nodes, 2)
	require.Equal(t, "\n", nodes[0].Text)
	require.Equal(t, "p", nodes[1].Name)
}

func TestParseDecodesEntities(t *testing.T) {
	nodes := Parse(`<a title="a &amp; b">x &lt; y</a>`)
	require.Len(t, nodes, 1)
	require.Equal(t, "a & b", nodes[0].Attrs["title"])
	require.Equal(t, "x < y", nodes[0].Children[0].Text)
}

func TestIsVoid(t *testing.T) {
	require.True(t, IsVoid("BR"))
	require.True(t, IsVoid("wbr"))
	require.False(t, IsVoid("div"))
}
