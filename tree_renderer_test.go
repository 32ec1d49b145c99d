package marktree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustTree(t *testing.T, src string, opts ...Option) []*Node {
	t.Helper()
	nodes, err := Tree(src, opts...)
	require.NoError(t, err)
	return nodes
}

func find(nodes []*Node, match func(*Node) bool) *Node {
	var found *Node
	for _, n := range nodes {
		n.Walk(func(c *Node) bool {
			if found == nil && match(c) {
				found = c
			}
			return found == nil
		})
	}
	return found
}

func byTag(tag string) func(*Node) bool {
	return func(n *Node) bool { return n.Type == NodeElement && n.Tag == tag }
}

func TestTreeBlocks(t *testing.T) {
	got := mustTree(t, "# Hi\n\nsome *em* text\n\n```go\nx<y\n```\n")
	want := []*Node{
		H("h1", map[string]string{"id": "hi"}, TextNode("Hi")),
		H("p", nil, TextNode("some "), H("em", nil, TextNode("em")), TextNode(" text")),
		H("pre", nil, H("code", map[string]string{"class": "language-go"}, TextNode("x<y"))),
	}
	require.True(t, EqualNodes(want, got), "got %+v", got)
}

func TestTreeTaskItem(t *testing.T) {
	got := mustTree(t, "- [x] done\n")
	want := H("ul", nil, H("li", nil,
		H("input", map[string]string{"checked": "", "disabled": "", "type": "checkbox"}),
		TextNode(" "),
		TextNode("done"),
	))
	require.Len(t, got, 1)
	require.True(t, want.Equal(got[0]), "got %+v", got[0])
	require.True(t, got[0].Children[0].Children[0].Void)
}

func TestTreeDecodesText(t *testing.T) {
	got := mustTree(t, "a &lt; b & [l](/x?a=1&amp;b=2 \"t &amp; u\")")
	require.Equal(t, "a < b & l", got[0].TextContent())
	link := find(got, byTag("a"))
	require.NotNil(t, link)
	require.Equal(t, "/x?a=1&b=2", link.Attrs["href"])
	require.Equal(t, "t & u", link.Attrs["title"])
}

func TestTreeTable(t *testing.T) {
	got := mustTree(t, "a|b\n--|:-:\n1|2\n")
	table := got[0]
	require.Equal(t, "table", table.Tag)
	require.Len(t, table.Children, 2)
	require.Equal(t, "thead", table.Children[0].Tag)
	require.Equal(t, "tbody", table.Children[1].Tag)
	th := find(got, byTag("th"))
	require.Nil(t, th.Attrs)
	td := table.Children[1].Children[0].Children[1]
	require.Equal(t, map[string]string{"align": "center"}, td.Attrs)

	got = mustTree(t, "a|b\n--|--\n")
	require.Len(t, got[0].Children, 1)
}

func TestTreeRawHTMLIsScanned(t *testing.T) {
	got := mustTree(t, "<div class=\"note\">hi <b>you</b></div>\n")
	require.Len(t, got, 1)
	require.Equal(t, NodeFragment, got[0].Type)
	div := find(got, byTag("div"))
	require.NotNil(t, div)
	require.Equal(t, map[string]string{"class": "note"}, div.Attrs)
	require.NotNil(t, find(got, byTag("b")))
}

func TestTreeInlineHTMLStaysRaw(t *testing.T) {
	got := mustTree(t, "a <kbd>b</kbd>")
	raw := find(got, func(n *Node) bool { return n.Type == NodeRaw })
	require.NotNil(t, raw)
	require.Equal(t, "<kbd>", raw.Text)
}

func TestTreeComponents(t *testing.T) {
	src := "<div><Chart data=\"1\"><b>kept</b></Chart></div>\n"
	got := mustTree(t, src, WithComponents("chart"))
	comp := find(got, func(n *Node) bool { return n.Type == NodeComponent })
	require.NotNil(t, comp)
	require.Equal(t, "<b>kept</b>", comp.Text)
	require.Equal(t, "1", comp.Attrs["data"])

	got = mustTree(t, src)
	require.Nil(t, find(got, func(n *Node) bool { return n.Type == NodeComponent }))
	require.NotNil(t, find(got, byTag("b")))
}

func TestTreeNodeFunc(t *testing.T) {
	var tags []string
	h := func(tag string, attrs map[string]string, children ...*Node) *Node {
		tags = append(tags, tag)
		n := H(tag, attrs, children...)
		if tag == "p" {
			n.Attrs = map[string]string{"class": "para"}
		}
		return n
	}
	got := mustTree(t, "# A\n\nb", WithNodeFunc(h))
	require.Equal(t, map[string]string{"class": "para"}, got[1].Attrs)
	require.Equal(t, []string{"h1", "p"}, tags)
}

func TestTreePositions(t *testing.T) {
	src := "# A\n\nline\nline\n\n> q\n"
	got := mustTree(t, src, WithPositions(true))
	require.Len(t, got, 3)
	require.Equal(t, &Position{StartLine: 1, EndLine: 1}, got[0].Position)
	require.Equal(t, &Position{StartLine: 3, EndLine: 4}, got[1].Position)
	require.Equal(t, 6, got[2].Position.StartLine)

	plain := mustTree(t, src)
	require.Nil(t, plain[0].Position)
	require.True(t, EqualNodes(plain, got))
}

func TestNodeEqual(t *testing.T) {
	a := H("p", map[string]string{"x": "1"}, TextNode("t"))
	require.True(t, a.Equal(H("p", map[string]string{"x": "1"}, TextNode("t"))))
	require.False(t, a.Equal(H("p", map[string]string{"x": "2"}, TextNode("t"))))
	require.False(t, a.Equal(H("p", nil, TextNode("t"))))
	require.False(t, a.Equal(H("div", map[string]string{"x": "1"}, TextNode("t"))))
	require.False(t, a.Equal(nil))
	var none *Node
	require.True(t, none.Equal(nil))
	require.Nil(t, H("p", map[string]string{}).Attrs)
}

func TestToDOMAndRenderNodes(t *testing.T) {
	got := mustTree(t, "# A\n\nx &amp; *y*")
	dom, err := ToDOM(got)
	require.NoError(t, err)
	require.Len(t, dom, 2)
	require.Equal(t, html.ElementNode, dom[0].Type)
	require.Equal(t, "h1", dom[0].Data)

	var buf bytes.Buffer
	require.NoError(t, RenderNodes(&buf, got))
	require.Equal(t, `<h1 id="a">A</h1><p>x &amp; <em>y</em></p>`, buf.String())
}

func TestToDOMParsesRawMarkup(t *testing.T) {
	nodes := []*Node{H("p", nil, TextNode("a "), &Node{Type: NodeRaw, Text: "<b>"}, TextNode("x"))}
	var buf bytes.Buffer
	require.NoError(t, RenderNodes(&buf, nodes))
	require.Contains(t, buf.String(), "<p>a <b></b>x</p>")
}
