package marktree

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"pkt.systems/marktree/internal/htmlscan"
)

// NodeType tells what a Node holds.
type NodeType uint8

const (
	// NodeElement is a tag with attributes and children.
	NodeElement NodeType = iota
	// NodeText is decoded character data.
	NodeText
	// NodeRaw is markup passed through untouched, such as an inline tag.
	NodeRaw
	// NodeFragment groups sibling nodes without a tag of its own.
	NodeFragment
	// NodeComponent is an opaque element from the components allow-list.
	// Text holds its inner markup.
	NodeComponent
)

func (t NodeType) String() string {
	switch t {
	case NodeText:
		return "text"
	case NodeRaw:
		return "raw"
	case NodeFragment:
		return "fragment"
	case NodeComponent:
		return "component"
	default:
		return "element"
	}
}

func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Node is the output value of the tree renderer. Nodes are built once per
// render call and never mutated afterwards.
type Node struct {
	Type     NodeType          `json:"type" yaml:"type"`
	Tag      string            `json:"tag,omitempty" yaml:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []*Node           `json:"children,omitempty" yaml:"children,omitempty"`
	Text     string            `json:"text,omitempty" yaml:"text,omitempty"`
	Void     bool              `json:"void,omitempty" yaml:"void,omitempty"`
	Position *Position         `json:"position,omitempty" yaml:"position,omitempty"`
}

// NodeFunc builds an element node. H is the default.
type NodeFunc func(tag string, attrs map[string]string, children ...*Node) *Node

// H builds an element. Empty attribute maps are dropped and void elements
// are flagged.
func H(tag string, attrs map[string]string, children ...*Node) *Node {
	if len(attrs) == 0 {
		attrs = nil
	}
	return &Node{
		Type:     NodeElement,
		Tag:      tag,
		Attrs:    attrs,
		Children: children,
		Void:     htmlscan.IsVoid(tag),
	}
}

// TextNode builds a text node.
func TextNode(text string) *Node {
	return &Node{Type: NodeText, Text: text}
}

// Fragment groups nodes.
func Fragment(children ...*Node) *Node {
	return &Node{Type: NodeFragment, Children: children}
}

// Equal reports whether two trees have the same structure and content.
// Positions are provenance only and are not compared.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Type != o.Type || n.Tag != o.Tag || n.Text != o.Text || n.Void != o.Void {
		return false
	}
	if !maps.Equal(n.Attrs, o.Attrs) || len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// EqualNodes compares two node sequences with Node.Equal.
func EqualNodes(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// TextContent concatenates the text below n. Raw markup is skipped.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Type == NodeText {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.writeText(b)
	}
}

// Walk calls fn for n and every node below it in document order. Returning
// false skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// ToDOM converts nodes to golang.org/x/net/html nodes. Fragments are
// flattened. Raw and component markup is parsed as a body fragment.
func ToDOM(nodes []*Node) ([]*html.Node, error) {
	var out []*html.Node
	for _, n := range nodes {
		dom, err := n.toDOM()
		if err != nil {
			return nil, err
		}
		out = append(out, dom...)
	}
	return out, nil
}

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

func (n *Node) toDOM() ([]*html.Node, error) {
	switch n.Type {
	case NodeText:
		return []*html.Node{{Type: html.TextNode, Data: n.Text}}, nil
	case NodeRaw:
		return html.ParseFragment(strings.NewReader(n.Text), bodyContext)
	case NodeFragment:
		return ToDOM(n.Children)
	}
	el := &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: atom.Lookup([]byte(n.Tag))}
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		el.Attr = append(el.Attr, html.Attribute{Key: k, Val: n.Attrs[k]})
	}
	if n.Type == NodeComponent {
		inner, err := html.ParseFragment(strings.NewReader(n.Text), el)
		if err != nil {
			return nil, err
		}
		for _, c := range inner {
			el.AppendChild(c)
		}
		return []*html.Node{el}, nil
	}
	children, err := ToDOM(n.Children)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		el.AppendChild(c)
	}
	return []*html.Node{el}, nil
}

// RenderNodes writes nodes as HTML.
func RenderNodes(w io.Writer, nodes []*Node) error {
	dom, err := ToDOM(nodes)
	if err != nil {
		return err
	}
	for _, n := range dom {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("render %s node: %w", n.Data, err)
		}
	}
	return nil
}

// fromScan converts scanned HTML into tree nodes.
func fromScan(nodes []*htmlscan.Node, h NodeFunc) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, s := range nodes {
		switch s.Kind {
		case htmlscan.Text:
			out = append(out, TextNode(s.Text))
		case htmlscan.Component:
			out = append(out, &Node{Type: NodeComponent, Tag: s.Name, Attrs: s.Attrs, Text: s.Text})
		default:
			n := h(s.Name, s.Attrs, fromScan(s.Children, h)...)
			n.Void = n.Void || s.Void
			out = append(out, n)
		}
	}
	return out
}
