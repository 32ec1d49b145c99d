package marktree

import (
	"strconv"
	"strings"

	"pkt.systems/marktree/internal/htmlscan"
)

// TreeRenderer renders Node trees. Text nodes hold decoded text; raw HTML
// blocks are scanned into element nodes and inline tags stay raw.
type TreeRenderer struct {
	opts    *Options
	cleaner *urlCleaner
	h       NodeFunc
	pos     *Position
}

var (
	_ Renderer[*Node] = (*TreeRenderer)(nil)
	_ Configurer      = (*TreeRenderer)(nil)
	_ Positioner      = (*TreeRenderer)(nil)
)

func NewTreeRenderer(opts ...Option) *TreeRenderer {
	r := &TreeRenderer{}
	r.Configure(newConfig(opts...))
	return r
}

// Configure implements Configurer.
func (r *TreeRenderer) Configure(opts *Options) {
	r.opts = opts
	r.cleaner = newURLCleaner(opts)
	r.h = opts.NodeFunc
	if r.h == nil {
		r.h = H
	}
	r.pos = nil
}

// SetPosition implements Positioner.
func (r *TreeRenderer) SetPosition(pos *Position) {
	r.pos = pos
}

func (r *TreeRenderer) options() *Options {
	if r.opts == nil {
		r.Configure(newConfig())
	}
	return r.opts
}

// block finishes a block node by attaching the pending source position.
func (r *TreeRenderer) block(n *Node) *Node {
	pos := r.pos
	r.pos = nil
	if pos != nil && r.options().Positions {
		p := *pos
		n.Position = &p
	}
	return n
}

func (r *TreeRenderer) el(tag string, attrs map[string]string, children ...*Node) *Node {
	r.options()
	return r.h(tag, attrs, children...)
}

func (r *TreeRenderer) scan(markup string) []*Node {
	return fromScan(htmlscan.Parse(markup, r.options().Components...), r.h)
}

// Code renders a code block. Highlighted output is markup and is scanned
// into nodes.
func (r *TreeRenderer) Code(code, lang string, escaped bool) *Node {
	o := r.options()
	if f := strings.Fields(lang); len(f) > 0 {
		lang = f[0]
	} else {
		lang = ""
	}
	if o.Highlight != nil {
		if out := o.Highlight(code, lang); out != "" && out != code {
			escaped = true
			code = out
		}
	}
	var attrs map[string]string
	if lang != "" {
		attrs = map[string]string{"class": o.LangPrefix + lang}
	}
	var body []*Node
	if escaped {
		body = r.scan(code)
	} else {
		body = []*Node{TextNode(code)}
	}
	return r.block(r.el("pre", nil, r.el("code", attrs, body...)))
}

func (r *TreeRenderer) Blockquote(body []*Node) *Node {
	return r.block(r.el("blockquote", nil, body...))
}

// HTML scans a raw HTML block. The result is a fragment because a block
// may hold several top level elements.
func (r *TreeRenderer) HTML(html string) *Node {
	return r.block(Fragment(r.scan(html)...))
}

func (r *TreeRenderer) Heading(children []*Node, level int, raw string) *Node {
	o := r.options()
	var attrs map[string]string
	if o.HeaderIDs {
		attrs = map[string]string{"id": o.HeaderPrefix + slugify(raw)}
	}
	return r.block(r.el("h"+strconv.Itoa(level), attrs, children...))
}

func (r *TreeRenderer) HR() *Node {
	return r.block(r.el("hr", nil))
}

func (r *TreeRenderer) List(body []*Node, ordered bool, start int) *Node {
	if !ordered {
		return r.block(r.el("ul", nil, body...))
	}
	var attrs map[string]string
	if start != 1 {
		attrs = map[string]string{"start": strconv.Itoa(start)}
	}
	return r.block(r.el("ol", attrs, body...))
}

func (r *TreeRenderer) ListItem(body []*Node) *Node {
	return r.block(r.el("li", nil, body...))
}

func (r *TreeRenderer) Checkbox(checked bool) *Node {
	attrs := map[string]string{"disabled": "", "type": "checkbox"}
	if checked {
		attrs["checked"] = ""
	}
	return r.el("input", attrs)
}

func (r *TreeRenderer) Paragraph(children []*Node) *Node {
	return r.block(r.el("p", nil, children...))
}

func (r *TreeRenderer) Table(header, body []*Node) *Node {
	sections := []*Node{r.el("thead", nil, header...)}
	if len(body) > 0 {
		sections = append(sections, r.el("tbody", nil, body...))
	}
	return r.block(r.el("table", nil, sections...))
}

func (r *TreeRenderer) TableRow(cells []*Node) *Node {
	return r.el("tr", nil, cells...)
}

func (r *TreeRenderer) TableCell(children []*Node, flags CellFlags) *Node {
	tag := "td"
	if flags.Header {
		tag = "th"
	}
	var attrs map[string]string
	if flags.Align != AlignNone {
		attrs = map[string]string{"align": flags.Align.String()}
	}
	return r.el(tag, attrs, children...)
}

func (r *TreeRenderer) Strong(children []*Node) *Node {
	return r.el("strong", nil, children...)
}

func (r *TreeRenderer) Em(children []*Node) *Node {
	return r.el("em", nil, children...)
}

func (r *TreeRenderer) Codespan(text string) *Node {
	return r.el("code", nil, TextNode(text))
}

func (r *TreeRenderer) Br() *Node {
	return r.el("br", nil)
}

func (r *TreeRenderer) Del(children []*Node) *Node {
	return r.el("del", nil, children...)
}

// Link renders an anchor. A rejected target leaves the link text as a
// fragment.
func (r *TreeRenderer) Link(href, title string, children []*Node) *Node {
	r.options()
	href, ok := r.cleaner.clean(href)
	if !ok {
		return Fragment(children...)
	}
	attrs := map[string]string{"href": unescapeHTML(href)}
	if title != "" {
		attrs["title"] = unescapeHTML(title)
	}
	return r.el("a", attrs, children...)
}

func (r *TreeRenderer) Image(href, title, alt string) *Node {
	r.options()
	alt = unescapeHTML(alt)
	href, ok := r.cleaner.clean(href)
	if !ok {
		return TextNode(alt)
	}
	attrs := map[string]string{"src": unescapeHTML(href), "alt": alt}
	if title != "" {
		attrs["title"] = unescapeHTML(title)
	}
	return r.el("img", attrs)
}

func (r *TreeRenderer) Text(text string) *Node {
	return TextNode(unescapeHTML(text))
}

func (r *TreeRenderer) InlineHTML(html string) *Node {
	return &Node{Type: NodeRaw, Text: html}
}
