package marktree

import (
	"strconv"
	"strings"
)

// HTMLRenderer renders HTML markup strings.
type HTMLRenderer struct {
	opts    *Options
	cleaner *urlCleaner
	pos     *Position
}

var (
	_ Renderer[string] = (*HTMLRenderer)(nil)
	_ Configurer       = (*HTMLRenderer)(nil)
	_ Positioner       = (*HTMLRenderer)(nil)
)

// NewHTMLRenderer returns a renderer configured with opts. The pipeline
// reconfigures it with the options of every call it is used in.
func NewHTMLRenderer(opts ...Option) *HTMLRenderer {
	r := &HTMLRenderer{}
	r.Configure(newConfig(opts...))
	return r
}

// Configure implements Configurer. It also drops the resolved base URL cache.
func (r *HTMLRenderer) Configure(opts *Options) {
	r.opts = opts
	r.cleaner = newURLCleaner(opts)
	r.pos = nil
}

// SetPosition implements Positioner.
func (r *HTMLRenderer) SetPosition(pos *Position) {
	r.pos = pos
}

func (r *HTMLRenderer) options() *Options {
	if r.opts == nil {
		r.Configure(newConfig())
	}
	return r.opts
}

// lines returns the source line attribute for the block being rendered.
func (r *HTMLRenderer) lines() string {
	pos := r.pos
	r.pos = nil
	if pos == nil || !r.options().Positions {
		return ""
	}
	return ` data-lines="` + strconv.Itoa(pos.StartLine) + "-" + strconv.Itoa(pos.EndLine) + `"`
}

func (r *HTMLRenderer) Code(code, lang string, escaped bool) string {
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
	if !escaped {
		code = escapeHTML(code, true)
	}
	if lang == "" {
		return "<pre" + r.lines() + "><code>" + code + "</code></pre>"
	}
	return "<pre" + r.lines() + `><code class="` + o.LangPrefix + escapeHTML(lang, true) + `">` +
		code + "</code></pre>\n"
}

func (r *HTMLRenderer) Blockquote(body []string) string {
	return "<blockquote" + r.lines() + ">\n" + concat(body) + "</blockquote>\n"
}

func (r *HTMLRenderer) HTML(html string) string {
	r.pos = nil
	return html
}

func (r *HTMLRenderer) Heading(children []string, level int, raw string) string {
	o := r.options()
	tag := "h" + strconv.Itoa(level)
	var b strings.Builder
	b.WriteString("<" + tag)
	if o.HeaderIDs {
		b.WriteString(` id="` + o.HeaderPrefix + slugify(raw) + `"`)
	}
	b.WriteString(r.lines())
	b.WriteString(">")
	b.WriteString(concat(children))
	b.WriteString("</" + tag + ">\n")
	return b.String()
}

func (r *HTMLRenderer) HR() string {
	if r.options().XHTML {
		return "<hr" + r.lines() + "/>\n"
	}
	return "<hr" + r.lines() + ">\n"
}

func (r *HTMLRenderer) List(body []string, ordered bool, start int) string {
	tag := "ul"
	attrs := ""
	if ordered {
		tag = "ol"
		if start != 1 {
			attrs = ` start="` + strconv.Itoa(start) + `"`
		}
	}
	return "<" + tag + attrs + r.lines() + ">\n" + concat(body) + "</" + tag + ">\n"
}

func (r *HTMLRenderer) ListItem(body []string) string {
	return "<li" + r.lines() + ">" + concat(body) + "</li>\n"
}

func (r *HTMLRenderer) Checkbox(checked bool) string {
	out := "<input "
	if checked {
		out += `checked="" `
	}
	out += `disabled="" type="checkbox"`
	if r.options().XHTML {
		out += " /"
	}
	return out + ">"
}

func (r *HTMLRenderer) Paragraph(children []string) string {
	return "<p" + r.lines() + ">" + concat(children) + "</p>\n"
}

func (r *HTMLRenderer) Table(header, body []string) string {
	var b strings.Builder
	b.WriteString("<table" + r.lines() + ">\n<thead>\n")
	b.WriteString(concat(header))
	b.WriteString("</thead>\n")
	if rows := concat(body); rows != "" {
		b.WriteString("<tbody>" + rows + "</tbody>")
	}
	b.WriteString("</table>\n")
	return b.String()
}

func (r *HTMLRenderer) TableRow(cells []string) string {
	return "<tr>\n" + concat(cells) + "</tr>\n"
}

func (r *HTMLRenderer) TableCell(children []string, flags CellFlags) string {
	tag := "td"
	if flags.Header {
		tag = "th"
	}
	open := "<" + tag + ">"
	if flags.Align != AlignNone {
		open = "<" + tag + ` align="` + flags.Align.String() + `">`
	}
	return open + concat(children) + "</" + tag + ">\n"
}

func (r *HTMLRenderer) Strong(children []string) string {
	return "<strong>" + concat(children) + "</strong>"
}

func (r *HTMLRenderer) Em(children []string) string {
	return "<em>" + concat(children) + "</em>"
}

func (r *HTMLRenderer) Codespan(text string) string {
	return "<code>" + escapeHTML(text, true) + "</code>"
}

func (r *HTMLRenderer) Br() string {
	if r.options().XHTML {
		return "<br/>"
	}
	return "<br>"
}

func (r *HTMLRenderer) Del(children []string) string {
	return "<del>" + concat(children) + "</del>"
}

// Link renders an anchor. A target rejected by sanitizing renders as its
// text alone.
func (r *HTMLRenderer) Link(href, title string, children []string) string {
	r.options()
	text := concat(children)
	href, ok := r.cleaner.clean(href)
	if !ok {
		return text
	}
	out := `<a href="` + escapeHTML(href, false) + `"`
	if title != "" {
		out += ` title="` + escapeHTML(title, false) + `"`
	}
	return out + ">" + text + "</a>"
}

func (r *HTMLRenderer) Image(href, title, alt string) string {
	o := r.options()
	href, ok := r.cleaner.clean(href)
	if !ok {
		return escapeHTML(alt, false)
	}
	out := `<img src="` + escapeHTML(href, false) + `" alt="` + escapeHTML(alt, false) + `"`
	if title != "" {
		out += ` title="` + escapeHTML(title, false) + `"`
	}
	if o.XHTML {
		return out + "/>"
	}
	return out + ">"
}

func (r *HTMLRenderer) Text(text string) string {
	return escapeHTML(text, false)
}

func (r *HTMLRenderer) InlineHTML(html string) string {
	return html
}
