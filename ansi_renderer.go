package marktree

import (
	"strconv"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/padding"

	"pkt.systems/marktree/internal/htmlscan"
)

// Layout markers. Render calls produce width independent text carrying
// these private use runes; Layout resolves them into wrapped lines.
const (
	blockMark  = "\uE000" // starts every block
	prefixMark = "\uE001" // ends one line prefix segment
	preMark    = "\uE002" // line is preformatted and never wrapped
	hardBreak  = "\uE003"
	cellMark   = "\uE004" // starts a table cell, followed by its alignment
)

const defaultRuleWidth = 40

// ANSIRenderer renders styled terminal text. Render calls build width
// independent blocks; Layout wraps them to the configured width.
type ANSIRenderer struct {
	theme   Theme
	styles  Styles
	width   int
	opts    *Options
	cleaner *urlCleaner
}

var (
	_ Renderer[string] = (*ANSIRenderer)(nil)
	_ Configurer       = (*ANSIRenderer)(nil)
)

// NewANSIRenderer returns a terminal renderer. A nil theme selects the
// default theme and a width of 0 disables wrapping.
func NewANSIRenderer(theme Theme, width int, opts ...Option) *ANSIRenderer {
	if theme == nil {
		theme = DefaultTheme()
	}
	r := &ANSIRenderer{theme: theme, styles: theme.Styles(), width: max(width, 0)}
	r.Configure(newConfig(opts...))
	return r
}

// Configure implements Configurer.
func (r *ANSIRenderer) Configure(opts *Options) {
	r.opts = opts
	r.cleaner = newURLCleaner(opts)
}

func (r *ANSIRenderer) options() *Options {
	if r.opts == nil {
		r.Configure(newConfig())
	}
	return r.opts
}

// Width returns the wrap width.
func (r *ANSIRenderer) Width() int {
	return r.width
}

var terminalUnsafe = strings.NewReplacer(blockMark, "", prefixMark, "", preMark, "", hardBreak, "", cellMark, "")

// clean removes control characters and layout markers from document text.
func clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if isControlRune(r) {
			return -1
		}
		return r
	}, s)
	return terminalUnsafe.Replace(s)
}

// flow joins inline output into one logical line. Soft line breaks become
// spaces; hard breaks survive as newlines.
func flow(parts []string) string {
	s := strings.ReplaceAll(concat(parts), "\n", " ")
	return strings.ReplaceAll(s, hardBreak, "\n")
}

func block(content string) string {
	return blockMark + content + "\n\n"
}

func trimBlock(s string) string {
	return strings.TrimRight(s, "\n")
}

// prefixLines prepends a prefix segment to every line of s. The first line
// gets first and the others get rest.
func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		p := rest
		if i == 0 {
			p = first
		}
		lines[i] = p + prefixMark + line
	}
	return strings.Join(lines, "\n")
}

func (r *ANSIRenderer) Code(code, lang string, escaped bool) string {
	o := r.options()
	if o.Highlight != nil {
		if out := o.Highlight(code, firstField(lang)); out != "" && out != code {
			code = out
			escaped = true
		}
	}
	lines := strings.Split(strings.TrimRight(code, "\n"), "\n")
	for i, line := range lines {
		if !escaped {
			line = r.styles.CodeBlock.Apply(clean(line))
		}
		lines[i] = preMark + line
	}
	return block(strings.Join(lines, "\n"))
}

func (r *ANSIRenderer) Blockquote(body []string) string {
	bar := r.styles.Quote.Apply(">") + " "
	return block(prefixLines(trimBlock(concat(body)), bar, bar))
}

// HTML shows the text content of a raw HTML block.
func (r *ANSIRenderer) HTML(html string) string {
	nodes := fromScan(htmlscan.Parse(html, r.options().Components...), H)
	text := strings.TrimSpace(Fragment(nodes...).TextContent())
	if text == "" {
		return ""
	}
	return block(r.styles.Text.Apply(clean(text)))
}

func (r *ANSIRenderer) Heading(children []string, level int, raw string) string {
	st := r.styles.Heading[min(max(level, 1), 6)-1]
	marker := st.Apply(strings.Repeat("#", level)) + " "
	return block(marker + prefixMark + st.Apply(flow(children)))
}

func (r *ANSIRenderer) HR() string {
	width := r.width
	if width <= 0 {
		width = defaultRuleWidth
	}
	return block(preMark + r.styles.ThematicBreak.Apply(strings.Repeat("─", width)))
}

func (r *ANSIRenderer) List(body []string, ordered bool, start int) string {
	items := make([]string, 0, len(body))
	for i, item := range body {
		marker := "-"
		if ordered {
			marker = strconv.Itoa(start+i) + "."
		}
		rest := strings.Repeat(" ", len(marker)+1)
		items = append(items, prefixLines(trimBlock(item), r.styles.ListMarker.Apply(marker)+" ", rest))
	}
	return block(strings.Join(items, "\n"))
}

// ListItem lays out item content. Inline runs of tight items are joined
// into lines and nested blocks start on a line of their own.
func (r *ANSIRenderer) ListItem(body []string) string {
	var (
		b   strings.Builder
		run []string
	)
	newline := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
	flush := func() {
		if len(run) == 0 {
			return
		}
		newline()
		b.WriteString(r.styles.Text.Apply(flow(run)))
		run = run[:0]
	}
	for _, part := range body {
		if !strings.HasPrefix(part, blockMark) {
			run = append(run, part)
			continue
		}
		flush()
		newline()
		b.WriteString(part)
	}
	flush()
	return blockMark + trimBlock(b.String()) + "\n"
}

func (r *ANSIRenderer) Checkbox(checked bool) string {
	if checked {
		return r.styles.ListMarker.Apply("[x]")
	}
	return r.styles.ListMarker.Apply("[ ]")
}

func (r *ANSIRenderer) Paragraph(children []string) string {
	return block(r.styles.Text.Apply(flow(children)))
}

type tableCell struct {
	align Align
	text  string
}

func splitRow(row string) []tableCell {
	parts := strings.Split(row, cellMark)
	cells := make([]tableCell, 0, len(parts))
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		cells = append(cells, tableCell{align: Align(p[0] - '0'), text: p[1:]})
	}
	return cells
}

// Table renders an aligned pipe table. Table lines are never wrapped.
func (r *ANSIRenderer) Table(header, body []string) string {
	rows := make([][]tableCell, 0, len(header)+len(body))
	for _, row := range header {
		rows = append(rows, splitRow(row))
	}
	for _, row := range body {
		rows = append(rows, splitRow(row))
	}
	var widths []int
	for _, row := range rows {
		for i, c := range row {
			if i >= len(widths) {
				widths = append(widths, 3)
			}
			widths[i] = max(widths[i], ansi.PrintableRuneWidth(c.text))
		}
	}
	pipe := r.styles.TableBorder.Apply("|")
	line := func(row []tableCell) string {
		var b strings.Builder
		b.WriteString(preMark + pipe)
		for i, w := range widths {
			c := tableCell{}
			if i < len(row) {
				c = row[i]
			}
			b.WriteString(" " + pad(c.text, w, c.align) + " " + pipe)
		}
		return b.String()
	}
	var lines []string
	for i, row := range rows {
		lines = append(lines, line(row))
		if i == len(header)-1 {
			lines = append(lines, r.delimiterRow(widths, row))
		}
	}
	return block(strings.Join(lines, "\n"))
}

func (r *ANSIRenderer) delimiterRow(widths []int, header []tableCell) string {
	var b strings.Builder
	b.WriteString(preMark + "|")
	for i, w := range widths {
		align := AlignNone
		if i < len(header) {
			align = header[i].align
		}
		dashes := strings.Repeat("-", w)
		switch align {
		case AlignLeft:
			dashes = ":" + dashes[1:]
		case AlignRight:
			dashes = dashes[1:] + ":"
		case AlignCenter:
			dashes = ":" + dashes[2:] + ":"
		}
		b.WriteString(" " + dashes + " |")
	}
	return r.styles.TableBorder.Apply(b.String())
}

func pad(s string, width int, align Align) string {
	gap := width - ansi.PrintableRuneWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return padding.String(s, uint(width))
	}
}

func (r *ANSIRenderer) TableRow(cells []string) string {
	return concat(cells)
}

func (r *ANSIRenderer) TableCell(children []string, flags CellFlags) string {
	text := strings.ReplaceAll(flow(children), "\n", " ")
	if flags.Header {
		text = r.styles.Strong.Apply(text)
	}
	return cellMark + string(rune('0'+flags.Align)) + text
}

func (r *ANSIRenderer) Strong(children []string) string {
	return r.styles.Strong.Apply(concat(children))
}

func (r *ANSIRenderer) Em(children []string) string {
	return r.styles.Emphasis.Apply(concat(children))
}

func (r *ANSIRenderer) Codespan(text string) string {
	return r.styles.CodeInline.Apply(clean(text))
}

func (r *ANSIRenderer) Br() string {
	return hardBreak
}

func (r *ANSIRenderer) Del(children []string) string {
	return r.styles.Strike.Apply(concat(children))
}

// Link renders the link text followed by its target, or an OSC 8
// hyperlink when enabled.
func (r *ANSIRenderer) Link(href, title string, children []string) string {
	o := r.options()
	text := concat(children)
	href, ok := r.cleaner.clean(href)
	if !ok {
		return text
	}
	href = clean(unescapeHTML(href))
	styled := r.styles.LinkText.Apply(text)
	if o.OSC8 {
		return osc8Link(href, styled)
	}
	plain := plainText(text)
	if plain == href || "mailto:"+plain == href {
		return styled
	}
	return styled + " (" + r.styles.LinkURL.Apply(fitURL(href, r.width)) + ")"
}

func (r *ANSIRenderer) Image(href, title, alt string) string {
	o := r.options()
	alt = clean(unescapeHTML(alt))
	href, ok := r.cleaner.clean(href)
	if !ok {
		return alt
	}
	href = clean(unescapeHTML(href))
	label := r.styles.LinkText.Apply("[" + alt + "]")
	if o.OSC8 {
		return osc8Link(href, label)
	}
	return label + " (" + r.styles.LinkURL.Apply(fitURL(href, r.width)) + ")"
}

func (r *ANSIRenderer) Text(text string) string {
	return clean(unescapeHTML(text))
}

// InlineHTML drops inline tags; their text content arrives as ordinary text.
func (r *ANSIRenderer) InlineHTML(string) string {
	return ""
}

// Layout joins rendered blocks into terminal lines. Lines are wrapped to
// the renderer width with their container prefixes repeated on every
// continuation line; runs of blank lines collapse into one.
func (r *ANSIRenderer) Layout(blocks []string) string {
	var (
		out   strings.Builder
		blank = true
	)
	hard := r.options().SoftWrap
	for _, line := range strings.Split(concat(blocks), "\n") {
		line = strings.ReplaceAll(line, blockMark, "")
		segs := strings.Split(line, prefixMark)
		content := segs[len(segs)-1]
		prefix := concat(segs[:len(segs)-1])

		if content == "" && strings.TrimSpace(plainText(prefix)) == "" {
			if !blank {
				out.WriteByte('\n')
				blank = true
			}
			continue
		}
		blank = false
		if content == "" {
			out.WriteString(strings.TrimRight(prefix, " ") + "\n")
			continue
		}
		if strings.Contains(content, preMark) {
			out.WriteString(prefix + strings.ReplaceAll(content, preMark, "") + "\n")
			continue
		}
		limit := 0
		if r.width > 0 {
			limit = max(r.width-ansi.PrintableRuneWidth(prefix), 1)
		}
		cont := continuation(segs[:len(segs)-1])
		for i, wrapped := range strings.Split(wrapText(content, limit, hard), "\n") {
			p := prefix
			if i > 0 {
				p = cont
			}
			out.WriteString(strings.TrimRight(p+wrapped, " ") + "\n")
		}
	}
	s := out.String()
	return strings.TrimRight(s, "\n") + "\n"
}

// continuation turns list markers into blanks of the same width and keeps
// quote bars.
func continuation(segs []string) string {
	var b strings.Builder
	for _, seg := range segs {
		if strings.HasPrefix(plainText(seg), ">") {
			b.WriteString(seg)
			continue
		}
		b.WriteString(strings.Repeat(" ", ansi.PrintableRuneWidth(seg)))
	}
	return b.String()
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
