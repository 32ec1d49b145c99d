package marktree

// Renderer builds output of type T. The parser calls one method per block
// or span and hands the already rendered children to the enclosing call.
// Implementations must not re-parse their input.
type Renderer[T any] interface {
	// Block level.
	Code(code, lang string, escaped bool) T
	Blockquote(body []T) T
	HTML(html string) T
	Heading(children []T, level int, raw string) T
	HR() T
	List(body []T, ordered bool, start int) T
	ListItem(body []T) T
	Checkbox(checked bool) T
	Paragraph(children []T) T
	Table(header, body []T) T
	TableRow(cells []T) T
	TableCell(children []T, flags CellFlags) T

	// Span level.
	Strong(children []T) T
	Em(children []T) T
	Codespan(text string) T
	Br() T
	Del(children []T) T
	Link(href, title string, children []T) T
	Image(href, title, alt string) T
	Text(text string) T
	InlineHTML(html string) T
}

// CellFlags describes a table cell.
type CellFlags struct {
	Header bool
	Align  Align
}

// Configurer is implemented by renderers that read options. The pipeline
// calls Configure once per parse before the first render call.
type Configurer interface {
	Configure(opts *Options)
}

// Positioner is implemented by renderers that annotate output with source
// lines. SetPosition is called right before the block render call the
// position belongs to, and with nil for blocks without one.
type Positioner interface {
	SetPosition(pos *Position)
}

// TextRenderer renders plain text. It is used for heading slugs and for
// plain text output.
type TextRenderer struct{}

var _ Renderer[string] = TextRenderer{}

func (TextRenderer) Code(code, _ string, _ bool) string { return code + "\n\n" }
func (TextRenderer) Blockquote(body []string) string { return concat(body) }
func (TextRenderer) HTML(string) string { return "" }
func (TextRenderer) Heading(children []string, _ int, _ string) string {
	return concat(children) + "\n\n"
}
func (TextRenderer) HR() string { return "\n" }
func (TextRenderer) List(body []string, _ bool, _ int) string {
	return concat(body) + "\n"
}
func (TextRenderer) ListItem(body []string) string {
	return concat(body) + "\n"
}
func (TextRenderer) Checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}
func (TextRenderer) Paragraph(children []string) string { return concat(children) + "\n\n" }
func (TextRenderer) Table(header, body []string) string { return concat(header) + concat(body) + "\n" }
func (TextRenderer) TableRow(cells []string) string { return concat(cells) + "\n" }
func (TextRenderer) TableCell(children []string, flags CellFlags) string {
	return concat(children) + "\t"
}
func (TextRenderer) Strong(children []string) string { return concat(children) }
func (TextRenderer) Em(children []string) string { return concat(children) }
func (TextRenderer) Codespan(text string) string { return text }
func (TextRenderer) Br() string { return "" }
func (TextRenderer) Del(children []string) string { return concat(children) }
func (TextRenderer) Link(_, _ string, children []string) string { return concat(children) }
func (TextRenderer) Image(_, _, alt string) string { return alt }
func (TextRenderer) Text(text string) string { return text }
func (TextRenderer) InlineHTML(string) string { return "" }

func concat(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	b := make([]byte, 0, n)
	for _, p := range parts {
		b = append(b, p...)
	}
	return string(b)
}
