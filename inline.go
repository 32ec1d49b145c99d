package marktree

import (
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

var (
	openingSingleQuote = search(`(^|[-\u2014/(\[{"\s])'`, regexp2.None)
	openingDoubleQuote = search(`(^|[-\u2014/(\[{\u2018\s])"`, regexp2.None)
)

// inlineLexer compiles span level markup straight into renderer calls.
type inlineLexer[T any] struct {
	opts     *Options
	rules    *inlineRules
	links    Links
	renderer Renderer[T]
	inLink   bool
	logger   *slog.Logger
}

func newInlineLexer[T any](links Links, r Renderer[T], opts *Options) (*inlineLexer[T], error) {
	if links == nil {
		return nil, ErrNoLinks
	}
	return &inlineLexer[T]{
		opts:     opts,
		rules:    inlineGrammars[inlineProfile(opts)],
		links:    links,
		renderer: r,
		logger:   opts.Logger,
	}, nil
}

func (l *inlineLexer[T]) exec(p pattern, src []rune) *match {
	m, err := p.exec(src)
	if err != nil {
		l.logger.Debug("inline rule abandoned", "error", err)
		return nil
	}
	return m
}

// output compiles text into the renderer's nodes.
func (l *inlineLexer[T]) output(text string) ([]T, error) {
	var (
		out  []T
		r    = l.renderer
		all  = []rune(text)
		src  = all
		scan = newSpanScan(all)
		rule = l.rules
	)
	for len(src) > 0 {
		at := len(all) - len(src)

		// escape
		if m := l.exec(rule.escape, src); m != nil {
			src = src[m.n:]
			out = append(out, r.Text(m.group(1)))
			continue
		}

		// autolink
		if m := l.exec(rule.autolink, src); m != nil {
			src = src[m.n:]
			text, href := m.group(1), m.group(1)
			if m.group(2) == "@" {
				text = l.mangle(text)
				href = "mailto:" + text
			}
			out = append(out, r.Link(href, "", []T{r.Text(text)}))
			continue
		}

		// bare url
		if !l.inLink && rule.url.re != nil {
			prefixed := urlPrefix(src)
			email, sign := scan.emailAt(at)
			if prefixed || email {
				if m := l.exec(rule.url, src); m != nil {
					link := backpedal(m.text())
					src = src[len([]rune(link)):]
					href := link
					switch {
					case m.group(2) == "@":
						href = "mailto:" + link
					case m.group(1) == "www.":
						href = "http://" + link
					}
					out = append(out, r.Link(href, "", []T{r.Text(link)}))
					continue
				}
				if !prefixed {
					scan.rejectEmail(sign)
				}
			}
		}

		// raw tag
		if src[0] == '<' {
			if closer, from := tagCloser(src); scan.has(closer, at+from) {
				if m := l.exec(rule.tag, src); m != nil {
					tag := m.text()
					if !l.inLink && anchorOpen.test(tag) {
						l.inLink = true
					} else if l.inLink && anchorClose.test(tag) {
						l.inLink = false
					}
					src = src[m.n:]
					switch {
					case l.opts.Sanitize && l.opts.Sanitizer != nil:
						out = append(out, r.InlineHTML(l.opts.Sanitizer(tag)))
					case l.opts.Sanitize:
						out = append(out, r.Text(tag))
					default:
						out = append(out, r.InlineHTML(tag))
					}
					continue
				}
			}
		}

		// inline link
		if m := l.exec(rule.link, src); m != nil {
			src = src[m.n:]
			href, title := m.group(2), ""
			if l.opts.Pedantic {
				if pm := pedanticLinkTitle.find(href); pm != nil {
					href, title = pm.group(1), pm.group(3)
				}
			} else if t := m.group(3); len(t) >= 2 {
				title = t[1 : len(t)-1]
			}
			href = angleWrapped.replace(strings.TrimSpace(href), "$1")
			node, err := l.outputLink(m, Link{Href: unescapeBackslashes(href), Title: unescapeBackslashes(title)})
			if err != nil {
				return nil, err
			}
			out = append(out, node)
			continue
		}

		// reference and shortcut links
		m := l.exec(rule.reflink, src)
		if m == nil {
			m = l.exec(rule.nolink, src)
		}
		if m != nil {
			label := m.group(2)
			if label == "" {
				label = m.group(1)
			}
			link, ok := l.links.Lookup(label)
			if !ok || link.Href == "" {
				out = append(out, r.Text(string(src[0])))
				src = src[1:]
				continue
			}
			src = src[m.n:]
			node, err := l.outputLink(m, link)
			if err != nil {
				return nil, err
			}
			out = append(out, node)
			continue
		}

		// strong
		if start, stop, end, ok := matchDelims(rule.strong, scan, at); ok {
			children, err := l.output(string(all[start:stop]))
			if err != nil {
				return nil, err
			}
			src = all[end:]
			out = append(out, r.Strong(children))
			continue
		}

		// em
		if start, stop, end, ok := matchDelims(rule.em, scan, at); ok {
			children, err := l.output(string(all[start:stop]))
			if err != nil {
				return nil, err
			}
			src = all[end:]
			out = append(out, r.Em(children))
			continue
		}

		// code
		if src[0] == '`' {
			code, n, end, ok := codeSpan(scan, at)
			if !ok {
				src = src[n:]
				out = append(out, r.Text(strings.Repeat("`", n)))
				continue
			}
			src = all[end:]
			out = append(out, r.Codespan(code))
			continue
		}

		// br
		if m := l.exec(rule.br, src); m != nil {
			src = src[m.n:]
			out = append(out, r.Br())
			continue
		}

		// del
		if rule.del && src[0] == '~' {
			if start, stop, end, ok := strike(scan, at); ok {
				children, err := l.output(string(all[start:stop]))
				if err != nil {
					return nil, err
				}
				src = all[end:]
				out = append(out, r.Del(children))
				continue
			}
		}

		// text
		end := rule.text.match(scan, at)
		out = append(out, r.Text(l.smartypants(string(all[at:end]))))
		src = all[end:]
	}
	return out, nil
}

// outputLink emits a link, or an image when the match starts with a bang.
// Nested links are suppressed while the link text compiles.
func (l *inlineLexer[T]) outputLink(m *match, link Link) (T, error) {
	if !strings.HasPrefix(m.text(), "!") {
		l.inLink = true
		children, err := l.output(m.group(1))
		l.inLink = false
		if err != nil {
			var zero T
			return zero, err
		}
		return l.renderer.Link(link.Href, link.Title, children), nil
	}
	return l.renderer.Image(link.Href, link.Title, m.group(1)), nil
}

// backpedal drops trailing punctuation that is unlikely to belong to a URL
// until the candidate stops shrinking.
func backpedal(link string) string {
	for {
		m := urlBackpedal.find(link)
		if m == nil || m.text() == link {
			return link
		}
		link = m.text()
	}
}

func unescapeBackslashes(text string) string {
	if text == "" || !strings.Contains(text, `\`) {
		return text
	}
	return backslashEscapes.replace(text, "$1")
}

func (l *inlineLexer[T]) smartypants(text string) string {
	if !l.opts.Smartypants {
		return text
	}
	text = strings.ReplaceAll(text, "---", "\u2014")
	text = strings.ReplaceAll(text, "--", "\u2013")
	text = openingSingleQuote.replace(text, "${1}\u2018")
	text = strings.ReplaceAll(text, "'", "\u2019")
	text = openingDoubleQuote.replace(text, "${1}\u201c")
	text = strings.ReplaceAll(text, `"`, "\u201d")
	return strings.ReplaceAll(text, "...", "\u2026")
}

// mangle writes every character as a numeric character reference, picking
// decimal or hex at random.
func (l *inlineLexer[T]) mangle(text string) string {
	if !l.opts.Mangle {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) * 6)
	for _, ch := range text {
		b.WriteString("&#")
		if rand.IntN(2) == 1 {
			b.WriteByte('x')
			b.WriteString(strconv.FormatInt(int64(ch), 16))
		} else {
			b.WriteString(strconv.Itoa(int(ch)))
		}
		b.WriteByte(';')
	}
	return b.String()
}
