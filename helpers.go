package marktree

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	bareAmpPattern  = search(`&(?!#?\w+;)`, regexp2.None)
	markupEscaper   = strings.NewReplacer("<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;")
	fullEscaper     = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;")
	originFreeURL   = search(`^$|^[a-z][a-z0-9+.-]*:|^[?#]`, regexp2.IgnoreCase)
	bareOriginURL   = search(`^[^:]+:/*[^/]*$`, regexp2.None)
	schemePrefix    = search(`:[\s\S]*`, regexp2.None)
	authorityPrefix = search(`(:/*[^/]*)[\s\S]*`, regexp2.None)
)

// escapeHTML escapes markup characters. With encode false, ampersands that
// already start an entity or character reference are kept.
func escapeHTML(s string, encode bool) string {
	if !strings.ContainsAny(s, `&<>"'`) {
		return s
	}
	if encode {
		return fullEscaper.Replace(s)
	}
	if strings.IndexByte(s, '&') >= 0 {
		s = bareAmpPattern.replace(s, "&amp;")
	}
	return markupEscaper.Replace(s)
}

// unescapeHTML decodes entities and numeric character references.
func unescapeHTML(s string) string {
	if strings.IndexByte(s, '&') < 0 {
		return s
	}
	return html.UnescapeString(s)
}

// rtrim removes trailing runs of c.
func rtrim(s string, c byte) string {
	i := len(s)
	for i > 0 && s[i-1] == c {
		i--
	}
	return s[:i]
}

// rtrimUntil removes the trailing run of bytes that are not c.
func rtrimUntil(s string, c byte) string {
	i := len(s)
	for i > 0 && s[i-1] != c {
		i--
	}
	return s[:i]
}

// splitCells splits a table row on unescaped pipes. A count of -1 keeps
// every cell; otherwise the row is truncated or padded to count cells.
func splitCells(row string, count int) []string {
	var cells []string
	start := 0
	for i := 0; i < len(row); i++ {
		if row[i] != '|' {
			continue
		}
		escaped := false
		for j := i - 1; j >= 0 && row[j] == '\\'; j-- {
			escaped = !escaped
		}
		if escaped {
			continue
		}
		cells = append(cells, row[start:i])
		start = i + 1
	}
	cells = append(cells, row[start:])
	if count >= 0 {
		if len(cells) > count {
			cells = cells[:count]
		}
		for len(cells) < count {
			cells = append(cells, "")
		}
	}
	for i, cell := range cells {
		cells[i] = strings.ReplaceAll(strings.TrimSpace(cell), `\|`, "|")
	}
	return cells
}

// slugify lowercases raw heading text and replaces every run of non-word
// characters with a dash.
func slugify(raw string) string {
	lower := cases.Lower(language.Und).String(raw)
	var b strings.Builder
	b.Grow(len(lower))
	dash := false
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if isWordByte(c) {
			b.WriteByte(c)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// urlCleaner validates and normalizes link targets. It owns the resolved
// base cache for the lifetime of one renderer.
type urlCleaner struct {
	sanitize bool
	base     string
	bases    map[string]string
}

func newURLCleaner(o *Options) *urlCleaner {
	return &urlCleaner{sanitize: o.Sanitize, base: o.BaseURL}
}

// clean returns the href to emit, or false when the link must be dropped.
func (c *urlCleaner) clean(href string) (string, bool) {
	if c == nil {
		return encodeURI(href)
	}
	if c.sanitize && unsafeScheme(href) {
		return "", false
	}
	if c.base != "" && !originFreeURL.test(href) {
		href = c.resolve(href)
	}
	return encodeURI(href)
}

func unsafeScheme(href string) bool {
	decoded, err := url.PathUnescape(unescapeHTML(href))
	if err != nil {
		return true
	}
	var b strings.Builder
	for _, r := range strings.ToLower(decoded) {
		if r == ':' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	prot := b.String()
	return strings.HasPrefix(prot, "javascript:") ||
		strings.HasPrefix(prot, "vbscript:") ||
		strings.HasPrefix(prot, "data:")
}

func (c *urlCleaner) resolve(href string) string {
	base, ok := c.bases[c.base]
	if !ok {
		if bareOriginURL.test(c.base) {
			base = c.base + "/"
		} else {
			base = rtrimUntil(c.base, '/')
		}
		if c.bases == nil {
			c.bases = make(map[string]string)
		}
		c.bases[c.base] = base
	}
	switch {
	case strings.HasPrefix(href, "//"):
		return schemePrefix.replace(base, ":") + href
	case strings.HasPrefix(href, "/"):
		return authorityPrefix.replace(base, "$1") + href
	default:
		return base + href
	}
}

const uriReserved = ";,/?:@&=+$-_.!~*'()#"

// encodeURI percent-encodes everything outside the URI character set.
// Existing escapes survive because a literal % is left alone.
func encodeURI(s string) (string, bool) {
	if !utf8.ValidString(s) {
		return "", false
	}
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' || isWordByte(c) || strings.IndexByte(uriReserved, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String(), true
}
