// Package htmlscan turns a raw HTML block into a shallow node tree.
//
// It is not an HTML parser. Tags are found with one pattern that knows
// nothing about nesting; elements are closed by name and anything that does
// not balance is tolerated. The result is a best effort tree for renderers
// that want structure instead of an opaque markup string.
package htmlscan

import (
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/net/html"
)

// Kind tells what a Node holds.
type Kind uint8

const (
	// Element is a tag with attributes and children.
	Element Kind = iota
	// Text is character data between tags, entity decoded.
	Text
	// Component is an allow-listed element kept opaque. Its inner markup is
	// carried verbatim in Node.Text and never scanned.
	Component
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Component:
		return "component"
	default:
		return "element"
	}
}

// Node is one scanned element, component or text run.
type Node struct {
	Kind     Kind
	Name     string
	Attrs    map[string]string
	Void     bool
	Children []*Node
	Text     string
}

var (
	tagPattern  = regexp2.MustCompile(`<(?:"[^"]*"['"]*|'[^']*'['"]*|[^'">])+>`, regexp2.None)
	attrPattern = regexp2.MustCompile(
		`([^\s"'<>/=]+)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>\x60]+)))?`, regexp2.None)
)

var voidElements = map[string]bool{
	"area":     true,
	"base":     true,
	"br":       true,
	"col":      true,
	"embed":    true,
	"hr":       true,
	"img":      true,
	"input":    true,
	"keygen":   true,
	"link":     true,
	"menuitem": true,
	"meta":     true,
	"param":    true,
	"source":   true,
	"track":    true,
	"wbr":      true,
}

// IsVoid reports whether name is an HTML void element.
func IsVoid(name string) bool {
	return voidElements[strings.ToLower(name)]
}

// Parse scans markup. Elements named in components become Component nodes.
func Parse(markup string, components ...string) []*Node {
	s := &scanner{components: make(map[string]bool, len(components))}
	for _, c := range components {
		s.components[strings.ToLower(c)] = true
	}
	s.run([]rune(markup))
	return s.roots
}

type scanner struct {
	components map[string]bool
	roots      []*Node
	open       []*Node
}

func (s *scanner) run(src []rune) {
	var (
		pos       int
		component *Node
		inner     int
	)
	m, err := tagPattern.FindRunesMatch(src)
	for ; err == nil && m != nil; m, err = tagPattern.FindNextMatch(m) {
		start, end := m.Index, m.Index+m.Length
		tag := m.String()
		if component != nil {
			if closingName(tag) != component.Name {
				continue
			}
			component.Text = string(src[inner:start])
			component = nil
			pos = end
			continue
		}
		s.text(string(src[pos:start]))
		pos = end

		switch {
		case strings.HasPrefix(tag, "<!"), strings.HasPrefix(tag, "<?"):
			// comments, doctypes and processing instructions carry no structure
		case strings.HasPrefix(tag, "</"):
			s.close(closingName(tag))
		default:
			n := parseTag(tag)
			if n.Name == "" {
				s.text(tag)
				continue
			}
			s.append(n)
			switch {
			case s.components[n.Name]:
				n.Kind = Component
				component = n
				inner = end
			case !n.Void:
				s.open = append(s.open, n)
			}
		}
	}
	if component != nil {
		component.Text = string(src[inner:])
		return
	}
	s.text(string(src[pos:]))
}

func (s *scanner) append(n *Node) {
	if len(s.open) == 0 {
		s.roots = append(s.roots, n)
		return
	}
	parent := s.open[len(s.open)-1]
	parent.Children = append(parent.Children, n)
}

func (s *scanner) text(raw string) {
	if raw == "" {
		return
	}
	s.append(&Node{Kind: Text, Text: html.UnescapeString(raw)})
}

// close pops up to the nearest open element called name. A closing tag
// that matches nothing is dropped.
func (s *scanner) close(name string) {
	for i := len(s.open) - 1; i >= 0; i-- {
		if s.open[i].Name == name {
			s.open = s.open[:i]
			return
		}
	}
}

func closingName(tag string) string {
	if !strings.HasPrefix(tag, "</") {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(strings.TrimSuffix(tag[2:], ">")))
}

// parseTag reads the name and attributes of an opening tag.
func parseTag(tag string) *Node {
	body := strings.TrimSuffix(strings.TrimPrefix(tag, "<"), ">")
	selfClosing := strings.HasSuffix(body, "/")
	body = strings.TrimSuffix(body, "/")

	n := &Node{Kind: Element}
	m, err := attrPattern.FindStringMatch(body)
	for ; err == nil && m != nil; m, err = attrPattern.FindNextMatch(m) {
		key := strings.ToLower(group(m, 1))
		if n.Name == "" {
			n.Name = key
			continue
		}
		if n.Attrs == nil {
			n.Attrs = make(map[string]string)
		}
		if _, dup := n.Attrs[key]; dup {
			continue
		}
		n.Attrs[key] = html.UnescapeString(group(m, 2) + group(m, 3) + group(m, 4))
	}
	n.Void = selfClosing || voidElements[n.Name]
	return n
}

func group(m *regexp2.Match, i int) string {
	g := m.GroupByNumber(i)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}
