package marktree

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single rule attempt. A rule that runs out of time
// counts as not matching, so the lexers fall through to their catch-all rules.
const matchTimeout = 2 * time.Second

// pattern is a compiled grammar rule. The zero value never matches and stands
// in for rules a profile disables, which keeps the rule loops uniform.
type pattern struct {
	src string
	re  *regexp2.Regexp
}

// match is one successful rule application.
type match struct {
	groups []string
	n      int
}

func (m *match) text() string {
	return m.groups[0]
}

func (m *match) group(i int) string {
	if i < len(m.groups) {
		return m.groups[i]
	}
	return ""
}

// rule compiles an anchored rule. The source keeps its own leading caret;
// the extra group anchors alternations as a whole so the engine only tries
// the start of the remaining input.
func rule(src string) pattern {
	return ruleWith(src, regexp2.None)
}

func ruleWith(src string, opts regexp2.RegexOptions) pattern {
	re := regexp2.MustCompile(`^(?:`+endAnchors(src, opts)+`)`, opts)
	re.MatchTimeout = matchTimeout
	return pattern{src: src, re: re}
}

// search compiles an unanchored pattern used for scanning and replacing.
func search(src string, opts regexp2.RegexOptions) pattern {
	re := regexp2.MustCompile(endAnchors(src, opts), opts)
	re.MatchTimeout = matchTimeout
	return pattern{src: src, re: re}
}

// endAnchors rewrites a bare $ to \z outside multiline mode. The engine
// lets $ match before a final newline as well, but the rules expect it to
// match at the very end only.
func endAnchors(src string, opts regexp2.RegexOptions) string {
	if opts&regexp2.Multiline != 0 || !strings.Contains(src, "$") {
		return src
	}
	var (
		b     strings.Builder
		class bool
	)
	b.Grow(len(src) + 4)
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			b.WriteByte(c)
			i++
			b.WriteByte(src[i])
			continue
		case c == '[' && !class:
			class = true
		case c == ']' && class:
			class = false
		case c == '$' && !class:
			b.WriteString(`\z`)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// exec applies the rule to the head of src.
func (p pattern) exec(src []rune) (*match, error) {
	if p.re == nil || len(src) == 0 {
		return nil, nil
	}
	m, err := p.re.FindRunesMatch(src)
	if err != nil || m == nil || m.Length == 0 {
		return nil, err
	}
	return newMatch(m), nil
}

func newMatch(m *regexp2.Match) *match {
	groups := make([]string, m.GroupCount())
	groups[0] = m.String()
	for i := 1; i < len(groups); i++ {
		if g := m.GroupByNumber(i); g != nil && len(g.Captures) > 0 {
			groups[i] = g.String()
		}
	}
	return &match{groups: groups, n: m.Length}
}

// find returns the first match anywhere in s.
func (p pattern) find(s string) *match {
	if p.re == nil {
		return nil
	}
	m, err := p.re.FindStringMatch(s)
	if err != nil || m == nil {
		return nil
	}
	return newMatch(m)
}

// findAll returns the text of every non-overlapping match in s.
func (p pattern) findAll(s string) []string {
	if p.re == nil {
		return nil
	}
	var out []string
	m, err := p.re.FindStringMatch(s)
	for err == nil && m != nil {
		out = append(out, m.String())
		m, err = p.re.FindNextMatch(m)
	}
	return out
}

func (p pattern) test(s string) bool {
	if p.re == nil {
		return false
	}
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

// replace substitutes every match in s; repl may use $1 style references.
func (p pattern) replace(s, repl string) string {
	if p.re == nil {
		return s
	}
	out, err := p.re.Replace(s, repl, -1, -1)
	if err != nil {
		return s
	}
	return out
}

var caretPattern = search(`(^|[^\[])\^`, regexp2.None)

// editor splices rule sources together. Spliced values lose their anchoring
// carets (except negated class carets) so they can sit inside another rule.
type editor struct {
	src string
}

func edit(src string) *editor {
	return &editor{src: src}
}

func unanchor(val string) string {
	return caretPattern.replace(val, "$1")
}

// replace substitutes the first occurrence of name.
func (e *editor) replace(name, val string) *editor {
	e.src = strings.Replace(e.src, name, unanchor(val), 1)
	return e
}

// replaceAll substitutes every occurrence of name.
func (e *editor) replaceAll(name, val string) *editor {
	e.src = strings.ReplaceAll(e.src, name, unanchor(val))
	return e
}

func (e *editor) source() string {
	return e.src
}

func (e *editor) rule() pattern {
	return rule(e.src)
}

func (e *editor) ruleWith(opts regexp2.RegexOptions) pattern {
	return ruleWith(e.src, opts)
}

// profile selects one grammar variant.
type profile uint8

const (
	profileNormal profile = iota
	profilePedantic
	profileGFM
	profileTables
	profileBreaks
)

func (p profile) String() string {
	switch p {
	case profilePedantic:
		return "pedantic"
	case profileGFM:
		return "gfm"
	case profileTables:
		return "tables"
	case profileBreaks:
		return "breaks"
	default:
		return "normal"
	}
}
