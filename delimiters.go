package marktree

import (
	"strings"
	"unicode"
)

// spanScan answers "where is the next closer" questions about one run of
// inline source. Answers are cached per closer, so a lexer walking forward
// through the source scans every rune at most once per closer kind.
type spanScan struct {
	src     []rune
	cursors map[any]cursor
	spaces  []int
	email   []int
	noEmail map[int]bool
}

// cursor remembers the first position at or after from that satisfied a
// closer; at is -1 when none exists.
type cursor struct {
	from, at int
}

func newSpanScan(src []rune) *spanScan {
	return &spanScan{src: src, cursors: make(map[any]cursor)}
}

// next returns the first position k >= from for which pred holds, or -1.
func (s *spanScan) next(key any, from int, pred func(k int) bool) int {
	if c, ok := s.cursors[key]; ok && from >= c.from && (c.at < 0 || from <= c.at) {
		return c.at
	}
	at := -1
	for k := from; k < len(s.src); k++ {
		if pred(k) {
			at = k
			break
		}
	}
	s.cursors[key] = cursor{from: from, at: at}
	return at
}

// has reports whether needle occurs at or after from.
func (s *spanScan) has(needle string, from int) bool {
	first, _ := firstRune(needle)
	return s.next(needle, from, func(k int) bool {
		return s.src[k] == first && hasRunes(s.src[k:], needle)
	}) >= 0
}

// spaceRunEnd returns the end of the run of spaces starting at i.
func (s *spanScan) spaceRunEnd(i int) int {
	if s.spaces == nil {
		s.spaces = runEnds(s.src, func(r rune) bool { return r == ' ' })
	}
	return s.spaces[i]
}

// emailAt reports whether a bare email address may start at i: a run of
// local part characters ending in '@' that is not already known to fail.
// The second result is the position of the '@'.
func (s *spanScan) emailAt(i int) (bool, int) {
	if s.email == nil {
		s.email = runEnds(s.src, isEmailLocal)
	}
	at := s.email[i]
	if at == i || at >= len(s.src) || s.src[at] != '@' || s.noEmail[at] {
		return false, at
	}
	return true, at
}

// rejectEmail records that no address with its '@' at at exists. Whether a
// bare address matches depends only on what follows the '@'.
func (s *spanScan) rejectEmail(at int) {
	if s.noEmail == nil {
		s.noEmail = make(map[int]bool)
	}
	s.noEmail[at] = true
}

// runEnds maps every position to the end of the run of in-class runes
// starting there.
func runEnds(src []rune, in func(rune) bool) []int {
	ends := make([]int, len(src)+1)
	ends[len(src)] = len(src)
	for i := len(src) - 1; i >= 0; i-- {
		if in(src[i]) {
			ends[i] = ends[i+1]
		} else {
			ends[i] = i
		}
	}
	return ends
}

func isEmailLocal(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(".!#$%&'*+/=?^_`{|}~-", r)
}

func isWordRune(r rune) bool {
	return r == '\u200c' || r == '\u200d' || unicode.In(r, unicode.L, unicode.Mn, unicode.Nd, unicode.Pc)
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

func hasRunes(src []rune, prefix string) bool {
	i := 0
	for _, r := range prefix {
		if i >= len(src) || src[i] != r {
			return false
		}
		i++
	}
	return true
}

func runLength(src []rune, at int, r rune) int {
	n := 0
	for at+n < len(src) && src[at+n] == r {
		n++
	}
	return n
}

// delimAlt is one way of writing emphasis or strong emphasis: width
// delimiter runes, content, then the same delimiters again.
type delimAlt struct {
	delim rune
	width int
	// single content is exactly one rune.
	single bool
	// openNot lists runes the content may not start with.
	openNot string
	// closeNot may not end the content; spaces never may.
	closeNot rune
	// min is the shortest content.
	min int
}

type closerKey struct {
	delim    rune
	width    int
	closeNot rune
}

// match applies the alternative at position at. It returns the content
// bounds and the end of the whole span.
func (a delimAlt) match(s *spanScan, at int) (start, stop, end int, ok bool) {
	src := s.src
	if runLength(src, at, a.delim) < a.width {
		return 0, 0, 0, false
	}
	start = at + a.width
	if start >= len(src) || unicode.IsSpace(src[start]) || strings.ContainsRune(a.openNot, src[start]) {
		return 0, 0, 0, false
	}
	if a.single {
		k := start + 1
		if !a.closesAt(src, k) {
			return 0, 0, 0, false
		}
		return start, k, k + a.width, true
	}
	key := closerKey{delim: a.delim, width: a.width, closeNot: a.closeNot}
	k := s.next(key, start+a.min, func(k int) bool {
		prev := src[k-1]
		if unicode.IsSpace(prev) || (a.closeNot != 0 && prev == a.closeNot) {
			return false
		}
		return a.closesAt(src, k)
	})
	if k < 0 {
		return 0, 0, 0, false
	}
	return start, k, k + a.width, true
}

// closesAt reports whether exactly width delimiters, not followed by
// another one, sit at k.
func (a delimAlt) closesAt(src []rune, k int) bool {
	if k+a.width > len(src) {
		return false
	}
	for i := k; i < k+a.width; i++ {
		if src[i] != a.delim {
			return false
		}
	}
	return k+a.width == len(src) || src[k+a.width] != a.delim
}

// matchDelims tries the alternatives in order.
func matchDelims(alts []delimAlt, s *spanScan, at int) (start, stop, end int, ok bool) {
	if at >= len(s.src) || (s.src[at] != '*' && s.src[at] != '_') {
		return 0, 0, 0, false
	}
	for _, a := range alts {
		if start, stop, end, ok = a.match(s, at); ok {
			return start, stop, end, true
		}
	}
	return 0, 0, 0, false
}

type codeKey int

// codeSpan matches a run of backticks closed by a run of the same length.
// n is the length of the opening run; when ok is false the whole run is
// plain text.
func codeSpan(s *spanScan, at int) (code string, n, end int, ok bool) {
	src := s.src
	n = runLength(src, at, '`')
	if n == 0 {
		return "", 0, 0, false
	}
	k := s.next(codeKey(n), at+n, func(k int) bool {
		return src[k] == '`' && src[k-1] != '`' && runLength(src, k, '`') == n
	})
	if k < 0 {
		return "", n, 0, false
	}
	return strings.TrimSpace(string(src[at+n : k])), n, k + n, true
}

type tildeKey struct{}

// strike matches tildes around content that neither starts nor ends with
// a space. Shorter opening runs are tried when the full run fails, so part
// of a long run can open the span.
func strike(s *spanScan, at int) (start, stop, end int, ok bool) {
	src := s.src
	r := runLength(src, at, '~')
	if r == 0 {
		return 0, 0, 0, false
	}
	closer := func(k int) int {
		return s.next(tildeKey{}, k, func(k int) bool {
			return src[k] == '~' && !unicode.IsSpace(src[k-1])
		})
	}
	finish := func(start, k int) (int, int, int, bool) {
		return start, k, k + runLength(src, k, '~'), true
	}
	runEnd := at + r
	if runEnd < len(src) && !unicode.IsSpace(src[runEnd]) {
		if k := closer(runEnd + 1); k >= 0 {
			return finish(runEnd, k)
		}
	}
	if r >= 2 && runEnd < len(src) {
		if k := closer(runEnd + 1); k >= 0 {
			return finish(runEnd-1, k)
		}
	}
	if r >= 3 {
		return finish(runEnd-2, runEnd-1)
	}
	return 0, 0, 0, false
}

// textRule ends plain text right before anything another inline rule
// could start with.
type textRule struct {
	gfm    bool
	breaks bool
}

// match returns the end of the text run starting at at. The run is never
// empty.
func (t textRule) match(s *spanScan, at int) int {
	for j := at + 1; j < len(s.src); j++ {
		if t.stopsAt(s, j) {
			return j
		}
	}
	return len(s.src)
}

func (t textRule) stopsAt(s *spanScan, j int) bool {
	src := s.src
	switch c := src[j]; c {
	case '\\', '<', '!', '[', '`', '*':
		return true
	case '~':
		if t.gfm {
			return true
		}
	case '_':
		if !isWordRune(src[j-1]) {
			return true
		}
	case ' ':
		end := s.spaceRunEnd(j)
		if end < len(src) && src[end] == '\n' && (t.breaks || end-j >= 2) {
			return true
		}
	case '\n':
		if t.breaks {
			return true
		}
	}
	if !t.gfm {
		return false
	}
	if urlPrefix(src[j:]) {
		return true
	}
	ok, _ := s.emailAt(j)
	return ok
}

func urlPrefix(src []rune) bool {
	for _, p := range []string{"https://", "http://", "ftp://", "www."} {
		if hasRunes(src, p) {
			return true
		}
	}
	return false
}

// tagCloser returns what must follow src[at:] for a raw tag to be
// possible, and where to start looking for it.
func tagCloser(src []rune) (string, int) {
	switch {
	case hasRunes(src, "<!--"):
		return "-->", 4
	case hasRunes(src, "<?"):
		return "?>", 2
	case hasRunes(src, "<![CDATA["):
		return "]]>", 9
	}
	return ">", 1
}
