package marktree

import "unicode"

// fenceRule matches fenced code blocks. Profiles without fences leave it
// disabled.
type fenceRule struct {
	enabled bool
}

// exec matches a fence at the head of src. The groups are the whole block,
// the fence, the info string and the code.
//
// A run of R fence runes opens the block. When no closing run of R or more
// follows, the longest shorter opening that can close is used instead, and
// the unused fence runes become part of the info string.
func (f fenceRule) exec(src []rune) *match {
	if !f.enabled {
		return nil
	}
	i := 0
	for i < len(src) && src[i] == ' ' {
		i++
	}
	if i >= len(src) || (src[i] != '`' && src[i] != '~') {
		return nil
	}
	c := src[i]
	run := runLength(src, i, c)
	if run < 3 {
		return nil
	}
	info := i + run
	nl := info
	for nl < len(src) && src[nl] != '\n' {
		nl++
	}
	if nl == len(src) {
		return nil
	}
	lang, ok := fenceInfo(src[info:nl])
	if !ok {
		return nil
	}
	body := nl + 1

	closers := fenceClosers(src, body, c)
	longest := 0
	for _, cl := range closers {
		longest = max(longest, cl.end-cl.start)
	}
	width := run
	if longest < run {
		// Shorter openings push fence runes into the info string, which
		// then has to be a single word.
		if longest < 3 || !infoIsWord(src[info:nl]) {
			return nil
		}
		width = longest
		lang = string(src[i+width:info]) + leadingWord(src[info:nl])
	}

	var closing fenceCloser
	for _, cl := range closers {
		if cl.end-cl.start >= width {
			closing = cl
			break
		}
	}
	at := closing.end - width
	stop := at
	for stop > body && src[stop-1] == ' ' {
		stop--
	}
	if stop > body && src[stop-1] == '\n' {
		stop--
	}
	end := closing.end
	for end < len(src) && src[end] == ' ' {
		end++
	}
	for end < len(src) && src[end] == '\n' {
		end++
	}
	return &match{
		groups: []string{
			string(src[:end]),
			string(src[i : i+width]),
			lang,
			string(src[body:stop]),
		},
		n: end,
	}
}

// fenceCloser is a run of fence runes followed only by spaces up to the end
// of its line.
type fenceCloser struct {
	start, end int
}

func fenceClosers(src []rune, from int, c rune) []fenceCloser {
	var out []fenceCloser
	for k := from; k < len(src); {
		if src[k] != c {
			k++
			continue
		}
		n := runLength(src, k, c)
		end := k + n
		after := end
		for after < len(src) && src[after] == ' ' {
			after++
		}
		if after == len(src) || src[after] == '\n' {
			out = append(out, fenceCloser{start: k, end: end})
		}
		k = end
	}
	return out
}

// fenceInfo splits the rest of an opening fence line into dots and spaces,
// one word and trailing spaces. The word is the info string.
func fenceInfo(line []rune) (string, bool) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '.') {
		i++
	}
	word := i
	for i < len(line) && !unicode.IsSpace(line[i]) {
		i++
	}
	lang := string(line[word:i])
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return lang, i == len(line)
}

// infoIsWord reports whether line is one word, possibly empty, followed by
// spaces.
func infoIsWord(line []rune) bool {
	i := 0
	for i < len(line) && !unicode.IsSpace(line[i]) {
		i++
	}
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i == len(line)
}

func leadingWord(line []rune) string {
	i := 0
	for i < len(line) && !unicode.IsSpace(line[i]) {
		i++
	}
	return string(line[:i])
}
