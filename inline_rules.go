package marktree

import "github.com/dlclark/regexp2"

type inlineRules struct {
	escape   pattern
	autolink pattern
	url      pattern
	tag      pattern
	link     pattern
	reflink  pattern
	nolink   pattern
	br       pattern
	strong   []delimAlt
	em       []delimAlt
	// del enables ~~strikethrough~~.
	del  bool
	text textRule
}

const (
	inlineScheme    = `[a-zA-Z][a-zA-Z0-9+.-]{1,31}`
	inlineEmail     = `[a-zA-Z0-9.!#$%&'*+/=?^_\x60{|}~-]+(@)[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+(?![-_])`
	inlineAttribute = `\s+[a-zA-Z:_][\w.:-]*(?:\s*=\s*"[^"]*"|\s*=\s*'[^']*'|\s*=\s*[^\s"'=<>\x60]+)?`
	inlineLabel     = `(?:\[[^\[\]]*\]|\\[\[\]]?|\x60[^\x60]*\x60|[^\[\]\\])*?`
	inlineHref      = `\s*(<(?:\\[<>]?|[^\s<>\\])*>|(?:\\[()]?|\([^\s\x00-\x1f\\]*\)|[^\s\x00-\x1f()\\])*?)`
	inlineTitle     = `"(?:\\"?|[^"\\])*"|'(?:\\'?|[^'\\])*'|\((?:\\\)?|[^)\\])*\)`
)

var (
	// backslashEscapes unescapes punctuation in link targets and titles.
	backslashEscapes = search(`\\([!"#$%&'()*+,\-./:;<=>?@\[\]\\^_\x60{|}~])`, regexp2.None)
	// urlBackpedal trims trailing punctuation off a bare URL.
	urlBackpedal = search(`^(?:[^?!.,:;*_~()&]+|\([^)]*\)|&(?![a-zA-Z0-9]+;$)|[?!.,:;*_~)]+(?!$))+`, regexp2.None)
	// pedanticLinkTitle splits a pedantic link target from its quoted title.
	pedanticLinkTitle = search(`^([^'"]*[^\s])\s+(['"])(.*)\2`, regexp2.None)
	anchorOpen        = search(`^<a `, regexp2.IgnoreCase)
	anchorClose       = search(`^</a>`, regexp2.IgnoreCase)
	angleWrapped      = search(`^<([\s\S]*)>$`, regexp2.None)

	inlineGrammars = buildInlineGrammars()
)

func buildInlineGrammars() map[profile]*inlineRules {
	escape := `^\\([!"#$%&'()*+,\-./:;<=>?@\[\]\\^_\x60{|}~])`
	br := `^( {2,}|\\)\n(?!\s*$)`

	normal := &inlineRules{
		escape: rule(escape),
		autolink: edit(`^<(scheme:[^\s\x00-\x1f<>]*|email)>`).
			replace("scheme", inlineScheme).
			replace("email", inlineEmail).
			rule(),
		tag: edit(`^comment` +
			`|^</[a-zA-Z][\w:-]*\s*>` +
			`|^<[a-zA-Z][\w-]*(?:attribute)*?\s*/?>` +
			`|^<\?[\s\S]*?\?>` +
			`|^<![a-zA-Z]+\s[\s\S]*?>` +
			`|^<!\[CDATA\[[\s\S]*?\]\]>`).
			replace("comment", blockComment).
			replace("attribute", inlineAttribute).
			rule(),
		link: edit(`^!?\[(label)\]\(href(?:\s+(title))?\s*\)`).
			replace("label", inlineLabel).
			replace("href", inlineHref).
			replace("title", inlineTitle).
			rule(),
		reflink: edit(`^!?\[(label)\]\[(?!\s*\])((?:\\[\[\]]?|[^\[\]\\])+)\]`).
			replace("label", inlineLabel).
			rule(),
		nolink: rule(`^!?\[(?!\s*\])((?:\[[^\[\]]*\]|\\[\[\]]|[^\[\]])*)\](?:\[\])?`),
		strong: []delimAlt{
			{delim: '_', width: 2, single: true},
			{delim: '*', width: 2, single: true},
			{delim: '_', width: 2, min: 2},
			{delim: '*', width: 2, min: 2},
		},
		em: []delimAlt{
			{delim: '_', width: 1, single: true, openNot: "_"},
			{delim: '*', width: 1, single: true, openNot: `*"<[`},
			{delim: '_', width: 1, closeNot: '_', min: 2},
			{delim: '_', width: 1, openNot: "_", min: 2},
			{delim: '*', width: 1, openNot: `"<[`, closeNot: '*', min: 2},
			{delim: '*', width: 1, openNot: `*"<[`, min: 2},
		},
		br: rule(br),
	}

	pedantic := *normal
	pedantic.strong = []delimAlt{
		{delim: '_', width: 2, min: 1},
		{delim: '*', width: 2, min: 1},
	}
	pedantic.em = []delimAlt{
		{delim: '_', width: 1, min: 1},
		{delim: '*', width: 1, min: 1},
	}
	pedantic.link = edit(`^!?\[(label)\]\((.*?)\)`).
		replace("label", inlineLabel).
		rule()
	pedantic.reflink = edit(`^!?\[(label)\]\s*\[([^\]]*)\]`).
		replace("label", inlineLabel).
		rule()

	gfm := *normal
	gfm.escape = edit(escape).replace("])", "~|])").rule()
	gfm.url = edit(`^((?:ftp|https?):\/\/|www\.)(?:[a-zA-Z0-9\-]+\.?)+[^\s<]*|^email`).
		replace("email", inlineEmail).
		rule()
	gfm.del = true
	gfm.text = textRule{gfm: true}

	breaks := gfm
	breaks.br = edit(br).replace("{2,}", "*").rule()
	breaks.text = textRule{gfm: true, breaks: true}

	return map[profile]*inlineRules{
		profileNormal:   normal,
		profilePedantic: &pedantic,
		profileGFM:      &gfm,
		profileBreaks:   &breaks,
	}
}
