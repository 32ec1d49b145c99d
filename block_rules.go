package marktree

import (
	"strings"

	"github.com/dlclark/regexp2"
)

type blockRules struct {
	newline    pattern
	code       pattern
	fences     fenceRule
	hr         pattern
	heading    pattern
	nptable    pattern
	blockquote pattern
	list       pattern
	html       pattern
	def        pattern
	table      pattern
	lheading   pattern
	paragraph  pattern
	text       pattern
}

const (
	blockLabel     = `(?!\s*\])(?:\\[\[\]]|[^\[\]])+`
	blockTitle     = `(?:"(?:\\"?|[^"\\])*"|'[^'\n]*(?:\n[^'\n]+)*\n?'|\([^()]*\))`
	blockBullet    = `(?:[*+-]|\d+\.)`
	blockComment   = `<!--(?!-?>)[\s\S]*?-->`
	blockAttribute = ` +[a-zA-Z:_][\w.:-]*(?: *= *"[^"\n]*"| *= *'[^'\n]*'| *= *[^\s"'=<>\x60]+)?`
	blockTag       = `address|article|aside|base|basefont|blockquote|body|caption` +
		`|center|col|colgroup|dd|details|dialog|dir|div|dl|dt|fieldset|figcaption` +
		`|figure|footer|form|frame|frameset|h[1-6]|head|header|hr|html|iframe` +
		`|legend|li|link|main|menu|menuitem|meta|nav|noframes|ol|optgroup|option` +
		`|p|param|section|source|summary|table|tbody|td|tfoot|th|thead|title|tr` +
		`|track|ul`
	pedanticTag = `(?!(?:a|em|strong|small|s|cite|q|dfn|abbr|data|time|code` +
		`|var|samp|kbd|sub|sup|i|b|u|mark|ruby|rt|rp|bdi|bdo|span|br|wbr|ins|del|img)` +
		`\b)\w+(?!:|[^\w\s@]*@)\b`
)

var (
	// bulletPattern finds the marker of a list item.
	bulletPattern = search(blockBullet, regexp2.None)
	// itemPattern splits a list match into its items.
	itemPattern = search(
		edit(`^( *)(bull) [^\n]*(?:\n(?!\1bull )[^\n]*)*`).replaceAll("bull", blockBullet).source(),
		regexp2.Multiline,
	)

	blockGrammars = buildBlockGrammars()
)

func buildBlockGrammars() map[profile]*blockRules {
	hr := `^ {0,3}((?:- *){3,}|(?:_ *){3,}|(?:\* *){3,})(?:\n+|$)`
	heading := `^ *(#{1,6}) *([^\n]+?) *(?:#+ *)?(?:\n+|$)`
	lheading := `^([^\n]+)\n *(=|-){2,} *(?:\n+|$)`

	def := edit(`^ {0,3}\[(label)\]: *\n? *<?([^\s>]+)>?(?:(?: +\n? *| *\n *)(title))? *(?:\n+|$)`).
		replace("label", blockLabel).
		replace("title", blockTitle).
		source()

	list := edit(`^( *)(bull) [\s\S]+?(?:hr|def|\n{2,}(?! )(?!\1bull )\n*|\s*$)`).
		replaceAll("bull", blockBullet).
		replace("hr", `\n+(?=\1?(?:(?:- *){3,}|(?:_ *){3,}|(?:\* *){3,})(?:\n+|$))`).
		replace("def", `\n+(?=`+def+`)`).
		source()

	html := edit(`^ {0,3}(?:` +
		`<(script|pre|style)[\s>][\s\S]*?(?:</\1>[^\n]*\n+|$)` +
		`|comment[^\n]*(\n+|$)` +
		`|<\?[\s\S]*?\?>\n*` +
		`|<![A-Z][\s\S]*?>\n*` +
		`|<!\[CDATA\[[\s\S]*?\]\]>\n*` +
		`|</?(tag)(?: +|\n|/?>)[\s\S]*?(?:\n{2,}|$)` +
		`|<(?!script|pre|style)([a-z][\w-]*)(?:attribute)*? */?>(?=[ \t]*\n)[\s\S]*?(?:\n{2,}|$)` +
		`|</(?!script|pre|style)[a-z][\w-]*\s*>(?=[ \t]*\n)[\s\S]*?(?:\n{2,}|$)` +
		`)`).
		replace("comment", blockComment).
		replace("tag", blockTag).
		replace("attribute", blockAttribute)

	paragraph := edit(`^([^\n]+(?:\n(?!hr|heading|lheading| {0,3}>|<\/?(?:tag)(?: +|\n|\/?>)|<(?:script|pre|style|!--))[^\n]+)*)`).
		replace("hr", hr).
		replace("heading", heading).
		replace("lheading", lheading).
		replace("tag", blockTag).
		source()

	blockquote := edit(`^( {0,3}> ?(paragraph|[^\n]*)(?:\n|$))+`).
		replace("paragraph", paragraph).
		rule()

	normal := &blockRules{
		newline:    rule(`^\n+`),
		code:       rule(`^( {4}[^\n]+\n*)+`),
		hr:         rule(hr),
		heading:    rule(heading),
		blockquote: blockquote,
		list:       rule(list),
		html:       html.ruleWith(regexp2.IgnoreCase),
		def:        rule(def),
		lheading:   rule(lheading),
		paragraph:  rule(paragraph),
		text:       rule(`^[^\n]+`),
	}

	fences := `^ *(\x60{3,}|~{3,})[ \.]*(\S+)? *\n([\s\S]*?)\n? *\1 *(?:\n+|$)`
	gfm := *normal
	gfm.fences = fenceRule{enabled: true}
	gfm.heading = rule(`^ *(#{1,6}) +([^\n]+?) *#* *(?:\n+|$)`)
	gfm.paragraph = edit(paragraph).
		replace("(?!", "(?!"+
			strings.Replace(fences, `\1`, `\2`, 1)+"|"+
			strings.Replace(list, `\1`, `\3`, 1)+"|").
		rule()

	tables := gfm
	tables.nptable = rule(`^ *([^|\n ].*\|.*)\n *([-:]+ *\|[-| :]*)(?:\n((?:.*[^>\n ].*(?:\n|$))*)\n*|$)`)
	tables.table = rule(`^ *\|(.+)\n *\|?( *[-:]+[-| :]*)(?:\n((?: *[^>\n ].*(?:\n|$))*)\n*|$)`)

	pedantic := *normal
	pedantic.html = edit(`^ *(?:comment *(?:\n|\s*$)` +
		`|<(tag)[\s\S]+?</\1> *(?:\n{2,}|\s*$)` +
		`|<tag(?:"[^"]*"|'[^']*'|\s[^'"/>\s]*)*?/?> *(?:\n{2,}|\s*$))`).
		replace("comment", blockComment).
		replaceAll("tag", pedanticTag).
		rule()
	pedantic.def = rule(`^ *\[([^\]]+)\]: *<?([^\s>]+)>?(?: +(["(][^\n]+[")]))? *(?:\n+|$)`)

	return map[profile]*blockRules{
		profileNormal:   normal,
		profileGFM:      &gfm,
		profileTables:   &tables,
		profilePedantic: &pedantic,
	}
}

// blockProfile picks the block grammar for a set of options. Pedantic wins
// over GFM, and tables only apply on top of GFM.
func blockProfile(o *Options) profile {
	switch {
	case o.Pedantic:
		return profilePedantic
	case o.GFM && o.Tables:
		return profileTables
	case o.GFM:
		return profileGFM
	default:
		return profileNormal
	}
}
