package marktree

import (
	"testing"
	"time"
)

// fuzzBudget bounds one lex and render of a fuzz input.
const fuzzBudget = 2 * time.Second

func FuzzLexBalanced(f *testing.F) {
	for _, seed := range []string{
		"# h\n\npara",
		"- a\n  - b\n\n> q\n> - c",
		"| a | b |\n|---|:-:|\n| 1 | 2 |",
		"```\ncode\n",
		"[x]: /u\n\n[x] <span>*a **b***</span>",
		"<div>\n\n</div>",
		"1. a\n\n   b\n2. c",
		"***\n___\n- - -",
		"a\x00b \x1b\x1b\x1b",
		"```` `` ` *a _b ~c",
		"``` x\n``\n```` \n",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, src string) {
		start := time.Now()
		toks, links, err := Lex(src)
		if err != nil {
			t.Fatalf("lex %q: %v", src, err)
		}
		if !Balanced(toks) {
			t.Fatalf("unbalanced stream for %q", src)
		}
		if _, err := ParseTokens[string](toks, links, &HTMLRenderer{}); err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		if elapsed := time.Since(start); elapsed > fuzzBudget {
			t.Fatalf("%d byte input took %s", len(src), elapsed)
		}
	})
}
