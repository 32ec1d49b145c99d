package marktree

import (
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"
)

func TestHeadingWrapIndentation(t *testing.T) {
	src := strings.Join([]string{
		"# This is a long header",
		"",
		"## This is an even longer header",
		"",
		"### This is a super-long header",
	}, "\n")

	out := plainText(renderDefault(t, src, 12))
	lines := strings.Split(out, "\n")

	want := []string{
		"# This is a",
		"  long",
		"  header",
		"",
		"## This is",
		"   an even",
		"   longer",
		"   header",
		"",
		"### This is",
		"    a",
		"    super-long",
		"    header",
	}

	if len(lines) < len(want) {
		t.Fatalf("too few lines: got %d want %d", len(lines), len(want))
	}
	for i, line := range want {
		if lines[i] != line {
			t.Fatalf("line %d mismatch\nwant: %q\n got: %q", i+1, line, lines[i])
		}
	}
}

func TestWrappedBulletIndentation(t *testing.T) {
	src := strings.Join([]string{
		"- Inputs:",
		"",
		"  - If a user-facing function or interface method takes more than 4",
		"    parameters total (including context.Context), move non-ctx inputs into",
		"    a request struct (e.g. FooRequest).",
	}, "\n")

	out := plainText(renderDefault(t, src, 60))
	var got []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, " ")
		if line == "" {
			continue
		}
		got = append(got, line)
	}

	want := []string{
		"- Inputs:",
		"  - If a user-facing function or interface method takes more",
		"    than 4 parameters total (including context.Context),",
		"    move non-ctx inputs into a request struct (e.g.",
		"    FooRequest).",
	}

	if len(got) < len(want) {
		t.Fatalf("too few lines: got %d want %d\n%q", len(got), len(want), got)
	}
	for i, line := range want {
		if got[i] != line {
			t.Fatalf("line %d mismatch\nwant: %q\n got: %q", i+1, line, got[i])
		}
	}
}

func TestWrappedQuoteKeepsBars(t *testing.T) {
	src := "> alpha beta gamma delta epsilon zeta eta theta\n"
	out := plainText(renderDefault(t, src, 16))
	for i, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if !strings.HasPrefix(line, "> ") {
			t.Fatalf("line %d lost its quote bar: %q", i+1, line)
		}
	}
}

func TestWrapWidthBounds(t *testing.T) {
	src := strings.Join([]string{
		"# Heading One",
		"",
		"Paragraph with a [link](https://example.com) and some emphasized *text* plus **bold** words.",
		"",
		"> Quote line one with more words to wrap",
		"> Quote line two with additional words to wrap",
		"",
		"- item one with a long line that should wrap cleanly at small widths",
		"  - nested item with more words and wrapping",
		"",
		"```go",
		"fmt.Println(\"hello there from a longer code line\")",
		"```",
	}, "\n")

	assertWidths := func(name string, render func(width int) string, minWidth int) {
		for width := minWidth; width <= 100; width += 5 {
			out := render(width)
			for i, line := range strings.Split(out, "\n") {
				plain := plainText(line)
				if strings.HasPrefix(strings.TrimLeft(plain, " \t"), "fmt.Println(") {
					continue
				}
				if ansi.PrintableRuneWidth(plain) > width {
					t.Fatalf("%s: line %d exceeds width %d: %q", name, i+1, width, plain)
				}
			}
		}
	}

	linkMinWidth := len("(https://example.com)")
	assertWidths("wrap", func(width int) string {
		return renderDefault(t, src, width)
	}, linkMinWidth)

	assertWidths("wrap-osc8", func(width int) string {
		return renderDefault(t, src, width, WithOSC8(true))
	}, 20)
}

func TestFitURL(t *testing.T) {
	if got := fitURL("https://example.com/a", 0); got != "https://example.com/a" {
		t.Fatalf("unbounded url changed: %q", got)
	}
	if got := fitURL("https://example.com/a", 15); got != "example.com/a" {
		t.Fatalf("scheme not dropped: %q", got)
	}
	if got := fitURL("https://example.com/abcdef", 8); ansi.PrintableRuneWidth(got) != 8 || !strings.HasSuffix(got, "…") {
		t.Fatalf("url not truncated: %q", got)
	}
}

func renderDefault(t *testing.T, src string, width int, opts ...Option) string {
	t.Helper()
	out, err := RenderString(src, width, DefaultTheme(), opts...)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}
