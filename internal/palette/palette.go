// Package palette holds the ANSI color sets behind the built-in themes.
package palette

import (
	"strconv"
	"strings"
)

// SGR attributes shared by every palette.
const (
	Reset         = "\x1b[0m"
	Bold          = "\x1b[1m"
	Italic        = "\x1b[3m"
	Underline     = "\x1b[4m"
	Strikethrough = "\x1b[9m"
)

// Palette maps semantic roles to ANSI prefix sequences.
type Palette struct {
	Text          string
	H1            string
	H2            string
	H3            string
	H4            string
	H5            string
	H6            string
	Emphasis      string
	Strong        string
	CodeInline    string
	CodeBlock     string
	Quote         string
	ListMarker    string
	LinkText      string
	LinkURL       string
	ThematicBreak string
	TableBorder   string
}

// FG returns the 24-bit foreground sequence for a #rrggbb color. Malformed
// colors yield an empty sequence.
func FG(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return ""
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ""
	}
	return "\x1b[38;2;" + strconv.Itoa(int(v>>16&0xff)) + ";" +
		strconv.Itoa(int(v>>8&0xff)) + ";" + strconv.Itoa(int(v&0xff)) + "m"
}

// colors is the compact form palettes are declared in.
type colors struct {
	text, h1, h2, h3, h4, h5, h6 string
	em, strong, code, block      string
	quote, marker, link, url, hr string
}

func build(c colors) Palette {
	return Palette{
		Text:          FG(c.text),
		H1:            FG(c.h1),
		H2:            FG(c.h2),
		H3:            FG(c.h3),
		H4:            FG(c.h4),
		H5:            FG(c.h5),
		H6:            FG(c.h6),
		Emphasis:      FG(c.em),
		Strong:        FG(c.strong),
		CodeInline:    FG(c.code),
		CodeBlock:     FG(c.block),
		Quote:         FG(c.quote),
		ListMarker:    FG(c.marker),
		LinkText:      FG(c.link),
		LinkURL:       FG(c.url),
		ThematicBreak: FG(c.hr),
		TableBorder:   FG(c.hr),
	}
}

var (
	PaletteDefault = Palette{
		Text:          "\x1b[39m",
		H1:            "\x1b[1;95m",
		H2:            "\x1b[1;94m",
		H3:            "\x1b[1;96m",
		H4:            "\x1b[1;92m",
		H5:            "\x1b[1;93m",
		H6:            "\x1b[1;37m",
		Emphasis:      "\x1b[93m",
		Strong:        "\x1b[91m",
		CodeInline:    "\x1b[96m",
		CodeBlock:     "\x1b[36m",
		Quote:         "\x1b[90m",
		ListMarker:    "\x1b[95m",
		LinkText:      "\x1b[94m",
		LinkURL:       "\x1b[34m",
		ThematicBreak: "\x1b[90m",
		TableBorder:   "\x1b[90m",
	}
	PaletteDracula = build(colors{
		text: "#f8f8f2", h1: "#ff79c6", h2: "#bd93f9", h3: "#8be9fd", h4: "#50fa7b", h5: "#f1fa8c", h6: "#ffb86c",
		em: "#f1fa8c", strong: "#ffb86c", code: "#50fa7b", block: "#8be9fd",
		quote: "#6272a4", marker: "#ff79c6", link: "#8be9fd", url: "#6272a4", hr: "#44475a",
	})
	PaletteNord = build(colors{
		text: "#d8dee9", h1: "#88c0d0", h2: "#81a1c1", h3: "#5e81ac", h4: "#8fbcbb", h5: "#a3be8c", h6: "#b48ead",
		em: "#ebcb8b", strong: "#d08770", code: "#a3be8c", block: "#8fbcbb",
		quote: "#616e88", marker: "#88c0d0", link: "#81a1c1", url: "#5e81ac", hr: "#4c566a",
	})
	PaletteGruvbox = build(colors{
		text: "#ebdbb2", h1: "#fb4934", h2: "#fabd2f", h3: "#b8bb26", h4: "#8ec07c", h5: "#83a598", h6: "#d3869b",
		em: "#fabd2f", strong: "#fe8019", code: "#b8bb26", block: "#8ec07c",
		quote: "#928374", marker: "#fe8019", link: "#83a598", url: "#458588", hr: "#665c54",
	})
	PaletteGruvboxLight = build(colors{
		text: "#3c3836", h1: "#9d0006", h2: "#b57614", h3: "#79740e", h4: "#427b58", h5: "#076678", h6: "#8f3f71",
		em: "#b57614", strong: "#af3a03", code: "#79740e", block: "#427b58",
		quote: "#928374", marker: "#af3a03", link: "#076678", url: "#458588", hr: "#bdae93",
	})
	PaletteTokyoNight = build(colors{
		text: "#c0caf5", h1: "#7aa2f7", h2: "#bb9af7", h3: "#7dcfff", h4: "#9ece6a", h5: "#e0af68", h6: "#f7768e",
		em: "#e0af68", strong: "#ff9e64", code: "#9ece6a", block: "#7dcfff",
		quote: "#565f89", marker: "#bb9af7", link: "#7aa2f7", url: "#565f89", hr: "#3b4261",
	})
	PaletteCatppuccinMocha = build(colors{
		text: "#cdd6f4", h1: "#f38ba8", h2: "#fab387", h3: "#f9e2af", h4: "#a6e3a1", h5: "#89b4fa", h6: "#cba6f7",
		em: "#f9e2af", strong: "#fab387", code: "#a6e3a1", block: "#94e2d5",
		quote: "#6c7086", marker: "#cba6f7", link: "#89b4fa", url: "#74c7ec", hr: "#45475a",
	})
	PaletteSolarizedDark = build(colors{
		text: "#839496", h1: "#cb4b16", h2: "#b58900", h3: "#859900", h4: "#2aa198", h5: "#268bd2", h6: "#6c71c4",
		em: "#b58900", strong: "#cb4b16", code: "#2aa198", block: "#859900",
		quote: "#586e75", marker: "#d33682", link: "#268bd2", url: "#6c71c4", hr: "#073642",
	})
	PaletteSolarizedLight = build(colors{
		text: "#657b83", h1: "#cb4b16", h2: "#b58900", h3: "#859900", h4: "#2aa198", h5: "#268bd2", h6: "#6c71c4",
		em: "#b58900", strong: "#cb4b16", code: "#2aa198", block: "#859900",
		quote: "#93a1a1", marker: "#d33682", link: "#268bd2", url: "#6c71c4", hr: "#eee8d5",
	})
	PaletteGithubDark = build(colors{
		text: "#c9d1d9", h1: "#58a6ff", h2: "#79c0ff", h3: "#d2a8ff", h4: "#7ee787", h5: "#ffa657", h6: "#ff7b72",
		em: "#ffa657", strong: "#ff7b72", code: "#a5d6ff", block: "#7ee787",
		quote: "#8b949e", marker: "#d2a8ff", link: "#58a6ff", url: "#8b949e", hr: "#30363d",
	})
	PaletteGithubLight = build(colors{
		text: "#24292f", h1: "#0550ae", h2: "#0969da", h3: "#8250df", h4: "#116329", h5: "#953800", h6: "#cf222e",
		em: "#953800", strong: "#cf222e", code: "#0a3069", block: "#116329",
		quote: "#57606a", marker: "#8250df", link: "#0969da", url: "#57606a", hr: "#d0d7de",
	})
	PaletteOneDark = build(colors{
		text: "#abb2bf", h1: "#e06c75", h2: "#d19a66", h3: "#e5c07b", h4: "#98c379", h5: "#61afef", h6: "#c678dd",
		em: "#e5c07b", strong: "#d19a66", code: "#98c379", block: "#56b6c2",
		quote: "#5c6370", marker: "#c678dd", link: "#61afef", url: "#5c6370", hr: "#3e4451",
	})
	PaletteRosePine = build(colors{
		text: "#e0def4", h1: "#eb6f92", h2: "#f6c177", h3: "#ebbcba", h4: "#31748f", h5: "#9ccfd8", h6: "#c4a7e7",
		em: "#f6c177", strong: "#eb6f92", code: "#9ccfd8", block: "#31748f",
		quote: "#6e6a86", marker: "#c4a7e7", link: "#9ccfd8", url: "#6e6a86", hr: "#26233a",
	})
	PaletteKanagawa = build(colors{
		text: "#dcd7ba", h1: "#e82424", h2: "#ff9e3b", h3: "#e6c384", h4: "#98bb6c", h5: "#7e9cd8", h6: "#957fb8",
		em: "#e6c384", strong: "#ffa066", code: "#98bb6c", block: "#7aa89f",
		quote: "#727169", marker: "#957fb8", link: "#7fb4ca", url: "#727169", hr: "#54546d",
	})
)
