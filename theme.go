package marktree

import (
	"maps"
	"slices"
	"strings"

	"pkt.systems/marktree/internal/palette"
)

// Style describes a terminal style as an ANSI prefix sequence.
type Style struct {
	Prefix string
}

// Apply wraps s in the style. Resets inside s restore the style so nested
// spans keep the enclosing color.
func (st Style) Apply(s string) string {
	if st.Prefix == "" || s == "" {
		return s
	}
	return st.Prefix + strings.ReplaceAll(s, palette.Reset, palette.Reset+st.Prefix) + palette.Reset
}

// Styles groups the semantic styles used by the terminal renderer.
type Styles struct {
	Text          Style
	Heading       [6]Style
	Emphasis      Style
	Strong        Style
	Strike        Style
	CodeInline    Style
	CodeBlock     Style
	Quote         Style
	ListMarker    Style
	LinkText      Style
	LinkURL       Style
	ThematicBreak Style
	TableBorder   Style
}

// Theme provides named styles for terminal rendering.
type Theme interface {
	Name() string
	Styles() Styles
}

type theme struct {
	name   string
	styles Styles
}

func (t theme) Name() string   { return t.name }
func (t theme) Styles() Styles { return t.styles }

// NewTheme returns a Theme from a Styles definition.
func NewTheme(name string, styles Styles) Theme {
	return theme{name: name, styles: styles}
}

func style(prefixes ...string) Style {
	var b strings.Builder
	for _, p := range prefixes {
		if p != "" {
			b.WriteString(p)
		}
	}
	return Style{Prefix: b.String()}
}

func stylesFromPalette(p palette.Palette) Styles {
	return Styles{
		Text:          style(p.Text),
		Heading:       [6]Style{style(p.H1), style(p.H2), style(p.H3), style(p.H4), style(p.H5), style(p.H6)},
		Emphasis:      style(palette.Italic, p.Emphasis),
		Strong:        style(palette.Bold, p.Strong),
		Strike:        style(palette.Strikethrough),
		CodeInline:    style(p.CodeInline),
		CodeBlock:     style(p.CodeBlock),
		Quote:         style(p.Quote),
		ListMarker:    style(p.ListMarker),
		LinkText:      style(palette.Underline, p.LinkText),
		LinkURL:       style(p.LinkURL),
		ThematicBreak: style(p.ThematicBreak),
		TableBorder:   style(p.TableBorder),
	}
}

var palettes = map[string]palette.Palette{
	"default":          palette.PaletteDefault,
	"dracula":          palette.PaletteDracula,
	"nord":             palette.PaletteNord,
	"gruvbox":          palette.PaletteGruvbox,
	"gruvbox-light":    palette.PaletteGruvboxLight,
	"tokyo-night":      palette.PaletteTokyoNight,
	"catppuccin-mocha": palette.PaletteCatppuccinMocha,
	"solarized-dark":   palette.PaletteSolarizedDark,
	"solarized-light":  palette.PaletteSolarizedLight,
	"github-dark":      palette.PaletteGithubDark,
	"github-light":     palette.PaletteGithubLight,
	"one-dark":         palette.PaletteOneDark,
	"rose-pine":        palette.PaletteRosePine,
	"kanagawa":         palette.PaletteKanagawa,
}

// builtinThemes holds one theme per palette plus "plain", which carries no
// escape sequences at all.
var builtinThemes = func() map[string]Theme {
	themes := make(map[string]Theme, len(palettes)+1)
	for name, p := range palettes {
		themes[name] = NewTheme(name, stylesFromPalette(p))
	}
	themes["plain"] = NewTheme("plain", Styles{})
	return themes
}()

// AvailableThemes returns the sorted names of the built-in themes.
func AvailableThemes() []string {
	return slices.Sorted(maps.Keys(builtinThemes))
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes["default"], true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	theme, ok := builtinThemes[normalized]
	return theme, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes["default"]
}
