package marktree

import (
	"context"
	"log/slog"
)

// Options controls lexing, parsing and the built-in renderers. A fresh copy
// is resolved for every call, so one Options value can be shared freely.
type Options struct {
	GFM          bool     `yaml:"gfm" json:"gfm"`
	Tables       bool     `yaml:"tables" json:"tables"`
	Breaks       bool     `yaml:"breaks" json:"breaks"`
	Pedantic     bool     `yaml:"pedantic" json:"pedantic"`
	Sanitize     bool     `yaml:"sanitize" json:"sanitize"`
	SmartLists   bool     `yaml:"smartLists" json:"smartLists"`
	Smartypants  bool     `yaml:"smartypants" json:"smartypants"`
	Mangle       bool     `yaml:"mangle" json:"mangle"`
	HeaderIDs    bool     `yaml:"headerIds" json:"headerIds"`
	HeaderPrefix string   `yaml:"headerPrefix" json:"headerPrefix"`
	LangPrefix   string   `yaml:"langPrefix" json:"langPrefix"`
	BaseURL      string   `yaml:"baseUrl" json:"baseUrl"`
	XHTML        bool     `yaml:"xhtml" json:"xhtml"`
	Silent       bool     `yaml:"silent" json:"silent"`
	FrontMatter  bool     `yaml:"frontMatter" json:"frontMatter"`
	Positions    bool     `yaml:"positions" json:"positions"`
	Components   []string `yaml:"components" json:"components"`
	OSC8         bool     `yaml:"osc8" json:"osc8"`
	SoftWrap     bool     `yaml:"softWrap" json:"softWrap"`

	// Sanitizer escapes raw HTML when Sanitize is on. Nil means the default
	// HTML escaping.
	Sanitizer func(html string) string `yaml:"-" json:"-"`
	// Highlight rewrites code block contents synchronously. Returning "" or
	// the input unchanged leaves the block to be escaped as usual.
	Highlight func(code, lang string) string `yaml:"-" json:"-"`
	// HighlightAsync is used by ParseAsync for every code block.
	HighlightAsync HighlightFunc `yaml:"-" json:"-"`
	// Renderer replaces the markup renderer used by HTML.
	Renderer Renderer[string] `yaml:"-" json:"-"`
	// NodeFunc builds element nodes for the tree renderer.
	NodeFunc NodeFunc     `yaml:"-" json:"-"`
	Logger   *slog.Logger `yaml:"-" json:"-"`
}

// HighlightFunc highlights one code block. A non-nil error aborts the parse.
type HighlightFunc func(ctx context.Context, code, lang string) (string, error)

// Option configures a call.
type Option func(*Options)

// DefaultOptions returns the option set used when no Option is given.
func DefaultOptions() Options {
	return Options{
		GFM:        true,
		Tables:     true,
		Mangle:     true,
		HeaderIDs:  true,
		LangPrefix: "language-",
	}
}

func newConfig(opts ...Option) *Options {
	cfg := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &cfg
}

// WithOptions replaces the whole option set, typically one loaded from a
// config file. Options given after it still apply on top.
func WithOptions(o Options) Option {
	return func(cfg *Options) {
		*cfg = o
	}
}

// WithGFM enables GitHub flavored block and inline rules.
func WithGFM(enabled bool) Option {
	return func(cfg *Options) {
		cfg.GFM = enabled
	}
}

// WithTables enables pipe tables. It only has an effect together with GFM.
func WithTables(enabled bool) Option {
	return func(cfg *Options) {
		cfg.Tables = enabled
	}
}

// WithBreaks turns soft line breaks into hard breaks. GFM only.
func WithBreaks(enabled bool) Option {
	return func(cfg *Options) {
		cfg.Breaks = enabled
	}
}

// WithPedantic selects the legacy markdown.pl grammar. It wins over GFM.
func WithPedantic(enabled bool) Option {
	return func(cfg *Options) {
		cfg.Pedantic = enabled
	}
}

// WithSanitize treats raw HTML as text.
func WithSanitize(enabled bool) Option {
	return func(cfg *Options) {
		cfg.Sanitize = enabled
	}
}

// WithSanitizer sets the function that escapes raw HTML in sanitize mode.
func WithSanitizer(fn func(string) string) Option {
	return func(cfg *Options) {
		cfg.Sanitizer = fn
	}
}

// WithSmartLists lets a change of bullet character start a new list.
func WithSmartLists(enabled bool) Option {
	return func(cfg *Options) {
		cfg.SmartLists = enabled
	}
}

// WithSmartypants enables typographic quotes, dashes and ellipses.
func WithSmartypants(enabled bool) Option {
	return func(cfg *Options) {
		cfg.Smartypants = enabled
	}
}

// WithMangle obfuscates autolinked email addresses with character references.
func WithMangle(enabled bool) Option {
	return func(cfg *Options) {
		cfg.Mangle = enabled
	}
}

// WithHeaderIDs toggles id attributes on headings.
func WithHeaderIDs(enabled bool) Option {
	return func(cfg *Options) {
		cfg.HeaderIDs = enabled
	}
}

func WithHeaderPrefix(prefix string) Option {
	return func(cfg *Options) {
		cfg.HeaderPrefix = prefix
	}
}

func WithLangPrefix(prefix string) Option {
	return func(cfg *Options) {
		cfg.LangPrefix = prefix
	}
}

// WithBaseURL resolves relative link and image targets against base.
func WithBaseURL(base string) Option {
	return func(cfg *Options) {
		cfg.BaseURL = base
	}
}

// WithXHTML emits self-closing void tags.
func WithXHTML(enabled bool) Option {
	return func(cfg *Options) {
		cfg.XHTML = enabled
	}
}

// WithSilent renders failures as an error notice instead of returning them.
func WithSilent(enabled bool) Option {
	return func(cfg *Options) {
		cfg.Silent = enabled
	}
}

// WithFrontMatter strips a leading front matter block before lexing.
func WithFrontMatter(enabled bool) Option {
	return func(cfg *Options) {
		cfg.FrontMatter = enabled
	}
}

// WithPositions records source line ranges on tree nodes and as data
// attributes in HTML output.
func WithPositions(enabled bool) Option {
	return func(cfg *Options) {
		cfg.Positions = enabled
	}
}

// WithComponents names HTML tags the tree renderer keeps opaque.
func WithComponents(names ...string) Option {
	return func(cfg *Options) {
		cfg.Components = append([]string(nil), names...)
	}
}

// WithOSC8 enables or disables OSC 8 hyperlinks in terminal output.
func WithOSC8(enabled bool) Option {
	return func(cfg *Options) {
		cfg.OSC8 = enabled
	}
}

// WithSoftWrap breaks words longer than the terminal width.
func WithSoftWrap(enabled bool) Option {
	return func(cfg *Options) {
		cfg.SoftWrap = enabled
	}
}

func WithHighlight(fn func(code, lang string) string) Option {
	return func(cfg *Options) {
		cfg.Highlight = fn
	}
}

// WithAsyncHighlight sets the highlighter ParseAsync fans code blocks out to.
func WithAsyncHighlight(fn HighlightFunc) Option {
	return func(cfg *Options) {
		cfg.HighlightAsync = fn
	}
}

// WithRenderer replaces the markup renderer used by HTML.
func WithRenderer(r Renderer[string]) Option {
	return func(cfg *Options) {
		cfg.Renderer = r
	}
}

// WithNodeFunc replaces the element constructor used by Tree.
func WithNodeFunc(fn NodeFunc) Option {
	return func(cfg *Options) {
		cfg.NodeFunc = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Options) {
		cfg.Logger = logger
	}
}

// inlineProfile picks the inline grammar for a set of options.
func inlineProfile(o *Options) profile {
	switch {
	case o.Pedantic:
		return profilePedantic
	case o.GFM && o.Breaks:
		return profileBreaks
	case o.GFM:
		return profileGFM
	default:
		return profileNormal
	}
}
