package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
	"pkt.systems/marktree"
)

// optionFlag binds one marktree option to a command line flag.
type optionFlag struct {
	name  string
	usage string
	b     func(*marktree.Options) *bool
	s     func(*marktree.Options) *string
	list  func(*marktree.Options) *[]string
}

var optionFlags = []optionFlag{
	{name: "gfm", usage: "GitHub flavored Markdown", b: func(o *marktree.Options) *bool { return &o.GFM }},
	{name: "tables", usage: "Pipe tables (with --gfm)", b: func(o *marktree.Options) *bool { return &o.Tables }},
	{name: "breaks", usage: "Soft line breaks become hard breaks (with --gfm)", b: func(o *marktree.Options) *bool { return &o.Breaks }},
	{name: "pedantic", usage: "Legacy markdown.pl grammar", b: func(o *marktree.Options) *bool { return &o.Pedantic }},
	{name: "sanitize", usage: "Escape raw HTML", b: func(o *marktree.Options) *bool { return &o.Sanitize }},
	{name: "smart-lists", usage: "A new bullet character starts a new list", b: func(o *marktree.Options) *bool { return &o.SmartLists }},
	{name: "smartypants", usage: "Typographic quotes and dashes", b: func(o *marktree.Options) *bool { return &o.Smartypants }},
	{name: "mangle", usage: "Obfuscate autolinked email addresses", b: func(o *marktree.Options) *bool { return &o.Mangle }},
	{name: "header-ids", usage: "Emit heading ids", b: func(o *marktree.Options) *bool { return &o.HeaderIDs }},
	{name: "header-prefix", usage: "Prefix for heading ids", s: func(o *marktree.Options) *string { return &o.HeaderPrefix }},
	{name: "lang-prefix", usage: "Class prefix for code block languages", s: func(o *marktree.Options) *string { return &o.LangPrefix }},
	{name: "base-url", usage: "Resolve relative links against this URL", s: func(o *marktree.Options) *string { return &o.BaseURL }},
	{name: "xhtml", usage: "Self-closing void tags", b: func(o *marktree.Options) *bool { return &o.XHTML }},
	{name: "silent", usage: "Render errors as a notice instead of failing", b: func(o *marktree.Options) *bool { return &o.Silent }},
	{name: "front-matter", usage: "Strip a leading front matter block", b: func(o *marktree.Options) *bool { return &o.FrontMatter }},
	{name: "positions", usage: "Annotate output with source lines", b: func(o *marktree.Options) *bool { return &o.Positions }},
	{name: "soft-wrap", usage: "Break words longer than the width (ansi)", b: func(o *marktree.Options) *bool { return &o.SoftWrap }},
	{name: "components", usage: "HTML tags kept opaque in tree output", list: func(o *marktree.Options) *[]string { return &o.Components }},
}

func bindOptionFlags(flags *pflag.FlagSet, opts *marktree.Options) {
	for _, f := range optionFlags {
		switch {
		case f.b != nil:
			p := f.b(opts)
			flags.BoolVar(p, f.name, *p, f.usage)
		case f.s != nil:
			p := f.s(opts)
			flags.StringVar(p, f.name, *p, f.usage)
		case f.list != nil:
			p := f.list(opts)
			flags.StringSliceVar(p, f.name, *p, f.usage)
		}
	}
}

// mergeOptions applies the flags that were set explicitly on top of the
// options loaded from a config file.
func mergeOptions(file, fromFlags marktree.Options, flags *pflag.FlagSet) marktree.Options {
	out := file
	for _, f := range optionFlags {
		if !flags.Changed(f.name) {
			continue
		}
		switch {
		case f.b != nil:
			*f.b(&out) = *f.b(&fromFlags)
		case f.s != nil:
			*f.s(&out) = *f.s(&fromFlags)
		case f.list != nil:
			*f.list(&out) = *f.list(&fromFlags)
		}
	}
	return out
}

// loadOptions reads parser options from a YAML file. Keys missing from the
// file keep their defaults.
func loadOptions(path string) (marktree.Options, error) {
	opts := marktree.DefaultOptions()
	data, err := os.ReadFile(normalizePath(path))
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	return opts, nil
}
