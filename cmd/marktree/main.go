package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
	"pkt.systems/marktree"
	"pkt.systems/version"
)

const (
	defaultThemeName = "default"
	defaultWidth     = 80
	defaultFormat    = "html"
)

var formats = []string{"html", "tree", "yaml", "tokens", "text", "ansi"}

func init() {
	version.SetDefaultModule("pkt.systems/marktree")
}

// errUsage marks errors caused by bad flags or arguments.
var errUsage = errors.New("usage")

type cliConfig struct {
	format     string
	configPath string
	themeName  string
	width      int
	osc8       string
	outPath    string
	listThemes bool
	watch      bool
	verbose    bool
	version    bool
	boring     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cli cliConfig
	flags := pflag.NewFlagSet("marktree", pflag.ContinueOnError)
	flags.StringVarP(&cli.format, "format", "f", defaultFormat, "Output format: "+strings.Join(formats, "|"))
	flags.StringVarP(&cli.configPath, "config", "c", "", "YAML file with parser options")
	flags.StringVarP(&cli.themeName, "theme", "t", defaultThemeName, "Theme name for ansi output")
	flags.IntVarP(&cli.width, "width", "w", 0, "Output width for ansi output (0 uses terminal width if available)")
	flags.StringVarP(&cli.osc8, "osc8", "8", "auto", "OSC8 hyperlinks: auto|on|off")
	flags.StringVarP(&cli.outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVar(&cli.listThemes, "list-themes", false, "List available themes")
	flags.BoolVar(&cli.watch, "watch", false, "Render again whenever an input file changes")
	flags.BoolVarP(&cli.verbose, "verbose", "v", false, "Debug logging on stderr")
	flags.BoolVar(&cli.version, "version", false, "Print version and exit")
	flags.BoolVarP(&cli.boring, "boring", "b", false, "ANSI output without colors")
	opts := marktree.DefaultOptions()
	bindOptionFlags(flags, &opts)

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, version.Module(), version.Current())
		fmt.Fprintf(os.Stderr, "Usage: marktree [flags] [inputs...]\n")
		fmt.Fprintln(os.Stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if cli.version {
		fmt.Fprintln(os.Stdout, version.Module(), version.Current())
		return nil
	}
	if cli.listThemes {
		printThemes(os.Stdout)
		return nil
	}

	level := slog.LevelInfo
	if cli.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if cli.configPath != "" {
		fileOpts, err := loadOptions(cli.configPath)
		if err != nil {
			return err
		}
		opts = mergeOptions(fileOpts, opts, flags)
	}
	opts.Logger = logger

	job, err := newJob(cli, opts)
	if err != nil {
		return err
	}

	inputs := flags.Args()
	if cli.watch {
		if len(inputs) == 0 {
			return fmt.Errorf("%w: --watch needs at least one input file", errUsage)
		}
		return watch(ctx, logger, watchablePaths(inputs), func() error {
			return job.runOnce(inputs)
		})
	}
	return job.runOnce(inputs)
}

// job is one configured conversion from inputs to an output.
type job struct {
	format  string
	outPath string
	width   int
	theme   marktree.Theme
	opts    marktree.Options
}

func newJob(cli cliConfig, opts marktree.Options) (*job, error) {
	format := strings.ToLower(strings.TrimSpace(cli.format))
	if !validFormat(format) {
		return nil, fmt.Errorf("%w: unknown format %q (want %s)", errUsage, cli.format, strings.Join(formats, "|"))
	}
	theme, ok := marktree.ThemeByName(cli.themeName)
	if !ok {
		printThemes(os.Stderr)
		return nil, fmt.Errorf("%w: unknown theme %q", errUsage, cli.themeName)
	}
	if cli.boring {
		theme = boringTheme()
	}
	osc8, err := resolveOSC8(cli.osc8)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid --osc8 %q: %v", errUsage, cli.osc8, err)
	}
	opts.OSC8 = osc8
	j := &job{format: format, outPath: cli.outPath, theme: theme, opts: opts}
	if format == "ansi" {
		j.width = resolveWidth(cli.width)
	}
	return j, nil
}

func validFormat(format string) bool {
	for _, f := range formats {
		if f == format {
			return true
		}
	}
	return false
}

func (j *job) runOnce(inputs []string) error {
	reader, closer, err := openInputs(inputs)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	writer, closeOut, err := resolveOutput(j.outPath)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}
	return j.convert(reader, writer)
}

func (j *job) convert(r io.Reader, w io.Writer) error {
	opt := marktree.WithOptions(j.opts)
	if j.format == "ansi" {
		return marktree.Render(marktree.RenderRequest{
			Reader:  r,
			Writer:  w,
			Width:   j.width,
			Theme:   j.theme,
			Options: []marktree.Option{opt},
		})
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := marktree.ValidateInput(src); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	switch j.format {
	case "html":
		out, err := marktree.HTML(string(src), opt)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case "text":
		out, err := marktree.Text(string(src), opt)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out+"\n")
		return err
	case "tree":
		nodes, err := marktree.Tree(string(src), opt)
		if err != nil {
			return err
		}
		return marktree.RenderNodes(w, nodes)
	case "yaml":
		nodes, err := marktree.Tree(string(src), opt)
		if err != nil {
			return err
		}
		return writeYAML(w, nodes)
	case "tokens":
		tokens, _, err := marktree.Lex(string(src), opt)
		if err != nil {
			return err
		}
		return writeYAML(w, tokens)
	}
	return fmt.Errorf("%w: unknown format %q", errUsage, j.format)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func printThemes(w io.Writer) {
	for _, name := range marktree.AvailableThemes() {
		fmt.Fprintln(w, name)
	}
}

func resolveWidth(width int) int {
	if width > 0 {
		return width
	}
	return terminalWidth(defaultWidth)
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

func resolveOSC8(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return marktree.DetectOSC8Support() && term.IsTerminal(int(os.Stdout.Fd())), nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected auto|on|off")
	}
}

func boringTheme() marktree.Theme {
	return marktree.NewTheme("boring", marktree.Styles{})
}

type inputSource struct {
	open func() (io.Reader, io.Closer, error)
}

type multiInputReader struct {
	sources   []inputSource
	idx       int
	cur       io.Reader
	curCloser io.Closer
	closed    bool
}

func (m *multiInputReader) Read(p []byte) (int, error) {
	for {
		if m.closed {
			return 0, io.EOF
		}
		if m.cur == nil {
			if m.idx >= len(m.sources) {
				m.closed = true
				return 0, io.EOF
			}
			reader, closer, err := m.sources[m.idx].open()
			if err != nil {
				return 0, err
			}
			m.cur = reader
			m.curCloser = closer
			m.idx++
		}
		n, err := m.cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			if m.curCloser != nil {
				_ = m.curCloser.Close()
			}
			m.cur = nil
			m.curCloser = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func (m *multiInputReader) Close() error {
	m.closed = true
	if m.curCloser != nil {
		return m.curCloser.Close()
	}
	return nil
}

func openInputs(args []string) (io.Reader, io.Closer, error) {
	if len(args) == 0 {
		return os.Stdin, nil, nil
	}
	sources := make([]inputSource, 0, len(args))
	for _, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}
	m := &multiInputReader{sources: sources}
	return m, m, nil
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				body, err := marktree.Fetch(context.Background(), http.DefaultClient, raw)
				if err != nil {
					return nil, nil, err
				}
				return body, body, nil
			}}, nil
		case "file":
			path := fileURLPath(u)
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openFile(path)
			}}, nil
		}
	}
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return openFile(raw)
	}}, nil
}

func fileURLPath(u *url.URL) string {
	path := u.Path
	if path == "" {
		path = u.Host
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	return path
}

func openFile(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(normalizePath(path))
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return os.Stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}
