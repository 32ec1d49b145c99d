package marktree

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/naoina/toml"
	"gopkg.in/yaml.v3"
)

// FrontMatterFormat names the syntax of a front matter block.
type FrontMatterFormat uint8

const (
	FrontMatterNone FrontMatterFormat = iota
	FrontMatterYAML
	FrontMatterTOML
	FrontMatterJSON
)

func (f FrontMatterFormat) String() string {
	switch f {
	case FrontMatterYAML:
		return "yaml"
	case FrontMatterTOML:
		return "toml"
	case FrontMatterJSON:
		return "json"
	default:
		return "none"
	}
}

// FrontMatter is a metadata block found at the very start of a document.
type FrontMatter struct {
	Format FrontMatterFormat
	// Raw is the text between the delimiter lines.
	Raw string
	// Lines counts the source lines the block occupies, delimiters included.
	Lines int
}

// SplitFrontMatter detects a front matter block delimited by ---, +++ or ;;;
// lines. The opening line must be the first line of src and the line after
// it must look like metadata; otherwise ok is false and body is src.
func SplitFrontMatter(src string) (fm FrontMatter, body string, ok bool) {
	open, next, found := nextLine(src, 0)
	if !found {
		return FrontMatter{}, src, false
	}
	format, delim := openingFrontMatterDelimiter(open)
	if format == FrontMatterNone {
		return FrontMatter{}, src, false
	}
	second, _, found := nextLine(src, next)
	if !found || !frontMatterMetadataLikely(second) {
		return FrontMatter{}, src, false
	}
	for idx := next; idx < len(src); {
		line, after, _ := nextLine(src, idx)
		if strings.TrimSpace(line) == delim {
			return FrontMatter{
				Format: format,
				Raw:    src[next:idx],
				Lines:  strings.Count(src[:after], "\n") + boolInt(!strings.HasSuffix(src[:after], "\n")),
			}, src[after:], true
		}
		idx = after
	}
	return FrontMatter{}, src, false
}

// Decode unmarshals the block into v with the decoder for its format.
func (fm FrontMatter) Decode(v any) error {
	var err error
	data := []byte(fm.Raw)
	switch fm.Format {
	case FrontMatterYAML:
		err = yaml.Unmarshal(data, v)
	case FrontMatterTOML:
		err = toml.Unmarshal(data, v)
	case FrontMatterJSON:
		err = json.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: no front matter", ErrFrontMatter)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFrontMatter, fm.Format, err)
	}
	return nil
}

// Map decodes the block into a generic map.
func (fm FrontMatter) Map() (map[string]any, error) {
	var m map[string]any
	if err := fm.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// nextLine returns the line starting at start without its line ending and
// the offset just past it.
func nextLine(src string, start int) (string, int, bool) {
	if start >= len(src) {
		return "", start, false
	}
	i := strings.IndexByte(src[start:], '\n')
	if i < 0 {
		return strings.TrimSuffix(src[start:], "\r"), len(src), true
	}
	end := start + i
	return strings.TrimSuffix(src[start:end], "\r"), end + 1, true
}

func openingFrontMatterDelimiter(line string) (FrontMatterFormat, string) {
	switch strings.TrimSpace(strings.TrimPrefix(line, "\ufeff")) {
	case "---":
		return FrontMatterYAML, "---"
	case "+++":
		return FrontMatterTOML, "+++"
	case ";;;":
		return FrontMatterJSON, ";;;"
	default:
		return FrontMatterNone, ""
	}
}

func frontMatterMetadataLikely(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return true
	}
	return strings.ContainsAny(trimmed, ":=")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
