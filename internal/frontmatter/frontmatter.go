// Package frontmatter splits YAML front matter from a Markdown body and
// (de)serialises it deterministically.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// Block is a document split at its front matter boundary.
type Block struct {
	// Raw is the YAML between the delimiters, without them.
	Raw []byte
	// Body is everything after the closing delimiter line.
	Body []byte
	// Present reports whether the document opened with a front matter delimiter.
	Present bool
	// Newline is the detected line ending ("\n" or "\r\n").
	Newline string
	// BodyLine is the 1-based line number on which Body starts.
	BodyLine int
}

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// A document that does not start with a delimiter line yields Present=false and
// the full input as Body. The closing delimiter may be the last line of the
// file without a trailing newline.
func Split(content []byte) (Block, error) {
	nl := detectNewline(content)
	b := Block{Body: content, Newline: nl, BodyLine: 1}

	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return b, nil
	}

	rest := content[len(open):]
	line := 2
	for len(rest) > 0 || line == 2 {
		end := bytes.Index(rest, []byte(nl))
		var current []byte
		if end < 0 {
			current = rest
		} else {
			current = rest[:end]
		}
		if string(bytes.TrimRight(current, " \t")) == delimiter {
			raw := content[len(open) : len(content)-len(rest)]
			body := []byte{}
			if end >= 0 {
				body = rest[end+len(nl):]
			}
			return Block{Raw: raw, Body: body, Present: true, Newline: nl, BodyLine: line + 1}, nil
		}
		if end < 0 {
			break
		}
		rest = rest[end+len(nl):]
		line++
	}
	return Block{Newline: nl}, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
// Empty input yields an empty, non-nil map.
func ParseYAML(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Compose renders fields as a front matter block followed by body.
func Compose(fields map[string]any, body []byte, newline string) ([]byte, error) {
	if newline == "" {
		newline = "\n"
	}
	raw, err := SerializeYAML(fields, newline)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(delimiter + newline)
	buf.Write(raw)
	buf.WriteString(delimiter + newline)
	buf.Write(body)
	return buf.Bytes(), nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
