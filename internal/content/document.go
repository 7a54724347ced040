package content

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
)

// Document is a single article. It is not modified after Parse returns.
type Document struct {
	// Path is the slash-separated path relative to the store root.
	Path  string
	Slug  string
	Title string
	// Excerpt is the explicit front matter excerpt; empty means derive it
	// from the rendered body.
	Excerpt string
	// Tags are trimmed, de-duplicated and sorted.
	Tags  []string
	Date  time.Time
	Draft bool
	// Params holds every front matter key not interpreted above.
	Params map[string]any
	Body   []byte
	// BodyLine is the 1-based source line on which Body starts.
	BodyLine    int
	Fingerprint string
}

const (
	fieldTitle     = "title"
	fieldExcerpt   = "excerpt"
	fieldTags      = "tags"
	fieldDate      = "date"
	fieldSlug      = "slug"
	fieldPublished = "published"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Parse builds a Document from raw file data. defaults carries the date and
// slug encoded in the filename; front matter may override both.
func Parse(path string, data []byte, defaults FileInfo) (*Document, error) {
	block, err := frontmatter.Split(data)
	if err != nil {
		if errors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
			return nil, &MetadataError{Path: path, Reason: "front matter is not terminated", Err: err}
		}
		return nil, &MetadataError{Path: path, Reason: "cannot split front matter", Err: err}
	}
	if !block.Present {
		return nil, &MetadataError{Path: path, Field: fieldTitle, Reason: "missing front matter"}
	}

	fields, err := frontmatter.ParseYAML(block.Raw)
	if err != nil {
		return nil, &MetadataError{Path: path, Reason: "invalid YAML", Err: err}
	}

	doc := &Document{
		Path:     path,
		Slug:     defaults.Slug,
		Date:     defaults.Date,
		Body:     block.Body,
		BodyLine: block.BodyLine,
		Params:   map[string]any{},
	}

	title, ok := fields[fieldTitle].(string)
	if !ok || strings.TrimSpace(title) == "" {
		reason := "title is required"
		if _, present := fields[fieldTitle]; present && !ok {
			reason = fmt.Sprintf("title must be a string, got %T", fields[fieldTitle])
		}
		return nil, &MetadataError{Path: path, Field: fieldTitle, Reason: reason}
	}
	doc.Title = strings.TrimSpace(title)

	if raw, present := fields[fieldExcerpt]; present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return nil, &MetadataError{Path: path, Field: fieldExcerpt, Reason: fmt.Sprintf("excerpt must be a string, got %T", raw)}
		}
		doc.Excerpt = strings.TrimSpace(s)
	}

	if doc.Tags, err = parseTags(fields[fieldTags]); err != nil {
		return nil, &MetadataError{Path: path, Field: fieldTags, Reason: err.Error()}
	}

	if raw, present := fields[fieldDate]; present && raw != nil {
		if doc.Date, err = parseDate(raw); err != nil {
			return nil, &MetadataError{Path: path, Field: fieldDate, Reason: err.Error()}
		}
	}
	if doc.Date.IsZero() {
		return nil, &MetadataError{Path: path, Field: fieldDate, Reason: "no date in filename or front matter"}
	}

	if raw, present := fields[fieldSlug]; present && raw != nil {
		s, ok := raw.(string)
		if !ok || Slugify(s) == "" {
			return nil, &MetadataError{Path: path, Field: fieldSlug, Reason: "slug must be a non-empty string"}
		}
		doc.Slug = Slugify(s)
	}
	if doc.Slug == "" {
		doc.Slug = Slugify(doc.Title)
	}

	if raw, present := fields[fieldPublished]; present && raw != nil {
		published, ok := raw.(bool)
		if !ok {
			return nil, &MetadataError{Path: path, Field: fieldPublished, Reason: fmt.Sprintf("published must be a boolean, got %T", raw)}
		}
		doc.Draft = !published
	}

	for k, v := range fields {
		switch k {
		case fieldTitle, fieldExcerpt, fieldTags, fieldDate, fieldSlug, fieldPublished:
		default:
			doc.Params[k] = v
		}
	}

	if line := unterminatedFence(block.Body); line > 0 {
		return nil, &MarkupError{Path: path, Line: block.BodyLine + line - 1, Reason: "code fence is never closed"}
	}

	if doc.Fingerprint, err = Fingerprint(fields, block.Body); err != nil {
		return nil, &MetadataError{Path: path, Reason: "cannot fingerprint front matter", Err: err}
	}
	return doc, nil
}

func parseTags(raw any) ([]string, error) {
	var tags []string
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case string:
		tags = strings.Fields(v)
	case []any:
		for _, item := range v {
			switch s := item.(type) {
			case string:
				tags = append(tags, s)
			case int, int64, float64, bool:
				tags = append(tags, fmt.Sprint(s))
			default:
				return nil, fmt.Errorf("tags must be strings, got %T", item)
			}
		}
	default:
		return nil, fmt.Errorf("tags must be a list or a space-separated string, got %T", raw)
	}

	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set)), nil
}

func parseDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", v)
	default:
		return time.Time{}, fmt.Errorf("date must be a date or timestamp, got %T", raw)
	}
}
