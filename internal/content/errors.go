package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedMetadata matches any front matter problem, including duplicate slugs.
	ErrMalformedMetadata = errors.New("malformed metadata")
	// ErrMalformedMarkup matches body problems such as an unterminated code fence.
	ErrMalformedMarkup = errors.New("malformed markup")
)

// MetadataError reports invalid or missing front matter.
type MetadataError struct {
	Path   string
	Field  string
	Reason string
	Err    error
}

func (e *MetadataError) Error() string {
	var b strings.Builder
	b.WriteString(e.Path)
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MetadataError) Unwrap() error { return e.Err }

func (e *MetadataError) Is(target error) bool { return target == ErrMalformedMetadata }

// MarkupError reports a body that cannot be rendered.
type MarkupError struct {
	Path string
	// Line is the 1-based line in the source file.
	Line   int
	Reason string
}

func (e *MarkupError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
}

func (e *MarkupError) Is(target error) bool { return target == ErrMalformedMarkup }

// DuplicateSlugError reports two or more documents resolving to the same slug.
type DuplicateSlugError struct {
	Slug  string
	Paths []string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("duplicate slug %q: %s", e.Slug, strings.Join(e.Paths, ", "))
}

func (e *DuplicateSlugError) Is(target error) bool { return target == ErrMalformedMetadata }
