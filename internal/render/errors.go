package render

import "fmt"

// TemplateError reports a template that failed to parse or execute.
type TemplateError struct {
	Template string
	// Path is the page being rendered, empty for parse failures.
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("template %s: %v", e.Template, e.Err)
	}
	return fmt.Sprintf("template %s (rendering %s): %v", e.Template, e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// BodyError reports a document body that failed to convert.
type BodyError struct {
	Path string
	Err  error
}

func (e *BodyError) Error() string { return fmt.Sprintf("convert %s: %v", e.Path, e.Err) }

func (e *BodyError) Unwrap() error { return e.Err }

// PathCollisionError reports two outputs rendered to the same path, for
// example a post whose permalink lands on the tag listing.
type PathCollisionError struct {
	Path   string
	First  string
	Second string
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("output path %s produced by both %s and %s", e.Path, e.First, e.Second)
}
