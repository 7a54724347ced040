// Package content reads the article store: Markdown files named
// YYYY-MM-DD-<slug>.md carrying YAML front matter.
//
// The store is read-only. Documents are produced lazily by Store.Documents and
// are immutable once returned; Store.Load collects them and enforces slug
// uniqueness.
package content
