// Package site derives the ordered listing and tag index from a document set.
package site

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

// DefaultPermalink is used when no pattern is configured.
const DefaultPermalink = "posts/:slug/"

// Tag is one entry of the tag index.
type Tag struct {
	// Key identifies the tag: the trimmed name, case-folded. "Go" and "go"
	// are one tag; "C++" and "C#" are two.
	Key string
	// Slug is the tag's URL segment, unique within the site. It is the
	// slugified name, suffixed with a hash of Key when the plain slug is empty
	// or shared with another tag.
	Slug string
	// Name is the lexicographically smallest spelling seen.
	Name string
	// Documents carries the tag, in listing order.
	Documents []*content.Document
}

// Site is the derived, ephemeral view over a document set.
type Site struct {
	// Documents in listing order: date descending, slug ascending on ties.
	Documents []*content.Document
	Tags      []*Tag

	tagsBySlug map[string]*Tag
	tagsByKey  map[string]*Tag
	bySlug     map[string]*content.Document
}

// New orders docs and builds the tag index. docs is not modified.
func New(docs []*content.Document) *Site {
	ordered := slices.Clone(docs)
	slices.SortStableFunc(ordered, Compare)

	s := &Site{
		Documents:  ordered,
		tagsBySlug: make(map[string]*Tag),
		tagsByKey:  make(map[string]*Tag),
		bySlug:     make(map[string]*content.Document, len(ordered)),
	}
	for _, d := range ordered {
		s.bySlug[d.Slug] = d
		seen := make(map[string]bool, len(d.Tags))
		for _, name := range d.Tags {
			key := TagKey(name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			t, ok := s.tagsByKey[key]
			if !ok {
				t = &Tag{Key: key, Name: strings.TrimSpace(name)}
				s.tagsByKey[key] = t
				s.Tags = append(s.Tags, t)
			} else if n := strings.TrimSpace(name); n < t.Name {
				t.Name = n
			}
			t.Documents = append(t.Documents, d)
		}
	}
	s.assignTagSlugs()
	slices.SortFunc(s.Tags, func(a, b *Tag) int { return strings.Compare(a.Slug, b.Slug) })
	return s
}

// TagKey returns the identity of a tag name.
func TagKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// assignTagSlugs gives every tag a distinct URL segment. The result depends
// only on the set of tag keys.
func (s *Site) assignTagSlugs() {
	slices.SortFunc(s.Tags, func(a, b *Tag) int { return strings.Compare(a.Key, b.Key) })
	shared := make(map[string]int, len(s.Tags))
	for _, t := range s.Tags {
		shared[content.Slugify(t.Key)]++
	}
	for _, t := range s.Tags {
		base := content.Slugify(t.Key)
		slug := base
		if base == "" || shared[base] > 1 {
			slug = hashedSlug(base, t.Key, 8)
		}
		if _, taken := s.tagsBySlug[slug]; taken {
			slug = hashedSlug(base, t.Key, 2*sha256.Size)
		}
		t.Slug = slug
		s.tagsBySlug[slug] = t
	}
}

func hashedSlug(base, key string, n int) string {
	sum := sha256.Sum256([]byte(key))
	h := hex.EncodeToString(sum[:])[:n]
	if base == "" {
		return h
	}
	return base + "-" + h
}

// Compare orders documents by date descending, then slug ascending.
func Compare(a, b *content.Document) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return strings.Compare(a.Slug, b.Slug)
}

// Tag returns the tag with the given URL segment.
func (s *Site) Tag(slug string) (*Tag, bool) {
	t, ok := s.tagsBySlug[slug]
	return t, ok
}

// TagFor returns the tag a document's tag name belongs to.
func (s *Site) TagFor(name string) (*Tag, bool) {
	t, ok := s.tagsByKey[TagKey(name)]
	return t, ok
}

// Document returns the document with the given slug.
func (s *Site) Document(slug string) (*content.Document, bool) {
	d, ok := s.bySlug[slug]
	return d, ok
}

// Permalink expands pattern for d. The result is a slash-separated
// directory path without a leading slash and with a trailing slash.
func Permalink(pattern string, d *content.Document) string {
	if pattern == "" {
		pattern = DefaultPermalink
	}
	r := strings.NewReplacer(
		":year", fmt.Sprintf("%04d", d.Date.Year()),
		":month", fmt.Sprintf("%02d", int(d.Date.Month())),
		":day", fmt.Sprintf("%02d", d.Date.Day()),
		":slug", d.Slug,
	)
	p := strings.Trim(r.Replace(pattern), "/")
	return p + "/"
}

// TagPath is the directory of a tag page.
func TagPath(slug string) string {
	return "tags/" + slug + "/"
}
