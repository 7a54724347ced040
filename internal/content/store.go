package content

import (
	"context"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Store scans a directory tree for articles.
type Store struct {
	fsys   fs.FS
	root   string
	drafts bool
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithDrafts includes documents with `published: false`.
func WithDrafts(include bool) Option {
	return func(s *Store) { s.drafts = include }
}

// WithLogger sets the logger used for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string, opts ...Option) *Store {
	return NewStoreFS(os.DirFS(dir), dir, opts...)
}

// NewStoreFS returns a Store reading from fsys. root is only used in messages.
func NewStoreFS(fsys fs.FS, root string, opts ...Option) *Store {
	s := &Store{fsys: fsys, root: root, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory the store was opened on.
func (s *Store) Root() string { return s.root }

// Documents returns a lazy sequence over the store. Each iteration rescans the
// directory; files are read and parsed only as the sequence advances, in
// lexical path order. The first error is yielded and ends the sequence.
func (s *Store) Documents(ctx context.Context) iter.Seq2[*Document, error] {
	return func(yield func(*Document, error) bool) {
		paths, err := s.scan()
		if err != nil {
			yield(nil, err)
			return
		}
		for _, p := range paths {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			info, ok := ParseFilename(path.Base(p))
			if !ok {
				s.logger.Debug("Skipping file not matching YYYY-MM-DD-slug.md", logfields.Path(p))
				continue
			}
			data, err := fs.ReadFile(s.fsys, p)
			if err != nil {
				yield(nil, err)
				return
			}
			doc, err := Parse(p, data, info)
			if err != nil {
				yield(nil, err)
				return
			}
			if doc.Draft && !s.drafts {
				s.logger.Debug("Skipping draft", logfields.Path(p), logfields.Slug(doc.Slug))
				continue
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Load reads every document, failing on the first malformed one or on a
// duplicate slug. Either all documents are returned or none.
func (s *Store) Load(ctx context.Context) ([]*Document, error) {
	var docs []*Document
	seen := make(map[string]*Document)
	for doc, err := range s.Documents(ctx) {
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[doc.Slug]; dup {
			return nil, &DuplicateSlugError{Slug: doc.Slug, Paths: []string{prev.Path, doc.Path}}
		}
		seen[doc.Slug] = doc
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) scan() ([]string, error) {
	var paths []string
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(name)
		if ext == ".md" || ext == ".markdown" {
			paths = append(paths, p)
		}
		return nil
	})
	return paths, err
}

// Check parses every document, drafts included, and returns all problems
// found rather than stopping at the first. It returns the number of
// documents that parsed cleanly.
func (s *Store) Check(ctx context.Context) (int, []error) {
	paths, err := s.scan()
	if err != nil {
		return 0, []error{err}
	}
	var (
		errs []error
		ok   int
		seen = make(map[string]string)
	)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return ok, append(errs, err)
		}
		info, matched := ParseFilename(path.Base(p))
		if !matched {
			continue
		}
		data, err := fs.ReadFile(s.fsys, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		doc, err := Parse(p, data, info)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := seen[doc.Slug]; dup {
			errs = append(errs, &DuplicateSlugError{Slug: doc.Slug, Paths: []string{prev, doc.Path}})
			continue
		}
		seen[doc.Slug] = doc.Path
		ok++
	}
	return ok, errs
}
