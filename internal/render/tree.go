package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// Tree is a rendered site: slash-separated relative paths to file contents.
type Tree struct {
	files  map[string][]byte
	origin map[string]string
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{files: make(map[string][]byte), origin: make(map[string]string)}
}

// Add stores data at path on behalf of origin, a short description of what
// produced it. A path is written at most once: reusing it is a
// *PathCollisionError and leaves the first content in place.
func (t *Tree) Add(path, origin string, data []byte) error {
	if first, taken := t.origin[path]; taken {
		return &PathCollisionError{Path: path, First: first, Second: origin}
	}
	t.files[path] = data
	t.origin[path] = origin
	return nil
}

// Replace stores data at path whether or not it is already present.
func (t *Tree) Replace(path, origin string, data []byte) {
	t.files[path] = data
	t.origin[path] = origin
}

// Get returns the content at path.
func (t *Tree) Get(path string) ([]byte, bool) {
	b, ok := t.files[path]
	return b, ok
}

// Len is the number of files.
func (t *Tree) Len() int { return len(t.files) }

// Paths returns every path in sorted order.
func (t *Tree) Paths() []string {
	return slices.Sorted(maps.Keys(t.files))
}

// Digest is a sha256 over sorted paths and their contents. Equal trees have
// equal digests.
func (t *Tree) Digest() string {
	h := sha256.New()
	for _, p := range t.Paths() {
		fmt.Fprintf(h, "%s\x00%d\x00", p, len(t.files[p]))
		h.Write(t.files[p])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Write materialises the tree under dir.
func (t *Tree) Write(dir string) error {
	for _, p := range t.Paths() {
		target := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", p, err)
		}
		if err := os.WriteFile(target, t.files[p], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
	}
	return nil
}
