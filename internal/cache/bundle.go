// Package cache persists rendered article bodies between builds.
//
// A Bundle maps document fingerprints to converted HTML. Bundles are stored
// in a storage.BlobStore under a key derived from the dependency lock file and
// renderer options, so a dependency or option change starts from an empty
// bundle.
package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const bundleVersion = 1

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// Bundle is a set of rendered bodies keyed by document fingerprint. It
// implements render.BodyCache and is safe for concurrent use.
type Bundle struct {
	mu      sync.Mutex
	entries map[string][]byte
	used    map[string]bool
	hits    int
	misses  int
}

type bundleFile struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries"`
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{entries: make(map[string][]byte), used: make(map[string]bool)}
}

// Get returns the body rendered for fingerprint.
func (b *Bundle) Get(fingerprint string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	html, ok := b.entries[fingerprint]
	if ok {
		b.hits++
		b.used[fingerprint] = true
	} else {
		b.misses++
	}
	return html, ok
}

// Put records the body rendered for fingerprint.
func (b *Bundle) Put(fingerprint string, html []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[fingerprint] = html
	b.used[fingerprint] = true
}

// Len is the number of stored bodies.
func (b *Bundle) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Stats returns the hit and miss counts since the bundle was created.
func (b *Bundle) Stats() (hits, misses int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits, b.misses
}

// Compact returns a bundle holding only entries read or written since this
// bundle was created, dropping bodies of deleted or edited documents.
func (b *Bundle) Compact() *Bundle {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := NewBundle()
	for fp := range b.used {
		out.entries[fp] = b.entries[fp]
	}
	return out
}

// MarshalBinary encodes the bundle as zstd-compressed JSON.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	b.mu.Lock()
	f := bundleFile{Version: bundleVersion, Entries: make(map[string]string, len(b.entries))}
	for fp, html := range b.entries {
		f.Entries[fp] = string(html)
	}
	b.mu.Unlock()

	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return encoder.EncodeAll(raw, nil), nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (b *Bundle) UnmarshalBinary(data []byte) error {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("decompress bundle: %w", err)
	}
	var f bundleFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("decode bundle: %w", err)
	}
	if f.Version != bundleVersion {
		return fmt.Errorf("unsupported bundle version %d", f.Version)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string][]byte, len(f.Entries))
	for fp, html := range f.Entries {
		b.entries[fp] = []byte(html)
	}
	b.used = make(map[string]bool)
	return nil
}
