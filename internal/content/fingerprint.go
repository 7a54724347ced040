package content

import (
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
)

// Keys that do not contribute to a document's fingerprint.
var fingerprintExcluded = map[string]bool{
	mdfp.FingerprintField: true,
	"lastmod":             true,
	"uid":                 true,
	"aliases":             true,
}

// Fingerprint computes the canonical content fingerprint of a document: sorted
// LF-terminated YAML (one trailing newline trimmed) plus body, hashed by mdfp.
// Two documents with equal fingerprints render to the same body HTML.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if !fingerprintExcluded[k] {
			hashed[k] = v
		}
	}

	fm := ""
	if len(hashed) > 0 {
		serialized, err := frontmatter.SerializeYAML(hashed, "\n")
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}
