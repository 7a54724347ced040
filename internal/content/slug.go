package content

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var filenamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)\.(md|markdown)$`)

// FileInfo holds the defaults encoded in an article filename.
type FileInfo struct {
	Date time.Time
	Slug string
}

// ParseFilename extracts the publish date and slug from a base name such as
// "2024-12-13-unit-testing-actor.md". It reports false for names that do not
// follow the convention or carry an impossible date.
func ParseFilename(name string) (FileInfo, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return FileInfo{}, false
	}
	date, err := time.Parse(time.DateOnly, m[1])
	if err != nil {
		return FileInfo{}, false
	}
	slug := Slugify(m[2])
	if slug == "" {
		return FileInfo{}, false
	}
	return FileInfo{Date: date, Slug: slug}, true
}

// Slugify returns a URL-safe slug: diacritics are folded, letters lowercased
// and every run of other characters collapsed to a single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
