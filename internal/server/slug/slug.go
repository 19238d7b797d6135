// Package slug derives URL slugs from titles.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a title has no sluggable characters.
const Fallback = "article"

// MaxLength bounds the base slug so suffixed variants fit the column.
const MaxLength = 240

var (
	disallowed = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)
	reserved   = map[string]struct{}{"search": {}}
)

// Make converts title to lower-case ASCII words joined by hyphens.
// "Hello World" becomes "hello-world"; accents are folded ("Café" -> "cafe").
func Make(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	for _, r := range folded {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}

	s := disallowed.ReplaceAllString(strings.ToLower(b.String()), "")
	s = separators.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.Trim(s, "-_")
	if len(s) > MaxLength {
		s = strings.Trim(s[:MaxLength], "-_")
	}
	if s == "" {
		return Fallback
	}
	return s
}

// Candidate returns the n-th slug to try for base: base itself for n == 0,
// then base-1, base-2 and so on.
func Candidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// Reserved reports whether s collides with a fixed route segment.
func Reserved(s string) bool {
	_, ok := reserved[s]
	return ok
}

// Resolve returns the first candidate for base that is neither reserved nor
// taken.
func Resolve(base string, taken func(string) (bool, error)) (string, error) {
	for n := 0; ; n++ {
		c := Candidate(base, n)
		if Reserved(c) {
			continue
		}
		used, err := taken(c)
		if err != nil {
			return "", err
		}
		if !used {
			return c, nil
		}
	}
}
