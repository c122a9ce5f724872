package folio

import (
	"math/rand"
	"strings"
	"unicode"
)

const (
	slugAlphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	slugSuffixLen = 6
)

// slugify lowercases the name and collapses anything that is not a letter or
// digit into single dashes.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// randomSuffix returns a 6-character base36 tag.
func randomSuffix() string {
	b := make([]byte, slugSuffixLen)
	for i := range b {
		b[i] = slugAlphabet[rand.Intn(len(slugAlphabet))]
	}
	return string(b)
}

// UniqueSlug builds a slug from the name plus a random suffix, regenerating
// the suffix until taken reports it free. Collisions on a 36^6 space are
// vanishingly rare, so the loop effectively runs once.
func UniqueSlug(name string, taken func(slug string) bool) string {
	for {
		slug := slugify(name) + "#" + randomSuffix()
		if !taken(slug) {
			return slug
		}
	}
}
