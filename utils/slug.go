package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	// SlugLength is the fixed length of a public profile slug
	SlugLength = 12
	// SlugAlphabet is the character set slugs are drawn from
	SlugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)
var whitespace = regexp.MustCompile(`\s+`)

// GenerateProfileSlug produces a random 12-character lowercase
// alphanumeric token. The slug is the only credential gating access to a
// pet's public page, so the draw comes from crypto/rand. It is never
// derived from the pet's name: renames must not change the public URL.
func GenerateProfileSlug() string {
	b := make([]byte, SlugLength)
	max := big.NewInt(int64(len(SlugAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(fmt.Sprintf("failed to read random bytes: %v", err))
		}
		b[i] = SlugAlphabet[n.Int64()]
	}
	return string(b)
}

// NormalizePetName lowercases a pet name and collapses it to the
// hyphenated form old name-derived slugs were built from.
func NormalizePetName(name string) string {
	normalized := strings.ToLower(name)
	normalized = nonAlphanumeric.ReplaceAllString(normalized, "")
	normalized = whitespace.ReplaceAllString(strings.TrimSpace(normalized), "-")
	return normalized
}

// IsLegacySlug reports whether a slug was generated under the old scheme
// that embedded the pet's name. Those slugs leak the name and change on
// rename, so they get regenerated by the slug migration.
func IsLegacySlug(slug, petName string) bool {
	normalized := NormalizePetName(petName)
	if normalized == "" {
		return false
	}
	return strings.Contains(slug, normalized)
}
