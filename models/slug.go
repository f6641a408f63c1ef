package models

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	slugSpacing  = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts s to lowercase ASCII words joined by hyphens. Accented
// letters lose their marks, anything else non-ASCII is dropped.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)

	ascii = nonSlugChars.ReplaceAllString(strings.ToLower(ascii), "")
	ascii = slugSpacing.ReplaceAllString(strings.TrimSpace(ascii), "-")
	return strings.Trim(ascii, "-_")
}

// Capitalize uppercases the first character of s. The rest is left as is.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// leaves room for a numeric suffix inside a 255 character column
const maxSlugBase = 240

// SlugTaken reports whether another record already uses slug.
type SlugTaken func(ctx context.Context, slug string) (bool, error)

// UniqueSlug derives a slug from title and appends -2, -3, ... until it finds
// one that is neither reserved nor taken. The result is deterministic for a
// given table state.
func UniqueSlug(ctx context.Context, title, fallback string, reserved []string, taken SlugTaken) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = fallback
	}
	if len(base) > maxSlugBase {
		base = strings.Trim(base[:maxSlugBase], "-_")
	}

	for n := 1; ; n++ {
		candidate := base
		if n > 1 {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		if isReserved(candidate, reserved) {
			continue
		}
		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func isReserved(slug string, reserved []string) bool {
	for _, r := range reserved {
		if r == slug {
			return true
		}
	}
	return false
}
