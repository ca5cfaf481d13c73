// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package catalog

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	slugSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	slugSuffixLength   = 6
	slugMaxLength      = 80
	slugAttempts       = 5
)

// Slugify lowercases s, collapses every run of characters outside [a-z0-9]
// into a single dash and trims dashes at both ends.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > slugMaxLength {
		out = strings.TrimRight(out[:slugMaxLength], "-")
	}
	return out
}

// uniqueSlug returns base when taken reports it free, otherwise base with
// a random suffix.
func uniqueSlug(base string, taken func(string) (bool, error)) (string, error) {
	if base == "" {
		base = "item"
	}
	used, err := taken(base)
	if err != nil {
		return "", err
	}
	if !used {
		return base, nil
	}
	for i := 0; i < slugAttempts; i++ {
		suffix, err := gonanoid.Generate(slugSuffixAlphabet, slugSuffixLength)
		if err != nil {
			return "", fmt.Errorf("generate slug suffix: %w", err)
		}
		candidate := base + "-" + suffix
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, slugAttempts)
}
