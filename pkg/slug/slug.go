// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives the URL handles of organizations ("acme-support") and
// checks the kebab-case keys used for tool types.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength bounds a derived slug, leaving room for a collision suffix.
const MaxLength = 48

var pattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// stripMarks folds "Café Ñandú" into "Cafe Nandu".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// From lowercases s, drops accents, and joins the remaining ASCII letter and
// digit runs with single hyphens. The result is empty when nothing survives.
func From(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var builder strings.Builder
	pendingHyphen := false
	for _, char := range strings.ToLower(folded) {
		if (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') {
			if pendingHyphen && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			pendingHyphen = false
			builder.WriteRune(char)
			continue
		}
		pendingHyphen = true
	}

	return truncate(builder.String(), MaxLength)
}

// WithSuffix appends a disambiguating suffix, trimming base so the result
// still fits in MaxLength plus the suffix.
func WithSuffix(base, suffix string) string {
	if suffix == "" {
		return base
	}
	if base == "" {
		return suffix
	}
	return truncate(base, MaxLength) + "-" + suffix
}

// Valid reports whether s is lowercase kebab-case.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimRight(s[:max], "-")
}
