// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm canonicalizes user-supplied identifiers before they are stored
// or compared.
//
// # Usage
//
// Usernames and emails are unique keys. Two inputs that render the same
// ("Ａlice" and "alice") must map to the same stored value, otherwise the
// uniqueness constraint can be sidestepped.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Username folds a handle to its canonical form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFKC (full-width and compatibility forms collapse).
// 2. Trims surrounding whitespace.
// 3. Lowercases with Unicode case rules.
func Username(s string) string {
	result := norm.NFKC.String(s)
	result = strings.TrimSpace(result)
	return cases.Lower(language.Und).String(result)
}

// Email trims and lowercases an address.
func Email(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(norm.NFKC.String(s)))
}

// Display normalizes free text such as a full name without changing its case.
func Display(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
