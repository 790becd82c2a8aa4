// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuid names uploaded media objects with UUIDv7 values, so a bucket
// listing sorts by upload time.
package uuid

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh UUIDv7 string. It panics only if the entropy source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ObjectName is a fresh UUIDv7 carrying the lower-cased extension of filename,
// e.g. "0192f0c4-...-7c1a.png" for "Avatar.PNG".
func ObjectName(filename string) string {
	return New() + strings.ToLower(filepath.Ext(filename))
}
