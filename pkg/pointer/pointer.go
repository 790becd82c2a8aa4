// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides generic helpers for optional fields.

Key Functions:
  - To: Creates a pointer from a value literal.
  - NonZero: Creates a pointer only for a non-zero value.
*/
package pointer

// To returns a pointer to the provided value (e.g. pointer.To("something")).
func To[T any](v T) *T {
	return &v
}

// NonZero returns a pointer to v, or nil when v is the zero value.
// It maps "field left empty" in a request body to "field absent".
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
