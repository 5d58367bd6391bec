// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides generic helpers for optional values.

Partial updates decode into structs of pointers; nil means "leave unchanged".

Key Functions:
  - To: Creates a pointer from a value literal.
  - Fallback: Dereferences a pointer, returning a fallback value if nil.
*/
package pointer

// To returns a pointer to the provided value (e.g. pointer.To("admin")).
func To[T any](v T) *T {
	return &v
}

// Fallback safely dereferences a pointer.
// If the pointer is nil, it returns the provided fallback value instead.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
