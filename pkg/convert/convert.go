// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert turns loosely typed query parameters into Go values.

Malformed input collapses to a zero value instead of an error, so list
endpoints can filter leniently. Use [strconv] directly wherever a malformed
value must be rejected.
*/
package convert

import (
	"strconv"
)

// ToBool parses a boolean string ("true", "1", "false", "0").
// It returns false on empty string or parse error.
func ToBool(s string) bool {
	if s == "" {
		return false
	}

	v, _ := strconv.ParseBool(s)
	return v
}

// OptionalBool is [ToBool] for filters: an empty string means "no filter"
// and yields nil.
func OptionalBool(s string) *bool {
	if s == "" {
		return nil
	}

	v := ToBool(s)
	return &v
}
