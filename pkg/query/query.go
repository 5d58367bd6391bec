// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-style URL query parameters.
package query

import (
	"slices"
	"strings"
)

// StringSlice parses a comma-separated query value into trimmed, distinct
// entries in first-seen order. Empty entries are dropped; "" yields nil.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}

	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" && !slices.Contains(res, clean) {
			res = append(res, clean)
		}
	}
	return res
}
