// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pages parses page selectors and groups page lists into batches.
package pages

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

// ParseSelector turns a selector string like "1-10, 15, 20-25" into the
// ordered set of page indices it names. The result is deduplicated, strictly
// increasing, and bounded by [1, total]. An empty selector or the literal
// "all" selects every page. Indices outside [1, total] and inverted ranges
// are rejected rather than clamped.
func ParseSelector(selector string, total int) ([]int, error) {
	if total < 1 {
		return nil, &types.InputError{Msg: fmt.Sprintf("document has no pages (total %d)", total)}
	}

	trimmed := strings.TrimSpace(selector)
	if trimmed == "" || strings.EqualFold(trimmed, "all") {
		all := make([]int, total)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}

	seen := make(map[int]bool)
	for _, token := range strings.Split(trimmed, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, &types.InputError{Msg: fmt.Sprintf("empty token in selector %q", selector)}
		}

		first, last, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		if first < 1 || last > total {
			return nil, &types.InputError{
				Msg: fmt.Sprintf("page token %q outside document bounds 1-%d", token, total),
			}
		}
		for p := first; p <= last; p++ {
			seen[p] = true
		}
	}

	result := make([]int, 0, len(seen))
	for p := 1; p <= total; p++ {
		if seen[p] {
			result = append(result, p)
		}
	}
	return result, nil
}

// parseToken parses a single selector token: either "N" or "A-B" with A <= B.
func parseToken(token string) (first, last int, err error) {
	if a, b, found := strings.Cut(token, "-"); found {
		first, err = parseIndex(strings.TrimSpace(a), token)
		if err != nil {
			return 0, 0, err
		}
		last, err = parseIndex(strings.TrimSpace(b), token)
		if err != nil {
			return 0, 0, err
		}
		if first > last {
			return 0, 0, &types.InputError{
				Msg: fmt.Sprintf("inverted range %q: %d > %d", token, first, last),
			}
		}
		return first, last, nil
	}

	first, err = parseIndex(token, token)
	if err != nil {
		return 0, 0, err
	}
	return first, first, nil
}

func parseIndex(s, token string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &types.InputError{Msg: fmt.Sprintf("malformed page token %q", token), Err: err}
	}
	return n, nil
}

// SplitBatches groups pages into consecutive batches of at most size
// elements, preserving order. Every batch except possibly the last has
// exactly size elements. A size below 1 is treated as 1.
func SplitBatches(pages []int, size int) [][]int {
	if size < 1 {
		size = 1
	}
	var batches [][]int
	for start := 0; start < len(pages); start += size {
		end := start + size
		if end > len(pages) {
			end = len(pages)
		}
		batches = append(batches, pages[start:end])
	}
	return batches
}
