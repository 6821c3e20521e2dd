// ABOUTME: Pure client-side predicates for search boxes, selects and tabs
// ABOUTME: Listing carries the explicit "none found" state for empty results
package views

import (
	"fmt"
	"strings"
)

// All is the select value that disables a filter.
const All = "all"

type Predicate[T any] func(T) bool

// Listing is a filtered result ready to render.
type Listing[T any] struct {
	Items        []T    `json:"items"`
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"emptyMessage,omitempty"`
}

// Select keeps the items matching every predicate.
func Select[T any](items []T, noun string, preds ...Predicate[T]) Listing[T] {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchesAll(item, preds) {
			out = append(out, item)
		}
	}
	l := Listing[T]{Items: out}
	if len(out) == 0 {
		l.Empty = true
		l.EmptyMessage = fmt.Sprintf("No %s found", plural(noun))
	}
	return l
}

func matchesAll[T any](item T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if p != nil && !p(item) {
			return false
		}
	}
	return true
}

// Search matches a case-insensitive substring in any of fields. An empty
// term matches everything.
func Search[T any](term string, fields ...func(T) string) Predicate[T] {
	term = strings.ToLower(strings.TrimSpace(term))
	return func(item T) bool {
		if term == "" {
			return true
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(item)), term) {
				return true
			}
		}
		return false
	}
}

// Equals matches a select value; "" and "all" match everything.
func Equals[T any, V ~string](selected string, field func(T) V) Predicate[T] {
	return func(item T) bool {
		if selected == "" || selected == All {
			return true
		}
		return string(field(item)) == selected
	}
}

func plural(noun string) string {
	if strings.HasSuffix(noun, "y") {
		return strings.TrimSuffix(noun, "y") + "ies"
	}
	return noun + "s"
}
