// Package markers picks the colors, flags and sizes of globe markers.
package markers

import "strings"

// Rule pairs a predicate with the value it selects.
type Rule[V any] struct {
	Match func(string) bool
	Value V
}

// Rules is an ordered rule list. The first matching rule wins, so more specific
// predicates must be declared before broader ones.
type Rules[V any] struct {
	rules    []Rule[V]
	fallback V
}

// NewRules builds a rule list evaluated in declaration order.
func NewRules[V any](fallback V, rules ...Rule[V]) Rules[V] {
	return Rules[V]{rules: rules, fallback: fallback}
}

// Eval returns the value of the first rule matching s, or the fallback.
func (r Rules[V]) Eval(s string) V {
	for _, rule := range r.rules {
		if rule.Match(s) {
			return rule.Value
		}
	}
	return r.fallback
}

// Equals matches s exactly.
func Equals(want string) func(string) bool {
	return func(s string) bool { return s == want }
}

// City matches labels whose city part ("City, Country") equals name.
func City(name string) func(string) bool {
	return func(s string) bool {
		city, _, _ := strings.Cut(s, ",")
		return strings.TrimSpace(city) == name
	}
}

// Country matches labels ending with suffix, which is how "City, Country" labels name the country.
func Country(suffix string) func(string) bool {
	return func(s string) bool { return strings.HasSuffix(strings.TrimSpace(s), suffix) }
}
