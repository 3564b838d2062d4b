package main

import (
	"strconv"
	"strings"
)

// miscellaneous utility functions

func firstElementOf(s []string) string {
	// return first element of slice, or blank string if empty
	val := ""

	if len(s) > 0 {
		val = s[0]
	}

	return val
}

func sliceContainsString(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}

	return false
}

func nonemptyValues(val []string) []string {
	res := []string{}

	for _, s := range val {
		if s != "" {
			res = append(res, s)
		}
	}

	return res
}

func integerWithFallback(str string, min int, fallback int) int {
	val, err := strconv.Atoi(str)

	// fallback for invalid or nonsensical values
	if err != nil || val < min {
		val = fallback
	}

	return val
}

func timeoutWithMinimum(str string, min int) int {
	val, err := strconv.Atoi(str)

	// fallback for invalid or nonsensical values
	if err != nil || val < min {
		val = min
	}

	return val
}

func boolValue(str string) bool {
	val, err := strconv.ParseBool(str)

	if err != nil {
		return false
	}

	return val
}

// splitOutsideQuotes splits s on single spaces that do not fall inside a
// double-quoted section, e.g. `title:"some words" asc` yields two parts.
func splitOutsideQuotes(s string) []string {
	var parts []string
	var cur strings.Builder

	quoted := false

	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			cur.WriteRune(r)
		case r == ' ' && quoted == false:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}

	parts = append(parts, cur.String())

	return parts
}

// restoreSlashes reverses the slash escaping applied to queries embedded in
// URL path segments upstream.
func restoreSlashes(s string) string {
	return strings.ReplaceAll(s, "~slsh~", "/")
}

// stripSlashes removes backslash escaping from a value (a backslash escapes
// the character that follows it).
func stripSlashes(s string) string {
	var out strings.Builder

	escaped := false

	for _, r := range s {
		if r == '\\' && escaped == false {
			escaped = true
			continue
		}

		escaped = false
		out.WriteRune(r)
	}

	return out.String()
}

// stringValues coerces a raw Solr document field (which may be a scalar or a
// list of values) into a string slice.  absent and unknown shapes yield nil.
func stringValues(val interface{}) []string {
	switch v := val.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		var res []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	return nil
}

func splitLines(s string) []string {
	var lines []string

	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		line = strings.ReplaceAll(line, "\r", "")
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

func splitList(s string) []string {
	var items []string

	for _, item := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|' || r == ' ' || r == '\t' || r == '\n'
	}) {
		if item != "" {
			items = append(items, item)
		}
	}

	return items
}
