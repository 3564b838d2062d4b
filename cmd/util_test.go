package main

import (
	"reflect"
	"testing"
)

func TestSplitOutsideQuotes(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a b c", []string{"a", "b", "c"}},
		{`title:"some words" asc`, []string{`title:"some words"`, "asc"}},
		{`"a b" "c d"`, []string{`"a b"`, `"c d"`}},
		{"single", []string{"single"}},
	}

	for _, test := range tests {
		if got := splitOutsideQuotes(test.input); reflect.DeepEqual(got, test.want) == false {
			t.Errorf("splitOutsideQuotes(%q) = %v, want %v", test.input, got, test.want)
		}
	}
}

func TestStripSlashes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`foo\-bar`, "foo-bar"},
		{`islandora\:1`, "islandora:1"},
		{`double\\slash`, `double\slash`},
		{"plain", "plain"},
	}

	for _, test := range tests {
		if got := stripSlashes(test.input); got != test.want {
			t.Errorf("stripSlashes(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestRestoreSlashes(t *testing.T) {
	if got := restoreSlashes("a~slsh~b~slsh~c"); got != "a/b/c" {
		t.Errorf("restoreSlashes() = %q, want a/b/c", got)
	}
}

func TestStringValues(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  []string
	}{
		{"scalar", "one", []string{"one"}},
		{"string slice", []string{"one", "two"}, []string{"one", "two"}},
		{"interface slice", []interface{}{"one", "two"}, []string{"one", "two"}},
		{"mixed interface slice", []interface{}{"one", 2}, []string{"one"}},
		{"absent", nil, nil},
		{"unknown shape", 42, nil},
	}

	for _, test := range tests {
		if got := stringValues(test.input); reflect.DeepEqual(got, test.want) == false {
			t.Errorf("%s: stringValues() = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	input := "one\r\ntwo\n\nthree\n"

	want := []string{"one", "two", "three"}

	if got := splitLines(input); reflect.DeepEqual(got, want) == false {
		t.Errorf("splitLines() = %v, want %v", got, want)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a, b, c", []string{"a", "b", "c"}},
		{"a|b|c", []string{"a", "b", "c"}},
		{"a b\tc", []string{"a", "b", "c"}},
		{"", nil},
	}

	for _, test := range tests {
		if got := splitList(test.input); reflect.DeepEqual(got, test.want) == false {
			t.Errorf("splitList(%q) = %v, want %v", test.input, got, test.want)
		}
	}
}

func TestIntegerWithFallback(t *testing.T) {
	tests := []struct {
		str      string
		min      int
		fallback int
		want     int
	}{
		{"5", 1, 20, 5},
		{"0", 1, 20, 20},
		{"-3", 0, 0, 0},
		{"junk", 1, 20, 20},
		{"", 0, 7, 7},
	}

	for _, test := range tests {
		if got := integerWithFallback(test.str, test.min, test.fallback); got != test.want {
			t.Errorf("integerWithFallback(%q, %d, %d) = %d, want %d",
				test.str, test.min, test.fallback, got, test.want)
		}
	}
}

func TestBoolValue(t *testing.T) {
	tests := []struct {
		str  string
		want bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"", false},
		{"junk", false},
	}

	for _, test := range tests {
		if got := boolValue(test.str); got != test.want {
			t.Errorf("boolValue(%q) = %v, want %v", test.str, got, test.want)
		}
	}
}

func TestGetBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc123", "abc123", false},
		{"Bearer   abc123", "abc123", false},
		{"Bearer undefined", "", true},
		{"Basic abc123", "", true},
		{"Bearer", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		got, err := getBearerToken(test.header)

		if (err != nil) != test.wantErr {
			t.Errorf("getBearerToken(%q) error = %v, wantErr %v", test.header, err, test.wantErr)
			continue
		}

		if got != test.want {
			t.Errorf("getBearerToken(%q) = %q, want %q", test.header, got, test.want)
		}
	}
}
