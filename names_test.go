package main

import (
	"reflect"
	"testing"
)

func TestParseNameList(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		delim rune
		want  []string
	}{
		{"single token", "dbo", ';', []string{"dbo"}},
		{"two tokens", "dbo;sales", ';', []string{"dbo", "sales"}},
		{"trailing delimiter", "orders;lines;", ';', []string{"orders", "lines"}},
		{"whitespace around tokens", "  dbo ; sales  ", ';', []string{"dbo", "sales"}},
		{"embedded line breaks", "dbo;\r\nsales;\nhr", ';', []string{"dbo", "sales", "hr"}},
		{"comma delimiter", "a,b,c", ',', []string{"a", "b", "c"}},
		{"consecutive delimiters", "a;;b", ';', []string{"a", "b"}},
		{"empty input", "", ';', nil},
		{"only whitespace and delimiters", " ; ;\n", ';', nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNameList(tt.raw, tt.delim)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseNameList(%q, %q) = %v, want %v", tt.raw, tt.delim, got, tt.want)
			}
		})
	}
}
