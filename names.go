package main

import "strings"

// parseNameList splits a delimiter-separated identifier list into normalized
// tokens. Embedded line breaks are stripped before splitting, each token is
// trimmed, and empty tokens are dropped. An input that is empty after
// normalization yields an empty sequence, not an error.
func parseNameList(raw string, delim rune) []string {
	cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(raw)

	var names []string
	for _, tok := range strings.Split(cleaned, string(delim)) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		names = append(names, tok)
	}
	return names
}
