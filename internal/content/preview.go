// Package content renders plain-text previews from structured page content.
// Page bodies are stored as a rich-text JSON document; the preview is the
// joined text of the first non-empty paragraph, sliced for feed cards.
package content

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// PreviewLength is the maximum rune count of a feed preview.
const PreviewLength = 200

type document struct {
	Content []node `json:"content"`
}

type node struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Content []node `json:"content"`
}

// Preview extracts a plain-text preview from a page content document: the
// concatenated text nodes of the first non-empty paragraph. Unknown or
// malformed documents yield an empty preview rather than an error.
func Preview(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}

	for _, n := range doc.Content {
		if n.Type != "paragraph" || len(n.Content) == 0 {
			continue
		}
		var sb strings.Builder
		for _, child := range n.Content {
			if child.Type == "text" {
				sb.WriteString(child.Text)
			}
		}
		if text := sb.String(); text != "" {
			return Truncate(text, PreviewLength)
		}
	}
	return ""
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
