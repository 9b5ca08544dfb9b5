package feed

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// TextRepairer fixes mixed-encoding artifacts in a free-text field. It is an
// external collaborator of the table reader; the engine never depends on a
// particular implementation.
type TextRepairer func(string) string

// RepairMojibake undoes the common UTF-8-read-as-Latin-1 double encoding
// ("MÃ¼nchen" → "München"). Strings without the telltale lead bytes are
// returned unchanged, as are strings whose re-decode is not valid UTF-8.
func RepairMojibake(s string) string {
	if !strings.ContainsAny(s, "ÃÂ") {
		return s
	}

	encoded, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return s
	}
	if !utf8.ValidString(encoded) {
		return s
	}
	return encoded
}
