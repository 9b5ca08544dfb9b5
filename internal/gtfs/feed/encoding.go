package feed

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeTable turns raw table bytes into a string, trying UTF-8, UTF-8 with
// a byte-order mark, then Latin-1, and finally a lossy UTF-8 decode. A table
// read never fails on encoding alone.
func decodeTable(raw []byte) string {
	if bytes.HasPrefix(raw, utf8BOM) {
		raw = raw[len(utf8BOM):]
	}

	if utf8.Valid(raw) {
		return string(raw)
	}

	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
		return string(decoded)
	}

	// Lossy fallback: invalid sequences become U+FFFD.
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}
