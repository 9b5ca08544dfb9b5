package engine

import (
	"regexp"
	"strings"
)

// facilitySuffixRe strips transit-facility tokens from a station name,
// parenthesized or not. Longer alternatives come first so "central bus
// station" is not left half-matched.
var facilitySuffixRe = regexp.MustCompile(`(?i)\s*\(?(?:central bus station|estaci[oó]n de autobuses|gare routi[eè]re|coach station|bus station|busbahnhof|hauptbahnhof|autostazione|bus stop|terminal|zob)\)?`)

// trailingQualifiers are stripped from the end of the name after comma
// truncation, repeatedly, case-insensitively.
var trailingQualifiers = []string{" central", " station", " hbf", " main"}

// separator characters trimmed from both ends once qualifiers are gone. A
// trailing "(" counts as a separator; an interior one is closed instead.
const separatorCutset = " \t-–,;:./("

// ExtractCity derives a best-effort city name from a station name. Purely
// textual: strip facility tokens, truncate at the first comma (assuming
// "City, Region" ordering), drop trailing qualifiers, and close a
// parenthetical left open by truncation. Returns ok=false for empty input or
// when nothing survives the stripping.
func ExtractCity(stationName string) (string, bool) {
	if strings.TrimSpace(stationName) == "" {
		return "", false
	}

	s := facilitySuffixRe.ReplaceAllString(stationName, "")
	s = strings.ReplaceAll(s, "()", "")

	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}

	for {
		trimmed := false
		lower := strings.ToLower(s)
		for _, q := range trailingQualifiers {
			if strings.HasSuffix(lower, q) {
				s = s[:len(s)-len(q)]
				lower = strings.ToLower(s)
				trimmed = true
			}
		}
		if !trimmed {
			break
		}
	}

	s = strings.Trim(s, separatorCutset)

	if strings.Count(s, "(") > strings.Count(s, ")") {
		s += ")"
	}

	if s == "" {
		return "", false
	}
	return s, true
}

// countryBox is an approximate rectangular bound for one country. The table
// is ordered: the first containing box wins, so smaller countries overlapped
// by larger neighbours are listed first. This is deliberately coarse and only
// covers the countries the bus dataset targets.
type countryBox struct {
	code           string
	minLat, maxLat float64
	minLon, maxLon float64
}

var countryBoxes = []countryBox{
	{"PT", 36.9, 42.2, -9.6, -6.2},
	{"ES", 35.9, 43.8, -9.4, 3.4},
	{"IE", 51.4, 55.4, -10.7, -5.9},
	{"GB", 49.9, 60.9, -8.2, 1.8},
	{"BE", 49.5, 51.6, 2.5, 6.4},
	{"NL", 50.7, 53.6, 3.3, 7.2},
	{"CH", 45.8, 47.8, 5.9, 10.5},
	{"AT", 46.3, 49.1, 9.5, 17.2},
	{"CZ", 48.5, 51.1, 12.0, 18.9},
	{"DK", 54.5, 57.8, 8.0, 12.7},
	{"IT", 36.6, 47.1, 6.6, 18.6},
	{"DE", 47.2, 55.1, 5.8, 15.1},
	{"FR", 41.3, 51.1, -5.2, 9.6},
	{"PL", 49.0, 54.9, 14.1, 24.2},
	{"US", 24.5, 49.4, -124.8, -66.9},
	{"CA", 41.7, 83.2, -141.0, -52.6},
	{"MX", 14.5, 32.7, -118.5, -86.7},
}

// InferCountry maps coordinates to an ISO-3166 alpha-2 code using the
// bounding-box table. Returns ok=false outside every box.
func InferCountry(lat, lon float64) (string, bool) {
	for _, b := range countryBoxes {
		if lat >= b.minLat && lat <= b.maxLat && lon >= b.minLon && lon <= b.maxLon {
			return b.code, true
		}
	}
	return "", false
}
