package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/worldtransit-data/pkg/gtfs/models"
)

// compileAgencyPattern builds one case-insensitive alternation from the
// operator-supplied patterns. Patterns are treated as regular expressions,
// which makes plain substrings work unchanged.
func compileAgencyPattern(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	expr := fmt.Sprintf("(?i)(?:%s)", strings.Join(patterns, "|"))
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling agency patterns: %w", err)
	}
	return re, nil
}

// selectAgencyIDs returns the agency ids whose names match the pattern.
// When nothing matches and matchAllOnEmpty is set, every agency id in the
// feed is eligible: single-operator feeds often carry undescriptive agency
// names and have already been scoped upstream.
func selectAgencyIDs(agencies []models.Agency, re *regexp.Regexp, matchAllOnEmpty bool) (map[string]struct{}, bool) {
	ids := make(map[string]struct{})
	if re != nil {
		for _, a := range agencies {
			if re.MatchString(strings.ToLower(a.AgencyName)) {
				ids[a.AgencyID] = struct{}{}
			}
		}
	}

	if len(ids) > 0 {
		return ids, false
	}

	if !matchAllOnEmpty {
		return ids, false
	}

	for _, a := range agencies {
		ids[a.AgencyID] = struct{}{}
	}
	return ids, true
}

// filterRoutes keeps routes of the wanted type whose agency is eligible.
// Routes may omit agency_id when the feed has a single agency; those are
// kept.
func filterRoutes(routes []models.Route, agencyIDs map[string]struct{}, routeType int) map[string]struct{} {
	keep := make(map[string]struct{})
	for _, r := range routes {
		if r.RouteType != routeType {
			continue
		}
		if r.AgencyID != "" {
			if _, ok := agencyIDs[r.AgencyID]; !ok {
				continue
			}
		}
		keep[r.RouteID] = struct{}{}
	}
	return keep
}
