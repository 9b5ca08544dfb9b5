package engine

import (
	"math"
	"sort"

	gtfsmodels "github.com/worldtransit-data/pkg/gtfs/models"
	"github.com/worldtransit-data/pkg/transport/models"
)

// odKey is the composite grouping key. Empty strings are valid distinct
// values standing in for unknown stations, cities and countries; rows with
// unknown components still aggregate, they are not dropped here.
type odKey struct {
	originStation      string
	destinationStation string
	originCity         string
	destinationCity    string
	originCountry      string
	destinationCountry string
}

type odGroup struct {
	durationSum int64
	trips       int
}

// FrequencyLabel buckets a feed-wide trip count into the fixed label set.
// Boundaries sit exactly at 5/15/25/35; every non-negative count maps to
// exactly one label.
func FrequencyLabel(n int) string {
	switch {
	case n <= 5:
		return "Very Low (0-5)"
	case n <= 15:
		return "Low (6-15)"
	case n <= 25:
		return "Average (16-25)"
	case n <= 35:
		return "High (26-35)"
	default:
		return "Very High (36+)"
	}
}

// stationInfo is the enriched view of one stop reference.
type stationInfo struct {
	name    string
	city    string
	country string
}

// describeStop joins a stop id to its name and coordinates. A stop id absent
// from stops.txt yields empty fields; the span still aggregates under the
// empty station key.
func describeStop(stops map[string]gtfsmodels.Stop, stopID string) stationInfo {
	stop, ok := stops[stopID]
	if !ok {
		return stationInfo{}
	}

	info := stationInfo{name: stop.StopName}
	if city, ok := ExtractCity(stop.StopName); ok {
		info.city = city
	}
	if stop.HasCoords {
		if country, ok := InferCountry(stop.StopLat, stop.StopLon); ok {
			info.country = country
		}
	}
	return info
}

// aggregate groups trip spans by directional station pair, computes the mean
// duration and trip count per group, and assigns the frequency bucket.
// Output is sorted by key so repeated runs over identical input produce
// byte-identical rows.
func aggregate(spans []gtfsmodels.TripSpan, stops map[string]gtfsmodels.Stop, operatorName, transportType string) []models.ODRecord {
	groups := make(map[odKey]*odGroup)
	for _, span := range spans {
		origin := describeStop(stops, span.OriginStopID)
		dest := describeStop(stops, span.DestinationStopID)

		key := odKey{
			originStation:      origin.name,
			destinationStation: dest.name,
			originCity:         origin.city,
			destinationCity:    dest.city,
			originCountry:      origin.country,
			destinationCountry: dest.country,
		}

		g, ok := groups[key]
		if !ok {
			g = &odGroup{}
			groups[key] = g
		}
		g.durationSum += int64(span.DurationSeconds)
		g.trips++
	}

	keys := make([]odKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.originStation != b.originStation {
			return a.originStation < b.originStation
		}
		if a.destinationStation != b.destinationStation {
			return a.destinationStation < b.destinationStation
		}
		if a.originCity != b.originCity {
			return a.originCity < b.originCity
		}
		if a.destinationCity != b.destinationCity {
			return a.destinationCity < b.destinationCity
		}
		if a.originCountry != b.originCountry {
			return a.originCountry < b.originCountry
		}
		return a.destinationCountry < b.destinationCountry
	})

	records := make([]models.ODRecord, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		mean := int(math.Round(float64(g.durationSum) / float64(g.trips)))
		duration, _ := FormatHHMM(mean)

		records = append(records, models.ODRecord{
			TransportType:      transportType,
			OperatorName:       operatorName,
			Duration:           duration,
			FrequencyDaily:     g.trips,
			FrequencyLabel:     FrequencyLabel(g.trips),
			OriginStation:      key.originStation,
			DestinationStation: key.destinationStation,
			OriginCity:         key.originCity,
			DestinationCity:    key.destinationCity,
			OriginCountry:      key.originCountry,
			DestinationCountry: key.destinationCountry,
		})
	}
	return records
}
