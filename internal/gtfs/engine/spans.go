package engine

import (
	"github.com/worldtransit-data/internal/gtfs/feed"
	"github.com/worldtransit-data/pkg/gtfs/models"
)

// maxSpanSeconds caps trip durations at 48 hours; anything at or beyond it
// is treated as malformed schedule data.
const maxSpanSeconds = 48 * 3600

// spanAccumulator reduces the stop-time table to one first/last candidate
// pair per trip. Rows stream through Observe in file order, which need not be
// sequence order, and only the current extremes are retained; memory is
// bounded by the number of eligible trips, not stop-time rows.
type spanAccumulator struct {
	trips map[string]*tripExtremes
}

type tripExtremes struct {
	minSeq    int
	minStopID string
	departure string

	maxSeq    int
	maxStopID string
	arrival   string
}

func newSpanAccumulator() *spanAccumulator {
	return &spanAccumulator{trips: make(map[string]*tripExtremes)}
}

// Observe folds one stop-time row into the per-trip extremes. Rows with a
// missing or non-numeric stop_sequence are dropped here.
func (s *spanAccumulator) Observe(row feed.Row) {
	seq, ok := row.GetInt("stop_sequence")
	if !ok {
		return
	}

	tripID := row.Get("trip_id")
	ext, exists := s.trips[tripID]
	if !exists {
		ext = &tripExtremes{
			minSeq:    seq,
			minStopID: row.Get("stop_id"),
			departure: row.Get("departure_time"),
			maxSeq:    seq,
			maxStopID: row.Get("stop_id"),
			arrival:   row.Get("arrival_time"),
		}
		s.trips[tripID] = ext
		return
	}

	if seq < ext.minSeq {
		ext.minSeq = seq
		ext.minStopID = row.Get("stop_id")
		ext.departure = row.Get("departure_time")
	}
	if seq > ext.maxSeq {
		ext.maxSeq = seq
		ext.maxStopID = row.Get("stop_id")
		ext.arrival = row.Get("arrival_time")
	}
}

// Spans converts the accumulated extremes into trip spans. Trips with an
// unparsable departure or arrival time, or with a duration outside
// (0, 48h), are excluded: a single-stop trip collapses to duration 0 and is
// filtered with the rest.
func (s *spanAccumulator) Spans(trips map[string]models.Trip) []models.TripSpan {
	spans := make([]models.TripSpan, 0, len(s.trips))
	for tripID, ext := range s.trips {
		dep, ok := ParseTime(ext.departure)
		if !ok {
			continue
		}
		arr, ok := ParseTime(ext.arrival)
		if !ok {
			continue
		}

		duration := arr - dep
		if duration <= 0 || duration >= maxSpanSeconds {
			continue
		}

		trip := trips[tripID]
		spans = append(spans, models.TripSpan{
			TripID:            tripID,
			RouteID:           trip.RouteID,
			ServiceID:         trip.ServiceID,
			OriginStopID:      ext.minStopID,
			DestinationStopID: ext.maxStopID,
			DepartureSeconds:  dep,
			ArrivalSeconds:    arr,
			DurationSeconds:   duration,
		})
	}
	return spans
}
