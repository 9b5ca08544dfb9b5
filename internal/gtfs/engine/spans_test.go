package engine

import (
	"testing"

	"github.com/worldtransit-data/internal/gtfs/feed"
	"github.com/worldtransit-data/pkg/gtfs/models"
)

var stopTimeHeader = []string{"trip_id", "stop_id", "stop_sequence", "arrival_time", "departure_time"}

func observeAll(t *testing.T, acc *spanAccumulator, records [][]string) {
	t.Helper()
	for _, rec := range records {
		acc.Observe(feed.NewRow(stopTimeHeader, rec, nil))
	}
}

func singleTrip(id string) map[string]models.Trip {
	return map[string]models.Trip{id: {TripID: id, RouteID: "r1", ServiceID: "s1"}}
}

func TestSpanAccumulatorOrderIndependence(t *testing.T) {
	inOrder := [][]string{
		{"t1", "A", "1", "08:00:00", "08:00:00"},
		{"t1", "B", "2", "08:30:00", "08:31:00"},
		{"t1", "C", "3", "09:00:00", "09:00:00"},
	}
	shuffled := [][]string{
		{"t1", "C", "3", "09:00:00", "09:00:00"},
		{"t1", "A", "1", "08:00:00", "08:00:00"},
		{"t1", "B", "2", "08:30:00", "08:31:00"},
	}

	for name, records := range map[string][][]string{"in order": inOrder, "shuffled": shuffled} {
		t.Run(name, func(t *testing.T) {
			acc := newSpanAccumulator()
			observeAll(t, acc, records)

			spans := acc.Spans(singleTrip("t1"))
			if len(spans) != 1 {
				t.Fatalf("got %d spans, want 1", len(spans))
			}
			s := spans[0]
			if s.OriginStopID != "A" || s.DestinationStopID != "C" {
				t.Errorf("span endpoints = %s→%s, want A→C", s.OriginStopID, s.DestinationStopID)
			}
			if s.DurationSeconds != 3600 {
				t.Errorf("duration = %d, want 3600", s.DurationSeconds)
			}
			if s.RouteID != "r1" || s.ServiceID != "s1" {
				t.Errorf("trip attributes not joined: %+v", s)
			}
		})
	}
}

func TestSpanAccumulatorNonContiguousSequence(t *testing.T) {
	// Only relative order of stop_sequence matters.
	acc := newSpanAccumulator()
	observeAll(t, acc, [][]string{
		{"t1", "B", "700", "10:00:00", "10:00:00"},
		{"t1", "A", "5", "09:00:00", "09:00:00"},
	})

	spans := acc.Spans(singleTrip("t1"))
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].OriginStopID != "A" || spans[0].DestinationStopID != "B" {
		t.Errorf("span endpoints = %s→%s, want A→B", spans[0].OriginStopID, spans[0].DestinationStopID)
	}
}

func TestSpanAccumulatorDropsBadRows(t *testing.T) {
	acc := newSpanAccumulator()
	observeAll(t, acc, [][]string{
		{"t1", "X", "", "07:00:00", "07:00:00"},    // missing sequence
		{"t1", "Y", "abc", "07:30:00", "07:30:00"}, // non-numeric sequence
		{"t1", "A", "1", "08:00:00", "08:00:00"},
		{"t1", "B", "2", "09:00:00", "09:00:00"},
	})

	spans := acc.Spans(singleTrip("t1"))
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].OriginStopID != "A" || spans[0].DestinationStopID != "B" {
		t.Errorf("bad rows leaked into extremes: %+v", spans[0])
	}
}

func TestSpansExcludesDegenerateDurations(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
	}{
		{
			name: "single stop trip has zero duration",
			records: [][]string{
				{"t1", "A", "1", "08:00:00", "08:00:00"},
			},
		},
		{
			name: "negative duration",
			records: [][]string{
				{"t1", "A", "1", "", "09:00:00"},
				{"t1", "B", "2", "08:00:00", ""},
			},
		},
		{
			name: "48h or longer",
			records: [][]string{
				{"t1", "A", "1", "00:00:00", "00:00:00"},
				{"t1", "B", "2", "48:00:00", "48:00:00"},
			},
		},
		{
			name: "unparsable departure",
			records: [][]string{
				{"t1", "A", "1", "08:00:00", "bogus"},
				{"t1", "B", "2", "09:00:00", "09:00:00"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newSpanAccumulator()
			observeAll(t, acc, tt.records)
			if spans := acc.Spans(singleTrip("t1")); len(spans) != 0 {
				t.Errorf("got %d spans, want 0: %+v", len(spans), spans)
			}
		})
	}
}

func TestSpansOvernightDuration(t *testing.T) {
	acc := newSpanAccumulator()
	observeAll(t, acc, [][]string{
		{"t1", "A", "1", "23:30:00", "23:30:00"},
		{"t1", "B", "2", "25:15:00", "25:15:00"},
	})

	spans := acc.Spans(singleTrip("t1"))
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].DurationSeconds != 6300 {
		t.Errorf("duration = %d, want 6300", spans[0].DurationSeconds)
	}
}
