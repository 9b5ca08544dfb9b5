package models

// Row types for the GTFS tables the aggregation engine consumes. Times are
// kept as the raw feed strings (HH:MM:SS, hours may exceed 23 for overnight
// service) and only converted to seconds when durations are computed.

type Agency struct {
	AgencyID   string
	AgencyName string
}

type Stop struct {
	StopID   string
	StopName string
	StopLat  float64
	StopLon  float64
	// HasCoords is false when stop_lat/stop_lon were missing or non-numeric.
	HasCoords bool
}

type Route struct {
	RouteID   string
	AgencyID  string
	RouteType int
}

type Trip struct {
	TripID    string
	RouteID   string
	ServiceID string
}

type StopTime struct {
	TripID        string
	StopID        string
	StopSequence  int
	ArrivalTime   string
	DepartureTime string
}

type Calendar struct {
	ServiceID string
	Monday    int
	Tuesday   int
	Wednesday int
	Thursday  int
	Friday    int
	Saturday  int
	Sunday    int
}

// TripSpan is the resolved summary of one scheduled journey: first and last
// stop by stop_sequence plus the elapsed duration between them.
type TripSpan struct {
	TripID            string
	RouteID           string
	ServiceID         string
	OriginStopID      string
	DestinationStopID string
	DepartureSeconds  int
	ArrivalSeconds    int
	DurationSeconds   int
}
