package engine

import (
	"context"
	"fmt"

	"github.com/worldtransit-data/internal/common/logger"
	"github.com/worldtransit-data/internal/gtfs/feed"
	gtfsmodels "github.com/worldtransit-data/pkg/gtfs/models"
	"github.com/worldtransit-data/pkg/transport/models"
)

// mandatoryTables must all be present for a feed to aggregate; their absence
// is a feed-level failure the caller logs and moves past.
var mandatoryTables = []string{"agency.txt", "routes.txt", "trips.txt", "stop_times.txt", "stops.txt"}

// Options configures one aggregation run.
type Options struct {
	// OperatorName is the display name stamped on every output row.
	OperatorName string
	// AgencyPatterns select the operator's agencies by case-insensitive
	// match against agency names. Treated as regular expressions, so plain
	// substrings work as-is.
	AgencyPatterns []string
	// TransportType names the mode; it decides which GTFS route_type is
	// kept and is emitted verbatim in the output.
	TransportType string
	// MatchAllOnEmpty enables the accept-all fallback when no agency name
	// matches. Feeds already scoped to one operator upstream want this on.
	MatchAllOnEmpty bool
	// Repair optionally fixes mixed-encoding artifacts in free-text fields.
	Repair feed.TextRepairer
}

// Engine reduces a GTFS feed archive to directional origin→destination
// records for one operator. It is a pure batch transform: no state survives
// between Aggregate calls.
type Engine struct {
	logger logger.Logger
}

func New(log logger.Logger) *Engine {
	return &Engine{logger: log}
}

// routeTypeFor maps a transport mode to its GTFS route_type enumeration
// value.
func routeTypeFor(transportType string) int {
	switch transportType {
	case "tram":
		return 0
	case "metro":
		return 1
	case "rail":
		return 2
	case "ferry":
		return 4
	default: // bus
		return 3
	}
}

// Aggregate runs the full reduction over raw archive bytes: decode tables,
// scope to the operator's routes and trips, resolve per-trip spans from the
// stop-time stream, enrich with station names and geography, and group into
// output rows.
func (e *Engine) Aggregate(ctx context.Context, raw []byte, opts Options) ([]models.ODRecord, error) {
	archive, err := feed.OpenArchive(raw, opts.Repair, e.logger)
	if err != nil {
		return nil, err
	}

	if err := archive.Require(mandatoryTables...); err != nil {
		return nil, err
	}

	re, err := compileAgencyPattern(opts.AgencyPatterns)
	if err != nil {
		return nil, err
	}

	var agencies []gtfsmodels.Agency
	err = archive.ReadTable("agency.txt", func(row feed.Row) error {
		agencies = append(agencies, gtfsmodels.Agency{
			AgencyID:   row.Get("agency_id"),
			AgencyName: row.GetText("agency_name"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	agencyIDs, fellBack := selectAgencyIDs(agencies, re, opts.MatchAllOnEmpty)
	if fellBack {
		e.logger.Warn("No agency matched, falling back to all agencies",
			"operator", opts.OperatorName,
			"agencies", len(agencies))
	}
	if len(agencyIDs) == 0 {
		e.logger.Info("No eligible agencies in feed", "operator", opts.OperatorName)
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var routes []gtfsmodels.Route
	err = archive.ReadTable("routes.txt", func(row feed.Row) error {
		routeType, _ := row.GetInt("route_type")
		routes = append(routes, gtfsmodels.Route{
			RouteID:   row.Get("route_id"),
			AgencyID:  row.Get("agency_id"),
			RouteType: routeType,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	routeIDs := filterRoutes(routes, agencyIDs, routeTypeFor(opts.TransportType))
	if len(routeIDs) == 0 {
		e.logger.Info("No routes of requested mode for operator",
			"operator", opts.OperatorName,
			"mode", opts.TransportType)
		return nil, nil
	}

	trips := make(map[string]gtfsmodels.Trip)
	err = archive.ReadTable("trips.txt", func(row feed.Row) error {
		routeID := row.Get("route_id")
		if _, ok := routeIDs[routeID]; !ok {
			return nil
		}
		tripID := row.Get("trip_id")
		trips[tripID] = gtfsmodels.Trip{
			TripID:    tripID,
			RouteID:   routeID,
			ServiceID: row.Get("service_id"),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Optional table; trip counts stay unweighted without it.
	calendars, err := readCalendar(archive)
	if err != nil {
		return nil, err
	}
	if len(calendars) == 0 {
		e.logger.Debug("Feed has no calendar table, using raw trip counts")
	} else {
		e.logger.Debug("Calendar read",
			"services", len(calendars),
			"weekday_services", countWeekdayServices(calendars))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := newSpanAccumulator()
	err = archive.ReadTable("stop_times.txt", func(row feed.Row) error {
		if _, ok := trips[row.Get("trip_id")]; !ok {
			return nil
		}
		acc.Observe(row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	spans := acc.Spans(trips)
	if len(spans) == 0 {
		e.logger.Info("No usable trip spans in feed", "operator", opts.OperatorName)
		return nil, nil
	}

	stops := make(map[string]gtfsmodels.Stop)
	err = archive.ReadTable("stops.txt", func(row feed.Row) error {
		lat, latOK := row.GetFloat("stop_lat")
		lon, lonOK := row.GetFloat("stop_lon")
		stopID := row.Get("stop_id")
		stops[stopID] = gtfsmodels.Stop{
			StopID:    stopID,
			StopName:  row.GetText("stop_name"),
			StopLat:   lat,
			StopLon:   lon,
			HasCoords: latOK && lonOK,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := aggregate(spans, stops, opts.OperatorName, opts.TransportType)

	e.logger.Info("Feed aggregated",
		"operator", opts.OperatorName,
		"trips", len(spans),
		"od_pairs", len(records))

	return records, nil
}

// readCalendar decodes calendar.txt into service rows. The table is optional
// and currently informational: frequencies stay raw trip counts either way.
func readCalendar(archive *feed.Archive) (map[string]gtfsmodels.Calendar, error) {
	calendars := make(map[string]gtfsmodels.Calendar)
	err := archive.ReadTable("calendar.txt", func(row feed.Row) error {
		serviceID := row.Get("service_id")
		if serviceID == "" {
			return nil
		}
		day := func(field string) int {
			v, _ := row.GetInt(field)
			return v
		}
		calendars[serviceID] = gtfsmodels.Calendar{
			ServiceID: serviceID,
			Monday:    day("monday"),
			Tuesday:   day("tuesday"),
			Wednesday: day("wednesday"),
			Thursday:  day("thursday"),
			Friday:    day("friday"),
			Saturday:  day("saturday"),
			Sunday:    day("sunday"),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return calendars, nil
}

func countWeekdayServices(calendars map[string]gtfsmodels.Calendar) int {
	n := 0
	for _, c := range calendars {
		if c.Monday == 1 || c.Tuesday == 1 || c.Wednesday == 1 || c.Thursday == 1 || c.Friday == 1 {
			n++
		}
	}
	return n
}

// AggregateOrEmpty wraps Aggregate for callers that treat a feed failure as
// recoverable: the error is logged and an empty row set returned.
func (e *Engine) AggregateOrEmpty(ctx context.Context, raw []byte, opts Options) []models.ODRecord {
	records, err := e.Aggregate(ctx, raw, opts)
	if err != nil {
		e.logger.Error(fmt.Sprintf("Aggregation failed for %s", opts.OperatorName), "error", err)
		return nil
	}
	return records
}
