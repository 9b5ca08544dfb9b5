package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/worldtransit-data/internal/common/config"
	"github.com/worldtransit-data/internal/common/logger"
	"github.com/worldtransit-data/internal/gtfs/engine"
	"github.com/worldtransit-data/pkg/transport/models"
)

const (
	locationsPath = "/journey-planner/api/locations"
	journeysPath  = "/journey-planner/api/journeys"

	// politeness delay between journey queries; these are public
	// endpoints, not bulk APIs
	journeyThrottle = 400 * time.Millisecond
)

// JourneyAPIConnector polls a live journey-planner API instead of a static
// feed. It lists the operator's locations, then samples origin/destination
// pairs and asks for today's journeys on each. Simpler and lossier than the
// GTFS path, but some operators publish nothing else.
type JourneyAPIConnector struct {
	def          config.ConnectorDef
	client       *http.Client
	maxLocations int
	logger       logger.Logger
}

func NewJourneyAPIConnector(def config.ConnectorDef, timeout time.Duration, log logger.Logger) *JourneyAPIConnector {
	return &JourneyAPIConnector{
		def:          def,
		client:       &http.Client{Timeout: timeout},
		maxLocations: def.MaxLocations,
		logger:       log,
	}
}

func (c *JourneyAPIConnector) Name() string {
	return c.def.Name
}

type apiLocation struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`

	baseURL string
}

type journeysRequest struct {
	OriginID      int    `json:"originId"`
	DestinationID int    `json:"destinationId"`
	DepartureDate string `json:"departureDate"`
}

type journeysResponse struct {
	Journeys []struct {
		DurationInMinutes int `json:"durationInMinutes"`
	} `json:"journeys"`
}

func (c *JourneyAPIConnector) FetchRoutes(ctx context.Context) ([]models.ODRecord, error) {
	var locations []apiLocation
	for _, base := range c.def.BaseURLs {
		locs, err := c.fetchLocations(ctx, base)
		if err != nil {
			c.logger.Warn("Listing locations failed",
				"connector", c.def.Name,
				"base_url", base,
				"error", err)
			continue
		}
		locations = append(locations, locs...)
	}

	if len(locations) == 0 {
		c.logger.Error("No locations returned", "connector", c.def.Name)
		return nil, nil
	}

	// Modest sampling keeps the pair count quadratic in a small constant.
	if len(locations) > c.maxLocations {
		locations = locations[:c.maxLocations]
	}

	var out []models.ODRecord
	for i, origin := range locations {
		for _, dest := range locations[i+1:] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			record, ok := c.queryPair(ctx, origin, dest)
			if ok {
				out = append(out, record)
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(journeyThrottle):
			}
		}
	}

	c.logger.Info("Connector finished",
		"connector", c.def.Name,
		"rows", len(out))

	return out, nil
}

func (c *JourneyAPIConnector) fetchLocations(ctx context.Context, baseURL string) ([]apiLocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+locationsPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var locs []apiLocation
	if err := json.Unmarshal(body, &locs); err != nil {
		return nil, fmt.Errorf("decoding locations: %w", err)
	}

	for i := range locs {
		locs[i].baseURL = baseURL
	}
	return locs, nil
}

// queryPair asks the origin's own domain for journeys between a pair.
// Anything short of a clean answer drops the pair silently.
func (c *JourneyAPIConnector) queryPair(ctx context.Context, origin, dest apiLocation) (models.ODRecord, bool) {
	payload, err := json.Marshal(journeysRequest{
		OriginID:      origin.ID,
		DestinationID: dest.ID,
		DepartureDate: time.Now().Format("2006-01-02"),
	})
	if err != nil {
		return models.ODRecord{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, origin.baseURL+journeysPath, bytes.NewReader(payload))
	if err != nil {
		return models.ODRecord{}, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.ODRecord{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ODRecord{}, false
	}

	var journeys journeysResponse
	if err := json.NewDecoder(resp.Body).Decode(&journeys); err != nil {
		return models.ODRecord{}, false
	}
	if len(journeys.Journeys) == 0 {
		return models.ODRecord{}, false
	}

	duration, ok := engine.FormatHHMM(journeys.Journeys[0].DurationInMinutes * 60)
	if !ok {
		return models.ODRecord{}, false
	}

	frequency := len(journeys.Journeys)

	originCity, _ := engine.ExtractCity(origin.Name)
	destCity, _ := engine.ExtractCity(dest.Name)

	return models.ODRecord{
		TransportType:      c.def.TransportType,
		OperatorName:       c.def.OperatorName,
		Duration:           duration,
		FrequencyDaily:     frequency,
		FrequencyLabel:     engine.FrequencyLabel(frequency),
		OriginStation:      origin.Name,
		DestinationStation: dest.Name,
		OriginCity:         originCity,
		DestinationCity:    destCity,
		OriginCountry:      origin.Country,
		DestinationCountry: dest.Country,
	}, true
}
