package connectors

import (
	"context"

	"github.com/worldtransit-data/internal/common/config"
	"github.com/worldtransit-data/internal/common/logger"
	"github.com/worldtransit-data/internal/gtfs/engine"
	"github.com/worldtransit-data/pkg/transport/models"
)

// Connector produces output rows for one operator. GTFS feed aggregation and
// journey-planner API polling are different fetch paths behind the same
// interface; the merge step treats their rows identically.
type Connector interface {
	Name() string
	FetchRoutes(ctx context.Context) ([]models.ODRecord, error)
}

// Build constructs connectors for every enabled definition.
func Build(defs []config.ConnectorDef, cfg config.DownloadConfig, eng *engine.Engine, log logger.Logger) []Connector {
	var built []Connector
	for _, def := range defs {
		if !def.Enabled {
			log.Debug("Connector disabled, skipping", "connector", def.Name)
			continue
		}

		switch def.Type {
		case config.ConnectorGTFS:
			built = append(built, NewGTFSConnector(def, NewHTTPDownloader(cfg, log), eng, log))
		case config.ConnectorJourneyAPI:
			built = append(built, NewJourneyAPIConnector(def, cfg.Timeout, log))
		}
	}
	return built
}
