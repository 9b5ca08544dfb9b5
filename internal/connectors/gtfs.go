package connectors

import (
	"context"

	"github.com/worldtransit-data/internal/common/config"
	"github.com/worldtransit-data/internal/common/logger"
	"github.com/worldtransit-data/internal/gtfs/engine"
	"github.com/worldtransit-data/internal/gtfs/feed"
	"github.com/worldtransit-data/pkg/transport/models"
)

// GTFSConnector downloads one or more GTFS feed archives for an operator and
// runs the aggregation engine over each. One connector definition replaces
// what used to be a per-operator script: the operator name, agency patterns
// and mirror list are the only things that vary.
type GTFSConnector struct {
	def        config.ConnectorDef
	downloader Downloader
	engine     *engine.Engine
	logger     logger.Logger
}

func NewGTFSConnector(def config.ConnectorDef, downloader Downloader, eng *engine.Engine, log logger.Logger) *GTFSConnector {
	return &GTFSConnector{
		def:        def,
		downloader: downloader,
		engine:     eng,
		logger:     log,
	}
}

func (c *GTFSConnector) Name() string {
	return c.def.Name
}

// FetchRoutes aggregates every configured feed mirror and unions the rows.
// A mirror that fails to download or aggregate is logged and skipped; the
// connector only errors when the context is cancelled.
func (c *GTFSConnector) FetchRoutes(ctx context.Context) ([]models.ODRecord, error) {
	opts := engine.Options{
		OperatorName:    c.def.OperatorName,
		AgencyPatterns:  c.def.AgencyPatterns,
		TransportType:   c.def.TransportType,
		MatchAllOnEmpty: c.def.MatchAll(),
		Repair:          feed.RepairMojibake,
	}

	var out []models.ODRecord
	for _, url := range c.def.Feeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := c.downloader.Fetch(ctx, url)
		if err != nil {
			c.logger.Error("Feed download failed, skipping mirror",
				"connector", c.def.Name,
				"url", url,
				"error", err)
			continue
		}

		records, err := c.engine.Aggregate(ctx, raw, opts)
		if err != nil {
			c.logger.Error("Feed aggregation failed, skipping mirror",
				"connector", c.def.Name,
				"url", url,
				"error", err)
			continue
		}

		out = append(out, records...)
	}

	out = dedupe(out)
	c.logger.Info("Connector finished",
		"connector", c.def.Name,
		"rows", len(out))

	return out, nil
}

// dedupe drops exact duplicate rows, keeping first-seen order. Mirrors of
// the same operator (EU and US exports, say) can overlap.
func dedupe(records []models.ODRecord) []models.ODRecord {
	if len(records) < 2 {
		return records
	}
	seen := make(map[models.ODRecord]struct{}, len(records))
	out := records[:0]
	for _, r := range records {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
