package connectors

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/worldtransit-data/internal/common/config"
	"github.com/worldtransit-data/internal/gtfs/engine"
)

type stubDownloader struct {
	feeds map[string][]byte
}

func (d *stubDownloader) Fetch(_ context.Context, url string) ([]byte, error) {
	raw, ok := d.feeds[url]
	if !ok {
		return nil, errors.New("no such feed")
	}
	return raw, nil
}

func busFeed(t *testing.T) []byte {
	t.Helper()

	tables := map[string]string{
		"agency.txt": "agency_id,agency_name\na1,Test Co\n",
		"routes.txt": "route_id,agency_id,route_type\nr1,a1,3\n",
		"trips.txt":  "trip_id,route_id,service_id\nt1,r1,weekday\n",
		"stop_times.txt": "trip_id,stop_id,stop_sequence,arrival_time,departure_time\n" +
			"t1,s1,1,08:00:00,08:00:00\n" +
			"t1,s2,2,09:00:00,09:00:00\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n" +
			"s1,Paris Bercy,48.83,2.38\n" +
			"s2,Lyon Perrache,45.75,4.82\n",
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range tables {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func gtfsDef(feeds ...string) config.ConnectorDef {
	return config.ConnectorDef{
		Name:          "testco",
		Type:          config.ConnectorGTFS,
		OperatorName:  "Test Co",
		TransportType: "bus",
		Feeds:         feeds,
	}
}

func TestGTFSConnectorFetchRoutes(t *testing.T) {
	log := testLogger()
	d := &stubDownloader{feeds: map[string][]byte{"https://feeds/eu.zip": busFeed(t)}}
	c := NewGTFSConnector(gtfsDef("https://feeds/eu.zip"), d, engine.New(log), log)

	records, err := c.FetchRoutes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.OperatorName != "Test Co" || r.TransportType != "bus" {
		t.Errorf("operator fields = %q/%q", r.OperatorName, r.TransportType)
	}
	if r.Duration != "01:00" || r.FrequencyDaily != 1 {
		t.Errorf("duration/frequency = %q/%d", r.Duration, r.FrequencyDaily)
	}
	if r.OriginCity != "Paris Bercy" || r.DestinationCity != "Lyon Perrache" {
		t.Errorf("cities = %q/%q", r.OriginCity, r.DestinationCity)
	}
	if r.OriginCountry != "FR" || r.DestinationCountry != "FR" {
		t.Errorf("countries = %q/%q", r.OriginCountry, r.DestinationCountry)
	}
}

func TestGTFSConnectorDedupesMirrors(t *testing.T) {
	log := testLogger()
	raw := busFeed(t)
	d := &stubDownloader{feeds: map[string][]byte{
		"https://feeds/eu.zip": raw,
		"https://feeds/us.zip": raw,
	}}
	c := NewGTFSConnector(gtfsDef("https://feeds/eu.zip", "https://feeds/us.zip"), d, engine.New(log), log)

	records, err := c.FetchRoutes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records after dedupe, want 1", len(records))
	}
}

func TestGTFSConnectorSkipsBrokenMirror(t *testing.T) {
	log := testLogger()
	d := &stubDownloader{feeds: map[string][]byte{"https://feeds/good.zip": busFeed(t)}}
	c := NewGTFSConnector(gtfsDef("https://feeds/missing.zip", "https://feeds/good.zip"), d, engine.New(log), log)

	records, err := c.FetchRoutes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 from the healthy mirror", len(records))
	}
}

func TestGTFSConnectorCancelled(t *testing.T) {
	log := testLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewGTFSConnector(gtfsDef("https://feeds/eu.zip"), &stubDownloader{}, engine.New(log), log)
	if _, err := c.FetchRoutes(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
