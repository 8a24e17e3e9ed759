// Command threat-report replays recorded aerial detections through the
// tracking and threat-assessment pipeline, persists the per-frame results to
// sqlite, and optionally serves them over a JSON API.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skywatch-data/threat.report/internal/airdata"
	"github.com/skywatch-data/threat.report/internal/airspace"
	"github.com/skywatch-data/threat.report/internal/api"
	"github.com/skywatch-data/threat.report/internal/config"
	"github.com/skywatch-data/threat.report/internal/geom"
	"github.com/skywatch-data/threat.report/internal/monitoring"
	"github.com/skywatch-data/threat.report/internal/pipeline"
	"github.com/skywatch-data/threat.report/internal/speed"
	"github.com/skywatch-data/threat.report/internal/store"
	"github.com/skywatch-data/threat.report/internal/threat"
	"github.com/skywatch-data/threat.report/internal/track"
)

const defaultDBFile = "threat_data.db"

var (
	configPath     = flag.String("config", "", "Path to pipeline config JSON (defaults apply when empty)")
	homographyPath = flag.String("homography", "", "Path to homography calibration JSON (pinhole fallback when empty)")
	zonesPath      = flag.String("zones", "", "Path to restricted zones GeoJSON")
	allowlistPath  = flag.String("allowlist", "", "Path to transponder allowlist CSV")
	adsbPath       = flag.String("adsb", "", "Path to ADS-B records CSV")
	detectionsPath = flag.String("detections", "", "Path to detections JSONL to replay")
	dbFile         = flag.String("db", defaultDBFile, "Path to sqlite database")
	listen         = flag.String("listen", ":8080", "Listen address for the API server")
	serve          = flag.Bool("serve", false, "Serve the JSON API after replay")
)

func main() {
	flag.Parse()

	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	var homography *geom.Homography
	if *homographyPath != "" {
		h, err := geom.LoadHomography(*homographyPath)
		if err != nil {
			log.Fatalf("failed to load homography: %v", err)
		}
		homography = h
		monitoring.Logf("loaded homography calibration from %s", *homographyPath)
	} else {
		monitoring.Logf("no homography calibration; using pinhole fallback")
	}

	var zones *airspace.ZoneSet
	if *zonesPath != "" {
		z, err := airspace.LoadZones(*zonesPath)
		if err != nil {
			log.Fatalf("failed to load zones: %v", err)
		}
		zones = z
		monitoring.Logf("loaded %d restricted zone(s) from %s", z.Len(), *zonesPath)
	}

	var allowlist *airspace.Allowlist
	if *allowlistPath != "" {
		a, err := airspace.LoadAllowlist(*allowlistPath)
		if err != nil {
			log.Fatalf("failed to load allowlist: %v", err)
		}
		allowlist = a
		monitoring.Logf("loaded %d allowlisted transponder(s) from %s", a.Len(), *allowlistPath)
	}

	var airTable *airdata.Table
	if *adsbPath != "" {
		t, err := airdata.LoadTable(*adsbPath, cfg.ADSBConfig())
		if err != nil {
			log.Fatalf("failed to load ADS-B records: %v", err)
		}
		airTable = t
		monitoring.Logf("loaded %d ADS-B record(s) from %s", t.Len(), *adsbPath)
	}

	tracker, err := track.New(cfg.TrackerConfig())
	if err != nil {
		log.Fatalf("failed to create tracker: %v", err)
	}
	estimator := speed.NewEstimator(homography, cfg.SpeedConfig())
	scorer, err := threat.NewScorer(cfg.ThreatConfig(), zones, allowlist)
	if err != nil {
		log.Fatalf("failed to create scorer: %v", err)
	}

	db, err := store.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *detectionsPath != "" {
		pipe := pipeline.New(tracker, estimator, scorer, nil, airTable)
		if err := db.CreateRun(pipe.RunID(), *detectionsPath, time.Now().UnixNano()); err != nil {
			log.Fatalf("failed to record run: %v", err)
		}
		if err := replayDetections(ctx, *detectionsPath, pipe, db); err != nil {
			log.Fatalf("replay failed: %v", err)
		}
	} else if !*serve {
		log.Fatal("nothing to do: supply -detections to replay, -serve to serve the API, or both")
	}

	if *serve {
		server := api.NewServer(db)
		httpServer := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(server.ServeMux()),
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("server shutdown: %v", err)
			}
		}()

		monitoring.Logf("serving API on %s", *listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}
}
