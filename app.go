package main

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"hotelmetrics/internal/config"
	"hotelmetrics/internal/db"
	"hotelmetrics/internal/extract"
	"hotelmetrics/internal/http/handlers"
	"hotelmetrics/internal/pipeline"
	"hotelmetrics/internal/storage"
)

// remote is a backend whose readiness the health worker maintains.
type remote interface {
	storage.Backend
	storage.Probe
}

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	remote   remote
	selector *storage.Selector
	query    *storage.QueryService
	pipeline *pipeline.Service
	metrics  *handlers.IngestMetrics
	closers  []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger, reg prometheus.Registerer) *app {
	a := &app{cfg: cfg, log: log}
	if reg != nil {
		a.metrics = handlers.NewIngestMetrics(reg)
	}

	a.remote = a.openRemote(ctx)
	local := storage.NewLocalBackend(cfg.ProcessedDir, log)
	a.selector = storage.NewSelector(a.remote, local)
	a.query = storage.NewQueryService(a.selector)

	var client extract.RemoteExtractor
	if cfg.LandingAIKey != "" {
		client = extract.NewLandingClient(cfg.LandingAIURL, cfg.LandingAIKey, cfg.ExtractTimeout)
	}
	docs := extract.NewDocument(client, cfg.ProcessedDir, log)
	docs.OnFallback = a.metrics.Fallback

	a.pipeline = pipeline.New(extract.NewSpreadsheet(cfg.ProcessedDir, log), docs, a.selector, log)
	return a
}

// openRemote connects the configured remote store. Connection failures are
// logged and leave the service in local mode.
func (a *app) openRemote(ctx context.Context) remote {
	cfg := a.cfg
	opts := storage.Options{
		BatchSize: cfg.BatchSize,
		ListLimit: cfg.ListLimit,
		Upsert:    cfg.RemoteUpsert,
		Timeout:   cfg.RemoteTimeout,
	}

	kind := cfg.StoreBackend
	if kind == "auto" || kind == "" {
		switch {
		case db.FirestoreConfigured(cfg):
			kind = string(storage.ModeFirestore)
		case cfg.DatabaseURL != "":
			kind = string(storage.ModePostgres)
		default:
			kind = string(storage.ModeLocal)
		}
	}

	switch kind {
	case string(storage.ModeFirestore):
		client, err := db.ConnectFirestore(ctx, cfg)
		if err != nil {
			a.log.WithError(err).Warn("firestore unavailable, using local snapshots")
			return nil
		}
		a.closers = append(a.closers, client)
		return storage.NewFirestoreBackend(client, cfg.FirestoreCollection, opts)
	case string(storage.ModePostgres):
		conn, err := db.Connect(cfg)
		if err != nil {
			a.log.WithError(err).Warn("postgres unavailable, using local snapshots")
			return nil
		}
		if sqlDB, err := conn.DB(); err == nil {
			a.closers = append(a.closers, sqlDB)
		}
		return storage.NewSQLBackend(conn, opts)
	case string(storage.ModeLocal):
		return nil
	default:
		a.log.WithField("backend", kind).Warn("unknown APP_STORE_BACKEND, using local snapshots")
		return nil
	}
}

// startHealth keeps the remote readiness flag current until ctx is done.
func (a *app) startHealth(ctx context.Context) {
	if a.remote == nil {
		return
	}
	storage.StartHealthWorker(ctx, a.remote, a.cfg.HealthInterval, a.cfg.RemoteTimeout, a.log)
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.WithError(err).Warn("failed to close store connection")
		}
	}
}
