// Package storage persists ingestion documents and answers metric queries
// against whichever backend is active: a remote store (Firestore or
// PostgreSQL) when it is ready, the local snapshot directory otherwise.
package storage

import (
	"context"
	"errors"
	"time"

	"hotelmetrics/internal/model"
)

// Mode names a storage backend.
type Mode string

const (
	ModeLocal     Mode = "local"
	ModeFirestore Mode = "firestore"
	ModePostgres  Mode = "postgres"
)

// Collection is the remote collection (or table) holding one record per sample.
const Collection = "hotel_metrics"

var errNotConfigured = errors.New("remote store not configured")

// Default limits shared by the remote backends.
const (
	DefaultBatchSize = 500
	DefaultListLimit = 500
)

// SaveResult reports a document write.
type SaveResult struct {
	Mode  Mode `json:"mode"`
	Count int  `json:"count"`
}

// DeleteResult reports a bulk delete. Applied is false when the backend
// acknowledged the request without removing anything.
type DeleteResult struct {
	Mode    Mode `json:"mode"`
	Deleted int  `json:"deleted"`
	Applied bool `json:"applied"`
}

// Range is an inclusive window of midnight UTC dates, optionally scoped to
// one hotel.
type Range struct {
	Start     time.Time
	End       time.Time
	HotelName string
}

// Contains reports whether d falls inside the range (inclusive on both ends).
func (r Range) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Backend is one storage implementation. List operations order by date:
// ListAll and ListByHotel descending, ListByRange ascending.
type Backend interface {
	Mode() Mode
	// Ready reports whether the backend can currently serve requests.
	Ready() bool
	Save(ctx context.Context, doc model.IngestionDocument) (SaveResult, error)
	ListAll(ctx context.Context) ([]model.Record, error)
	ListByHotel(ctx context.Context, hotelName string) ([]model.Record, error)
	ListByRange(ctx context.Context, r Range) ([]model.Record, error)
	DeleteByHotel(ctx context.Context, hotelName string) (DeleteResult, error)
	DeleteAll(ctx context.Context) (DeleteResult, error)
}

// Pinger is implemented by backends whose availability can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune the remote backends.
type Options struct {
	BatchSize int
	ListLimit int
	// Upsert keys records by model.RecordKey instead of fresh IDs, so that
	// re-ingesting a file overwrites instead of duplicating.
	Upsert  bool
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 || o.BatchSize > DefaultBatchSize {
		o.BatchSize = DefaultBatchSize
	}
	if o.ListLimit <= 0 {
		o.ListLimit = DefaultListLimit
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	return o
}

// samplesOf fills per-sample defaults from the enclosing document.
func samplesOf(doc model.IngestionDocument) []model.MetricSample {
	out := make([]model.MetricSample, 0, len(doc.Data))
	for _, s := range doc.Data {
		if s.HotelName == "" {
			s.HotelName = doc.HotelName
		}
		if s.Date.IsZero() {
			s.Date = model.Date(time.Now())
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = time.Now()
		}
		out = append(out, s)
	}
	return out
}
