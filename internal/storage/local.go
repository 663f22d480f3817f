package storage

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"hotelmetrics/internal/apperr"
	"hotelmetrics/internal/model"
	"hotelmetrics/internal/snapshot"
)

// LocalBackend serves queries from the snapshot directory. Extractors have
// already written the snapshot by the time Save is called, so Save only
// acknowledges. Deletes are acknowledged too: snapshot files are kept.
type LocalBackend struct {
	dir string
	log logrus.FieldLogger
}

// NewLocalBackend returns a backend reading snapshots from dir.
func NewLocalBackend(dir string, log logrus.FieldLogger) *LocalBackend {
	return &LocalBackend{dir: dir, log: log}
}

func (b *LocalBackend) Mode() Mode  { return ModeLocal }
func (b *LocalBackend) Ready() bool { return true }

func (b *LocalBackend) Save(_ context.Context, doc model.IngestionDocument) (SaveResult, error) {
	return SaveResult{Mode: ModeLocal, Count: len(doc.Data)}, nil
}

func (b *LocalBackend) ListAll(_ context.Context) ([]model.Record, error) {
	records, err := b.read()
	if err != nil {
		return nil, err
	}
	sortByDate(records, false)
	return records, nil
}

func (b *LocalBackend) ListByHotel(_ context.Context, hotelName string) ([]model.Record, error) {
	records, err := b.read()
	if err != nil {
		return nil, err
	}
	out := filter(records, func(r model.Record) bool { return r.HotelName == hotelName })
	sortByDate(out, false)
	return out, nil
}

func (b *LocalBackend) ListByRange(_ context.Context, rng Range) ([]model.Record, error) {
	records, err := b.read()
	if err != nil {
		return nil, err
	}
	out := filter(records, func(r model.Record) bool {
		return rng.Contains(r.Date) && (rng.HotelName == "" || r.HotelName == rng.HotelName)
	})
	sortByDate(out, true)
	return out, nil
}

func (b *LocalBackend) DeleteByHotel(_ context.Context, hotelName string) (DeleteResult, error) {
	if b.log != nil {
		b.log.WithField("hotel", hotelName).Info("local mode: delete acknowledged, snapshot files kept")
	}
	return DeleteResult{Mode: ModeLocal}, nil
}

func (b *LocalBackend) DeleteAll(_ context.Context) (DeleteResult, error) {
	if b.log != nil {
		b.log.Info("local mode: delete-all acknowledged, snapshot files kept")
	}
	return DeleteResult{Mode: ModeLocal}, nil
}

func (b *LocalBackend) read() ([]model.Record, error) {
	records, err := snapshot.ReadAll(b.dir, b.log)
	if err != nil {
		return nil, apperr.E(apperr.KindStorage, "storage.local", err)
	}
	return records, nil
}

func filter(records []model.Record, keep func(model.Record) bool) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortByDate(records []model.Record, asc bool) {
	sort.SliceStable(records, func(i, j int) bool {
		if asc {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].Date.After(records[j].Date)
	})
}
