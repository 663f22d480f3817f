package storage

import (
	"context"
	"errors"

	"hotelmetrics/internal/model"
)

// fakeBackend records calls and serves canned records.
type fakeBackend struct {
	readiness
	mode    Mode
	records []model.Record
	err     error
	calls   int
	lastRng Range
	saved   []model.IngestionDocument
}

func newFake(mode Mode, ready bool, records ...model.Record) *fakeBackend {
	f := &fakeBackend{mode: mode, records: records}
	f.SetReady(ready)
	return f
}

var errRemoteDown = errors.New("remote down")

func (f *fakeBackend) Mode() Mode { return f.mode }

func (f *fakeBackend) Ping(context.Context) error {
	f.calls++
	return f.err
}

func (f *fakeBackend) Save(_ context.Context, doc model.IngestionDocument) (SaveResult, error) {
	f.calls++
	if f.err != nil {
		return SaveResult{Mode: f.mode}, f.err
	}
	f.saved = append(f.saved, doc)
	return SaveResult{Mode: f.mode, Count: len(doc.Data)}, nil
}

func (f *fakeBackend) ListAll(context.Context) ([]model.Record, error) {
	f.calls++
	return f.records, f.err
}

func (f *fakeBackend) ListByHotel(_ context.Context, hotel string) ([]model.Record, error) {
	f.calls++
	return filter(f.records, func(r model.Record) bool { return r.HotelName == hotel }), f.err
}

func (f *fakeBackend) ListByRange(_ context.Context, rng Range) ([]model.Record, error) {
	f.calls++
	f.lastRng = rng
	return f.records, f.err
}

func (f *fakeBackend) DeleteByHotel(context.Context, string) (DeleteResult, error) {
	f.calls++
	return DeleteResult{Mode: f.mode, Deleted: 1, Applied: true}, f.err
}

func (f *fakeBackend) DeleteAll(context.Context) (DeleteResult, error) {
	f.calls++
	return DeleteResult{Mode: f.mode, Deleted: len(f.records), Applied: true}, f.err
}
