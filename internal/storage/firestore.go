package storage

import (
	"context"

	"cloud.google.com/go/firestore"

	"hotelmetrics/internal/apperr"
	"hotelmetrics/internal/model"
)

// FirestoreBackend stores one document per sample in a Firestore collection.
type FirestoreBackend struct {
	readiness
	client *firestore.Client
	coll   string
	opts   Options
}

// NewFirestoreBackend wraps client. A nil client yields a backend that is
// never ready.
func NewFirestoreBackend(client *firestore.Client, collection string, opts Options) *FirestoreBackend {
	if collection == "" {
		collection = Collection
	}
	b := &FirestoreBackend{client: client, coll: collection, opts: opts.withDefaults()}
	b.SetReady(client != nil)
	return b
}

func (b *FirestoreBackend) Mode() Mode { return ModeFirestore }

func (b *FirestoreBackend) collection() *firestore.CollectionRef {
	return b.client.Collection(b.coll)
}

// Ping reads at most one document to confirm the store answers.
func (b *FirestoreBackend) Ping(ctx context.Context) error {
	if b.client == nil {
		return apperr.E(apperr.KindStorage, "firestore.ping", errNotConfigured)
	}
	_, err := b.collection().Limit(1).Documents(ctx).GetAll()
	return err
}

// Save writes the samples in WriteBatch commits of at most BatchSize.
// Each batch is atomic and bounded by Timeout; the document as a whole is not.
func (b *FirestoreBackend) Save(ctx context.Context, doc model.IngestionDocument) (SaveResult, error) {
	coll := b.collection()
	n, err := writeInBatches(ctx, samplesOf(doc), b.opts.BatchSize, b.opts.Timeout, func(ctx context.Context, chunk []model.MetricSample) error {
		batch := b.client.Batch()
		for _, s := range chunk {
			ref := coll.NewDoc()
			if b.opts.Upsert {
				ref = coll.Doc(s.Key().Hash())
			}
			batch.Set(ref, s)
		}
		_, err := batch.Commit(ctx)
		return err
	})
	if err != nil {
		return SaveResult{Mode: ModeFirestore, Count: n}, apperr.E(apperr.KindStorage, "firestore.save", err)
	}
	return SaveResult{Mode: ModeFirestore, Count: n}, nil
}

func (b *FirestoreBackend) ListAll(ctx context.Context) ([]model.Record, error) {
	q := b.collection().OrderBy("date", firestore.Desc).Limit(b.opts.ListLimit)
	return b.run(ctx, "firestore.list", q)
}

func (b *FirestoreBackend) ListByHotel(ctx context.Context, hotelName string) ([]model.Record, error) {
	q := b.collection().Where("hotelName", "==", hotelName).OrderBy("date", firestore.Desc)
	return b.run(ctx, "firestore.list_hotel", q)
}

func (b *FirestoreBackend) ListByRange(ctx context.Context, rng Range) ([]model.Record, error) {
	// Stored dates written off midnight still belong to their UTC day.
	q := b.collection().Where("date", ">=", rng.Start).Where("date", "<", rng.End.AddDate(0, 0, 1))
	if rng.HotelName != "" {
		q = q.Where("hotelName", "==", rng.HotelName)
	}
	return b.run(ctx, "firestore.list_range", q.OrderBy("date", firestore.Asc))
}

func (b *FirestoreBackend) DeleteByHotel(ctx context.Context, hotelName string) (DeleteResult, error) {
	q := b.collection().Where("hotelName", "==", hotelName)
	return b.deleteMatching(ctx, "firestore.delete_hotel", q)
}

func (b *FirestoreBackend) DeleteAll(ctx context.Context) (DeleteResult, error) {
	return b.deleteMatching(ctx, "firestore.delete_all", b.collection().Query)
}

func (b *FirestoreBackend) run(ctx context.Context, op string, q firestore.Query) ([]model.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, apperr.E(apperr.KindStorage, op, err)
	}
	out := make([]model.Record, 0, len(snaps))
	for _, snap := range snaps {
		var s model.MetricSample
		if err := snap.DataTo(&s); err != nil {
			return nil, apperr.E(apperr.KindStorage, op, err)
		}
		s.Date = model.Date(s.Date)
		out = append(out, model.Record{ID: snap.Ref.ID, Key: s.Key(), MetricSample: s})
	}
	return out, nil
}

// deleteMatching removes everything q matches in bounded batches. The timeout
// applies per batch so that large collections can be drained.
func (b *FirestoreBackend) deleteMatching(ctx context.Context, op string, q firestore.Query) (DeleteResult, error) {
	fetch := func(ctx context.Context, limit int) ([]*firestore.DocumentRef, error) {
		ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
		snaps, err := q.Limit(limit).Documents(ctx).GetAll()
		if err != nil {
			return nil, err
		}
		refs := make([]*firestore.DocumentRef, 0, len(snaps))
		for _, s := range snaps {
			refs = append(refs, s.Ref)
		}
		return refs, nil
	}
	remove := func(ctx context.Context, refs []*firestore.DocumentRef) error {
		ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
		batch := b.client.Batch()
		for _, ref := range refs {
			batch.Delete(ref)
		}
		_, err := batch.Commit(ctx)
		return err
	}

	n, err := deleteInBatches(ctx, b.opts.BatchSize, fetch, remove)
	res := DeleteResult{Mode: ModeFirestore, Deleted: n, Applied: true}
	if err != nil {
		return res, apperr.E(apperr.KindStorage, op, err)
	}
	return res, nil
}
