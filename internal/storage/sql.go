package storage

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelmetrics/internal/apperr"
	"hotelmetrics/internal/db"
	"hotelmetrics/internal/model"
)

// SQLBackend stores one row per sample in the hotel_metrics table.
type SQLBackend struct {
	readiness
	db   *gorm.DB
	opts Options
}

// NewSQLBackend wraps conn. A nil conn yields a backend that is never ready.
func NewSQLBackend(conn *gorm.DB, opts Options) *SQLBackend {
	b := &SQLBackend{db: conn, opts: opts.withDefaults()}
	b.SetReady(conn != nil)
	return b
}

func (b *SQLBackend) Mode() Mode { return ModePostgres }

func (b *SQLBackend) Ping(ctx context.Context) error {
	if b.db == nil {
		return apperr.E(apperr.KindStorage, "postgres.ping", errNotConfigured)
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Save inserts the samples, one transaction per batch, each bounded by Timeout.
func (b *SQLBackend) Save(ctx context.Context, doc model.IngestionDocument) (SaveResult, error) {
	n, err := writeInBatches(ctx, samplesOf(doc), b.opts.BatchSize, b.opts.Timeout, func(ctx context.Context, chunk []model.MetricSample) error {
		rows := make([]db.MetricRecord, 0, len(chunk))
		for _, s := range chunk {
			id := uuid.NewString()
			if b.opts.Upsert {
				id = s.Key().Hash()
			}
			rows = append(rows, db.FromSample(id, s))
		}
		return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if b.opts.Upsert {
				tx = tx.Clauses(clause.OnConflict{UpdateAll: true})
			}
			return tx.Create(&rows).Error
		})
	})
	if err != nil {
		return SaveResult{Mode: ModePostgres, Count: n}, apperr.E(apperr.KindStorage, "postgres.save", err)
	}
	return SaveResult{Mode: ModePostgres, Count: n}, nil
}

func (b *SQLBackend) ListAll(ctx context.Context) ([]model.Record, error) {
	return b.find(ctx, "postgres.list", func(q *gorm.DB) *gorm.DB {
		return q.Order("date DESC").Limit(b.opts.ListLimit)
	})
}

func (b *SQLBackend) ListByHotel(ctx context.Context, hotelName string) ([]model.Record, error) {
	return b.find(ctx, "postgres.list_hotel", func(q *gorm.DB) *gorm.DB {
		return q.Where("hotel_name = ?", hotelName).Order("date DESC")
	})
}

func (b *SQLBackend) ListByRange(ctx context.Context, rng Range) ([]model.Record, error) {
	return b.find(ctx, "postgres.list_range", func(q *gorm.DB) *gorm.DB {
		q = q.Where("date BETWEEN ? AND ?", rng.Start, rng.End)
		if rng.HotelName != "" {
			q = q.Where("hotel_name = ?", rng.HotelName)
		}
		return q.Order("date ASC")
	})
}

func (b *SQLBackend) DeleteByHotel(ctx context.Context, hotelName string) (DeleteResult, error) {
	return b.deleteMatching(ctx, "postgres.delete_hotel", func(q *gorm.DB) *gorm.DB {
		return q.Where("hotel_name = ?", hotelName)
	})
}

func (b *SQLBackend) DeleteAll(ctx context.Context) (DeleteResult, error) {
	return b.deleteMatching(ctx, "postgres.delete_all", func(q *gorm.DB) *gorm.DB { return q })
}

func (b *SQLBackend) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]model.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	var rows []db.MetricRecord
	if err := b.db.WithContext(ctx).Model(&db.MetricRecord{}).Scopes(scope).Find(&rows).Error; err != nil {
		return nil, apperr.E(apperr.KindStorage, op, err)
	}
	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		s := r.Sample()
		out = append(out, model.Record{ID: r.ID, Key: s.Key(), MetricSample: s})
	}
	return out, nil
}

func (b *SQLBackend) deleteMatching(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) (DeleteResult, error) {
	fetch := func(ctx context.Context, limit int) ([]string, error) {
		ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
		var ids []string
		err := b.db.WithContext(ctx).Model(&db.MetricRecord{}).Scopes(scope).Limit(limit).Pluck("id", &ids).Error
		return ids, err
	}
	remove := func(ctx context.Context, ids []string) error {
		ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
		return b.db.WithContext(ctx).Where("id IN ?", ids).Delete(&db.MetricRecord{}).Error
	}

	n, err := deleteInBatches(ctx, b.opts.BatchSize, fetch, remove)
	res := DeleteResult{Mode: ModePostgres, Deleted: n, Applied: true}
	if err != nil {
		return res, apperr.E(apperr.KindStorage, op, err)
	}
	return res, nil
}
