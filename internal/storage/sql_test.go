package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hotelmetrics/internal/db"
	"hotelmetrics/internal/model"
)

// newSQLTestBackend opens a migrated SQLite database in a temp dir.
func newSQLTestBackend(t *testing.T, opts Options) (*SQLBackend, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "metrics.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewSQLBackend(conn, opts), conn
}

// countStatements counts executed statements of one kind ("create" or "delete").
func countStatements(t *testing.T, conn *gorm.DB, kind string) *int {
	t.Helper()
	n := new(int)
	inc := func(*gorm.DB) { *n++ }
	switch kind {
	case "create":
		require.NoError(t, conn.Callback().Create().After("gorm:create").Register("test:count_create", inc))
	case "delete":
		require.NoError(t, conn.Callback().Delete().After("gorm:delete").Register("test:count_delete", inc))
	}
	return n
}

func rowsFor(t *testing.T, conn *gorm.DB, hotel string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&db.MetricRecord{}).Where("hotel_name = ?", hotel).Count(&n).Error)
	return n
}

func bulkDoc(hotel string, n int) model.IngestionDocument {
	doc := model.IngestionDocument{HotelName: hotel}
	for i := 0; i < n; i++ {
		doc.Data = append(doc.Data, sample(hotel, 1+i%28, float64(i)))
	}
	return doc
}

func TestSQLSaveAndDeleteRunInBatches(t *testing.T) {
	b, conn := newSQLTestBackend(t, Options{})
	ctx := context.Background()
	creates := countStatements(t, conn, "create")
	deletes := countStatements(t, conn, "delete")

	res, err := b.Save(ctx, bulkDoc("Alpha", 1200))
	require.NoError(t, err)
	assert.Equal(t, SaveResult{Mode: ModePostgres, Count: 1200}, res)
	assert.Equal(t, 3, *creates)

	_, err = b.Save(ctx, bulkDoc("Beta", 4))
	require.NoError(t, err)

	del, err := b.DeleteByHotel(ctx, "Alpha")

	require.NoError(t, err)
	assert.Equal(t, DeleteResult{Mode: ModePostgres, Deleted: 1200, Applied: true}, del)
	assert.Equal(t, 3, *deletes)
	assert.Zero(t, rowsFor(t, conn, "Alpha"))
	assert.EqualValues(t, 4, rowsFor(t, conn, "Beta"))
}

func TestSQLDeleteAll(t *testing.T) {
	b, conn := newSQLTestBackend(t, Options{BatchSize: 2})
	ctx := context.Background()
	_, err := b.Save(ctx, bulkDoc("Alpha", 3))
	require.NoError(t, err)
	_, err = b.Save(ctx, bulkDoc("Beta", 2))
	require.NoError(t, err)

	del, err := b.DeleteAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, 5, del.Deleted)
	assert.Zero(t, rowsFor(t, conn, "Alpha")+rowsFor(t, conn, "Beta"))
}

func TestSQLListAllNewestFirstWithinLimit(t *testing.T) {
	b, _ := newSQLTestBackend(t, Options{ListLimit: 3})
	ctx := context.Background()
	_, err := b.Save(ctx, model.IngestionDocument{HotelName: "Alpha", Data: []model.MetricSample{
		sample("Alpha", 2, 200), sample("Alpha", 5, 500), sample("Alpha", 1, 100),
	}})
	require.NoError(t, err)
	_, err = b.Save(ctx, model.IngestionDocument{HotelName: "Beta", Data: []model.MetricSample{
		sample("Beta", 3, 300), sample("Beta", 4, 400),
	}})
	require.NoError(t, err)

	records, err := b.ListAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, []int{5, 4, 3}, dates(records))
	assert.Equal(t, day(5), records[0].Date)
	assert.Equal(t, 500.0, records[0].Metrics.Revenue)
}

func TestSQLListByHotel(t *testing.T) {
	b, _ := newSQLTestBackend(t, Options{})
	ctx := context.Background()
	_, err := b.Save(ctx, bulkDoc("Alpha", 3))
	require.NoError(t, err)
	_, err = b.Save(ctx, bulkDoc("Beta", 2))
	require.NoError(t, err)

	records, err := b.ListByHotel(ctx, "Beta")

	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, dates(records))
	for _, r := range records {
		assert.Equal(t, "Beta", r.HotelName)
	}
}

func TestSQLListByRangeIsInclusiveAndAscending(t *testing.T) {
	b, _ := newSQLTestBackend(t, Options{})
	ctx := context.Background()
	_, err := b.Save(ctx, bulkDoc("Alpha", 6))
	require.NoError(t, err)
	_, err = b.Save(ctx, model.IngestionDocument{HotelName: "Beta", Data: []model.MetricSample{sample("Beta", 3, 300)}})
	require.NoError(t, err)

	records, err := b.ListByRange(ctx, Range{Start: day(2), End: day(4)})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 3, 4}, dates(records))

	records, err = b.ListByRange(ctx, Range{Start: day(2), End: day(4), HotelName: "Alpha"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, dates(records))

	records, err = b.ListByRange(ctx, Range{Start: day(7), End: day(9)})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLUpsertOverwritesSameKey(t *testing.T) {
	b, conn := newSQLTestBackend(t, Options{Upsert: true})
	ctx := context.Background()
	doc := bulkDoc("Alpha", 3)
	_, err := b.Save(ctx, doc)
	require.NoError(t, err)

	doc.Data[0].Metrics.Revenue = 9999
	_, err = b.Save(ctx, doc)

	require.NoError(t, err)
	assert.EqualValues(t, 3, rowsFor(t, conn, "Alpha"))
	records, err := b.ListByRange(ctx, Range{Start: day(1), End: day(1)})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 9999.0, records[0].Metrics.Revenue)
	assert.Equal(t, doc.Data[0].Key().Hash(), records[0].ID)
}

func TestSQLWithoutUpsertDuplicates(t *testing.T) {
	b, conn := newSQLTestBackend(t, Options{})
	ctx := context.Background()
	doc := bulkDoc("Alpha", 2)
	_, err := b.Save(ctx, doc)
	require.NoError(t, err)
	_, err = b.Save(ctx, doc)
	require.NoError(t, err)

	assert.EqualValues(t, 4, rowsFor(t, conn, "Alpha"))
}

func TestSQLPingAndNilConnection(t *testing.T) {
	b, _ := newSQLTestBackend(t, Options{})
	assert.NoError(t, b.Ping(context.Background()))
	assert.True(t, b.Ready())

	none := NewSQLBackend(nil, Options{})
	assert.False(t, none.Ready())
	assert.Error(t, none.Ping(context.Background()))
}
