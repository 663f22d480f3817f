package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelmetrics/internal/model"
	"hotelmetrics/internal/snapshot"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func sample(hotel string, d int, revenue float64) model.MetricSample {
	return model.MetricSample{
		HotelName:  hotel,
		Date:       day(d),
		Metrics:    model.Metrics{Revenue: revenue, ADR: 100, RevPAR: 50, Occupancy: 50},
		SourceFile: hotel + ".xlsx",
		CreatedAt:  day(20),
	}
}

func seedLocal(t *testing.T) (*LocalBackend, *test.Hook) {
	t.Helper()
	dir := t.TempDir()
	_, err := snapshot.Write(dir, model.IngestionDocument{HotelName: "Alpha", Data: []model.MetricSample{
		sample("Alpha", 2, 200), sample("Alpha", 5, 500), sample("Alpha", 1, 100),
	}})
	require.NoError(t, err)
	_, err = snapshot.Write(dir, model.IngestionDocument{HotelName: "Beta", Data: []model.MetricSample{
		sample("Beta", 3, 300), sample("Beta", 6, 600),
	}})
	require.NoError(t, err)

	log, hook := test.NewNullLogger()
	return NewLocalBackend(dir, log), hook
}

func dates(records []model.Record) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.Date.Day())
	}
	return out
}

func TestLocalListAllNewestFirst(t *testing.T) {
	b, _ := seedLocal(t)

	records, err := b.ListAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{6, 5, 3, 2, 1}, dates(records))
}

func TestLocalListByHotel(t *testing.T) {
	b, _ := seedLocal(t)

	records, err := b.ListByHotel(context.Background(), "Beta")

	require.NoError(t, err)
	assert.Equal(t, []int{6, 3}, dates(records))
	for _, r := range records {
		assert.Equal(t, "Beta", r.HotelName)
		assert.Equal(t, r.Key.Hash(), r.ID)
	}
}

func TestLocalListByRangeIsInclusiveAndAscending(t *testing.T) {
	b, _ := seedLocal(t)

	records, err := b.ListByRange(context.Background(), Range{Start: day(2), End: day(5)})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 5}, dates(records))

	records, err = b.ListByRange(context.Background(), Range{Start: day(2), End: day(5), HotelName: "Alpha"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, dates(records))
}

func TestLocalListByRangeExcludesOneDayOutside(t *testing.T) {
	b, _ := seedLocal(t)

	records, err := b.ListByRange(context.Background(), Range{Start: day(7), End: day(9)})

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLocalListByRangeIncludesOffMidnightDates(t *testing.T) {
	dir := t.TempDir()
	raw := `{"hotelName":"Alpha","data":[{"hotelName":"Alpha","date":"2024-03-05T05:00:00.000Z","metrics":{"revenue":500}}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Alpha.json"), []byte(raw), 0o644))
	b := NewLocalBackend(dir, logrus.New())

	q := RangeQuery{StartDate: "2024-03-05", EndDate: "2024-03-05"}
	rng, err := q.Parse()
	require.NoError(t, err)
	records, err := b.ListByRange(context.Background(), rng)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, day(5), records[0].Date)
}

func TestLocalCorruptSnapshotIsSkipped(t *testing.T) {
	b, hook := seedLocal(t)
	require.NoError(t, os.WriteFile(filepath.Join(b.dir, "broken.json"), []byte("{not json"), 0o644))

	records, err := b.ListAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, records, 5)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestLocalDeletesAreAcknowledgedOnly(t *testing.T) {
	b, _ := seedLocal(t)

	res, err := b.DeleteByHotel(context.Background(), "Alpha")
	require.NoError(t, err)
	assert.Equal(t, DeleteResult{Mode: ModeLocal}, res)

	res, err = b.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Applied)

	records, err := b.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestLocalSaveCountsSamples(t *testing.T) {
	b := NewLocalBackend(t.TempDir(), nil)

	res, err := b.Save(context.Background(), model.IngestionDocument{Data: []model.MetricSample{sample("A", 1, 1), sample("A", 2, 1)}})

	require.NoError(t, err)
	assert.Equal(t, SaveResult{Mode: ModeLocal, Count: 2}, res)
}

func TestLocalMissingDirIsEmpty(t *testing.T) {
	b := NewLocalBackend(filepath.Join(t.TempDir(), "nope"), nil)

	records, err := b.ListAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
}
