package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordKeyHashIsStable(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := RecordKey{HotelName: "Seaside", Date: d, SourceFile: "seaside.xlsx"}
	b := RecordKey{HotelName: "Seaside", Date: d.Add(7 * time.Hour), SourceFile: "seaside.xlsx"}

	assert.Equal(t, a.Hash(), b.Hash(), "time of day must not change identity")
	assert.Len(t, a.Hash(), 32)
}

func TestRecordKeyHashNoSeparatorCollision(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := RecordKey{HotelName: "a-b", Date: d, SourceFile: "c"}
	b := RecordKey{HotelName: "a", Date: d, SourceFile: "b-c"}

	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestDateTruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	in := time.Date(2024, 1, 2, 3, 30, 0, 0, loc) // 2024-01-01 18:30 UTC

	got := Date(in)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestNewRecordDerivesID(t *testing.T) {
	s := MetricSample{HotelName: "H", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), SourceFile: "h.xlsx"}

	r := NewRecord(s)

	assert.Equal(t, s.Key().Hash(), r.ID)
	assert.Equal(t, s, r.MetricSample)
}
