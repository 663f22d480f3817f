package model

import (
	"time"
)

// Metrics is the fixed set of daily performance figures tracked per hotel.
type Metrics struct {
	Revenue   float64 `json:"revenue" firestore:"revenue"`
	ADR       float64 `json:"ADR" firestore:"ADR"`
	RevPAR    float64 `json:"RevPAR" firestore:"RevPAR"`
	Occupancy float64 `json:"occupancy" firestore:"occupancy"` // percentage, usually 0-100
}

// MetricSample is one day's metrics for one hotel.
//
// Date is the business date (always midnight UTC); CreatedAt is the time the
// sample was ingested.
type MetricSample struct {
	HotelName  string    `json:"hotelName" firestore:"hotelName"`
	Date       time.Time `json:"date" firestore:"date"`
	Metrics    Metrics   `json:"metrics" firestore:"metrics"`
	SourceFile string    `json:"sourceFile" firestore:"sourceFile"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}

// Key returns the identity of the sample.
func (s MetricSample) Key() RecordKey {
	return RecordKey{HotelName: s.HotelName, Date: s.Date, SourceFile: s.SourceFile}
}

// IngestionDocument is what a single extraction run produces: one per file.
type IngestionDocument struct {
	HotelName string         `json:"hotelName"`
	Data      []MetricSample `json:"data"`
}

// Record is a stored sample as returned by queries.
type Record struct {
	ID  string    `json:"id"`
	Key RecordKey `json:"key"`
	MetricSample
}

// NewRecord builds a record whose ID is derived from the sample key.
func NewRecord(s MetricSample) Record {
	k := s.Key()
	return Record{ID: k.Hash(), Key: k, MetricSample: s}
}

// Samples strips records down to their samples.
func Samples(records []Record) []MetricSample {
	out := make([]MetricSample, 0, len(records))
	for _, r := range records {
		out = append(out, r.MetricSample)
	}
	return out
}

// Source tells which path produced a document.
type Source string

const (
	SourceSpreadsheet Source = "spreadsheet"
	SourceRemote      Source = "remote"
	SourceSynthetic   Source = "synthetic"
)

// Date truncates t to midnight UTC of its UTC calendar day.
func Date(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
