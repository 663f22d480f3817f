// Package normalize turns loosely typed spreadsheet rows into canonical
// metric values. Everything here is total: malformed input degrades to zero
// metrics and a "now" date, it never fails.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"hotelmetrics/internal/model"
)

// Row maps a column header to its raw cell value. Values are typically nil,
// string, float64 or time.Time.
type Row map[string]any

// Header aliases probed in order for each canonical field.
var (
	DateHeaders      = []string{"date", "Date", "DATE"}
	RevenueHeaders   = []string{"revenue", "Revenue", "Sales"}
	ADRHeaders       = []string{"ADR", "adr", "Avg Daily Rate"}
	RevPARHeaders    = []string{"RevPAR", "revpar"}
	OccupancyHeaders = []string{"occupancy", "Occupancy", "Occ %"}
)

// spreadsheetEpoch is day zero of the 1900 date system. Using Dec 30 rather
// than Dec 31 absorbs the phantom 1900-02-29 for every serial after Feb 1900.
var spreadsheetEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Result is a normalized row.
type Result struct {
	Date    time.Time
	Metrics model.Metrics
	// DateResolved is false when no usable date was found and Date was
	// substituted with the current day.
	DateResolved bool
}

// Normalizer converts rows. Now supplies the fallback date; nil means time.Now.
type Normalizer struct {
	Now func() time.Time
}

// New returns a Normalizer using the wall clock.
func New() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// NormalizeRow resolves the date and the four metrics of row.
func (n *Normalizer) NormalizeRow(row Row) Result {
	res := Result{
		Metrics: model.Metrics{
			Revenue:   ToNumber(lookup(row, RevenueHeaders)),
			ADR:       ToNumber(lookup(row, ADRHeaders)),
			RevPAR:    ToNumber(lookup(row, RevPARHeaders)),
			Occupancy: ToNumber(lookup(row, OccupancyHeaders)),
		},
	}
	if d, ok := ParseDate(lookup(row, DateHeaders)); ok {
		res.Date = d
		res.DateResolved = true
		return res
	}
	res.Date = model.Date(n.now())
	return res
}

func (n *Normalizer) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// lookup returns the first non-empty cell among headers.
func lookup(row Row, headers []string) any {
	for _, h := range headers {
		v, ok := row[h]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// ParseDate resolves a raw cell into a midnight UTC date.
func ParseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return model.Date(v), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return model.Date(*v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if d, ok := serialDate(f); ok {
				return d, true
			}
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return model.Date(t), true
	default:
		f, ok := number(raw)
		if !ok {
			return time.Time{}, false
		}
		return serialDate(f)
	}
}

func serialDate(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > 2958465 { // 9999-12-31
		return time.Time{}, false
	}
	return SerialToDate(f), true
}

// SerialToDate converts a 1900-system spreadsheet serial into a UTC date.
// Any fractional (time of day) part is dropped.
func SerialToDate(serial float64) time.Time {
	return spreadsheetEpoch.AddDate(0, 0, int(math.Floor(serial)))
}

// ToNumber coerces a raw cell into a finite number, or 0.
func ToNumber(raw any) float64 {
	if s, ok := raw.(string); ok {
		f, err := strconv.ParseFloat(cleanNumeric(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	}
	f, ok := number(raw)
	if !ok {
		return 0
	}
	return f
}

func number(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint64:
		f = float64(v)
	case uint32:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var numericNoise = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", "%", "", " ", "", " ", "")

func cleanNumeric(s string) string {
	return numericNoise.Replace(strings.TrimSpace(s))
}
