package storage

import (
	"sort"
	"time"

	"hotelmetrics/internal/model"
)

// Totals are the dashboard KPIs for a set of samples: revenue is summed,
// the rates are averaged per sample.
type Totals struct {
	Count     int       `json:"count"`
	Revenue   float64   `json:"revenue"`
	ADR       float64   `json:"ADR"`
	RevPAR    float64   `json:"RevPAR"`
	Occupancy float64   `json:"occupancy"`
	FirstDate time.Time `json:"firstDate,omitempty"`
	LastDate  time.Time `json:"lastDate,omitempty"`
}

// Summary holds overall totals plus one entry per hotel.
type Summary struct {
	Totals
	Hotels []HotelTotals `json:"hotels"`
}

// HotelTotals is the per-hotel breakdown of a Summary.
type HotelTotals struct {
	HotelName string `json:"hotelName"`
	Totals
}

// Summarize aggregates samples into overall and per-hotel totals.
func Summarize(samples []model.MetricSample) *Summary {
	groups := make(map[string][]model.MetricSample)
	for _, s := range samples {
		groups[s.HotelName] = append(groups[s.HotelName], s)
	}

	out := &Summary{Totals: totals(samples), Hotels: make([]HotelTotals, 0, len(groups))}
	for name, list := range groups {
		out.Hotels = append(out.Hotels, HotelTotals{HotelName: name, Totals: totals(list)})
	}
	sort.Slice(out.Hotels, func(i, j int) bool { return out.Hotels[i].HotelName < out.Hotels[j].HotelName })
	return out
}

func totals(samples []model.MetricSample) Totals {
	var t Totals
	if len(samples) == 0 {
		return t
	}
	for _, s := range samples {
		t.Revenue += s.Metrics.Revenue
		t.ADR += s.Metrics.ADR
		t.RevPAR += s.Metrics.RevPAR
		t.Occupancy += s.Metrics.Occupancy
		if t.FirstDate.IsZero() || s.Date.Before(t.FirstDate) {
			t.FirstDate = s.Date
		}
		if s.Date.After(t.LastDate) {
			t.LastDate = s.Date
		}
	}
	n := float64(len(samples))
	t.Count = len(samples)
	t.ADR /= n
	t.RevPAR /= n
	t.Occupancy /= n
	return t
}

// HotelNames returns the sorted distinct hotel names of samples.
func HotelNames(samples []model.MetricSample) []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, s := range samples {
		if s.HotelName == "" || seen[s.HotelName] {
			continue
		}
		seen[s.HotelName] = true
		names = append(names, s.HotelName)
	}
	sort.Strings(names)
	return names
}
