package extract

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"path/filepath"
	"time"

	"hotelmetrics/internal/model"
)

// SyntheticDays is the length of the generated trailing window.
const SyntheticDays = 10

// Synthetic produces plausible demo metrics with the same shape as a real
// extraction. Output is deterministic for a given seed, hotel and day.
type Synthetic struct {
	Seed uint64
	Now  func() time.Time
}

// Generate returns SyntheticDays samples ending yesterday.
func (g *Synthetic) Generate(path, hotelName string) model.IngestionDocument {
	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}
	today := model.Date(now)

	h := fnv.New64a()
	_, _ = h.Write([]byte(hotelName))
	r := rand.New(rand.NewPCG(g.Seed^h.Sum64(), uint64(today.Unix())))

	source := filepath.Base(path)
	doc := model.IngestionDocument{HotelName: hotelName, Data: make([]model.MetricSample, 0, SyntheticDays)}
	for i := 0; i < SyntheticDays; i++ {
		revenue := math.Round(5000 + r.Float64()*5000)
		occupancy := math.Round(50 + r.Float64()*50)
		adr := math.Round(80 + r.Float64()*120)
		doc.Data = append(doc.Data, model.MetricSample{
			HotelName: hotelName,
			Date:      today.AddDate(0, 0, i-SyntheticDays),
			Metrics: model.Metrics{
				Revenue:   revenue,
				ADR:       adr,
				RevPAR:    math.Round(adr * occupancy / 100),
				Occupancy: occupancy,
			},
			SourceFile: source,
			CreatedAt:  now,
		})
	}
	return doc
}
