package db

import (
	"time"

	"gorm.io/datatypes"

	"hotelmetrics/internal/model"
)

// MetricRecord is one daily sample as stored in PostgreSQL. The table is the
// relational counterpart of the Firestore hotel_metrics collection.
type MetricRecord struct {
	// ID is either a random UUID or, when upserting, the sample's key hash.
	ID string `gorm:"primaryKey;size:64"`

	// HotelName partitions every query and delete.
	HotelName string `gorm:"index:idx_metric_hotel_date,priority:1;size:255;not null"`

	// Date is the business date (midnight UTC).
	Date datatypes.Date `gorm:"index:idx_metric_hotel_date,priority:2;index;not null"`

	Revenue   float64 `gorm:"not null;default:0"`
	ADR       float64 `gorm:"column:adr;not null;default:0"`
	RevPAR    float64 `gorm:"column:rev_par;not null;default:0"`
	Occupancy float64 `gorm:"not null;default:0"`

	SourceFile string `gorm:"size:512"`

	CreatedAt time.Time
}

// TableName keeps the table name aligned with the Firestore collection.
func (MetricRecord) TableName() string { return "hotel_metrics" }

// FromSample converts a sample into a row with the given ID.
func FromSample(id string, s model.MetricSample) MetricRecord {
	return MetricRecord{
		ID:         id,
		HotelName:  s.HotelName,
		Date:       datatypes.Date(model.Date(s.Date)),
		Revenue:    s.Metrics.Revenue,
		ADR:        s.Metrics.ADR,
		RevPAR:     s.Metrics.RevPAR,
		Occupancy:  s.Metrics.Occupancy,
		SourceFile: s.SourceFile,
		CreatedAt:  s.CreatedAt,
	}
}

// Sample converts the row back into a sample.
func (r MetricRecord) Sample() model.MetricSample {
	return model.MetricSample{
		HotelName: r.HotelName,
		Date:      model.Date(time.Time(r.Date)),
		Metrics: model.Metrics{
			Revenue:   r.Revenue,
			ADR:       r.ADR,
			RevPAR:    r.RevPAR,
			Occupancy: r.Occupancy,
		},
		SourceFile: r.SourceFile,
		CreatedAt:  r.CreatedAt,
	}
}
