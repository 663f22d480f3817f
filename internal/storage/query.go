package storage

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"hotelmetrics/internal/apperr"
	"hotelmetrics/internal/model"
	"hotelmetrics/internal/normalize"
)

// RangeQuery is the client-supplied date range request.
type RangeQuery struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	HotelName string `json:"hotelName,omitempty"`
}

var validate = validator.New()

// Parse validates q and turns it into an inclusive Range. Bounds accept the
// same date formats as spreadsheet cells.
func (q RangeQuery) Parse() (Range, error) {
	const op = "query.range"
	q.StartDate = strings.TrimSpace(q.StartDate)
	q.EndDate = strings.TrimSpace(q.EndDate)
	if err := validate.Struct(q); err != nil {
		return Range{}, apperr.Input(op, "startDate and endDate are required (YYYY-MM-DD)")
	}
	start, ok := normalize.ParseDate(q.StartDate)
	if !ok {
		return Range{}, apperr.Input(op, "startDate is not a valid date")
	}
	end, ok := normalize.ParseDate(q.EndDate)
	if !ok {
		return Range{}, apperr.Input(op, "endDate is not a valid date")
	}
	if end.Before(start) {
		return Range{}, apperr.Input(op, "endDate is before startDate")
	}
	return Range{Start: start, End: end, HotelName: strings.TrimSpace(q.HotelName)}, nil
}

// QueryService answers metric queries against the selected backend.
type QueryService struct {
	sel *Selector
}

// NewQueryService returns a query service over sel.
func NewQueryService(sel *Selector) *QueryService {
	return &QueryService{sel: sel}
}

// Mode reports the mode the next query will run in.
func (q *QueryService) Mode() Mode { return q.sel.Mode() }

// ListAll returns samples newest first. Remote backends cap the result size.
func (q *QueryService) ListAll(ctx context.Context) ([]model.Record, error) {
	return nonNil(q.sel.Active().ListAll(ctx))
}

// ListByHotel returns one hotel's samples, newest first.
func (q *QueryService) ListByHotel(ctx context.Context, hotelName string) ([]model.Record, error) {
	hotelName = strings.TrimSpace(hotelName)
	if hotelName == "" {
		return nil, apperr.Input("query.hotel", "hotelName is required")
	}
	return nonNil(q.sel.Active().ListByHotel(ctx, hotelName))
}

// ListByRange validates rq before touching storage and returns matching
// samples oldest first.
func (q *QueryService) ListByRange(ctx context.Context, rq RangeQuery) ([]model.Record, error) {
	rng, err := rq.Parse()
	if err != nil {
		return nil, err
	}
	return nonNil(q.sel.Active().ListByRange(ctx, rng))
}

// DeleteByHotel removes every sample of a hotel.
func (q *QueryService) DeleteByHotel(ctx context.Context, hotelName string) (DeleteResult, error) {
	hotelName = strings.TrimSpace(hotelName)
	if hotelName == "" {
		return DeleteResult{}, apperr.Input("delete.hotel", "hotelName is required")
	}
	return q.sel.Active().DeleteByHotel(ctx, hotelName)
}

// DeleteAll removes every sample.
func (q *QueryService) DeleteAll(ctx context.Context) (DeleteResult, error) {
	return q.sel.Active().DeleteAll(ctx)
}

// Summary aggregates the samples of one hotel, or of all hotels when
// hotelName is empty.
func (q *QueryService) Summary(ctx context.Context, hotelName string) (*Summary, error) {
	var (
		records []model.Record
		err     error
	)
	if strings.TrimSpace(hotelName) == "" {
		records, err = q.ListAll(ctx)
	} else {
		records, err = q.ListByHotel(ctx, hotelName)
	}
	if err != nil {
		return nil, err
	}
	return Summarize(model.Samples(records)), nil
}

// Hotels lists the distinct hotel names visible to ListAll.
func (q *QueryService) Hotels(ctx context.Context) ([]string, error) {
	records, err := q.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return HotelNames(model.Samples(records)), nil
}

func nonNil(records []model.Record, err error) ([]model.Record, error) {
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}
