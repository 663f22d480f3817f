package handlers

import (
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"hotelmetrics/internal/apperr"
	"hotelmetrics/internal/model"
	"hotelmetrics/internal/storage"
)

type listResponse struct {
	Mode  storage.Mode   `json:"mode"`
	Count int            `json:"count"`
	Data  []model.Record `json:"data"`
}

type deleteResponse struct {
	Message string       `json:"message"`
	Mode    storage.Mode `json:"mode"`
	Deleted int          `json:"deleted"`
	Applied bool         `json:"applied"`
}

func writeRecords(ctx *fasthttp.RequestCtx, q *storage.QueryService, records []model.Record) {
	jsonResponse(ctx, fasthttp.StatusOK, listResponse{Mode: q.Mode(), Count: len(records), Data: records})
}

// ListMetrics serves GET /api/metrics, newest first.
func ListMetrics(q *storage.QueryService, log logrus.FieldLogger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		records, err := q.ListAll(ctx)
		if err != nil {
			errResponse(ctx, log, err)
			return
		}
		writeRecords(ctx, q, records)
	}
}

// HotelMetrics serves GET /api/metrics/{hotelName}, newest first.
func HotelMetrics(q *storage.QueryService, log logrus.FieldLogger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		records, err := q.ListByHotel(ctx, hotelParam(ctx))
		if err != nil {
			errResponse(ctx, log, err)
			return
		}
		writeRecords(ctx, q, records)
	}
}

// DateRangeMetrics serves POST /api/metrics/date-range with a JSON body
// {"startDate","endDate","hotelName"}, oldest first.
func DateRangeMetrics(q *storage.QueryService, log logrus.FieldLogger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var rq storage.RangeQuery
		if err := json.Unmarshal(ctx.PostBody(), &rq); err != nil {
			errResponse(ctx, log, apperr.Input("query.range", "invalid JSON body"))
			return
		}
		records, err := q.ListByRange(ctx, rq)
		if err != nil {
			errResponse(ctx, log, err)
			return
		}
		writeRecords(ctx, q, records)
	}
}

// MetricsSummary serves GET /api/metrics/summary[?hotel=].
func MetricsSummary(q *storage.QueryService, log logrus.FieldLogger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		sum, err := q.Summary(ctx, string(ctx.QueryArgs().Peek("hotel")))
		if err != nil {
			errResponse(ctx, log, err)
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, map[string]any{"mode": q.Mode(), "summary": sum})
	}
}

// Hotels serves GET /api/metrics/hotels.
func Hotels(q *storage.QueryService, log logrus.FieldLogger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		names, err := q.Hotels(ctx)
		if err != nil {
			errResponse(ctx, log, err)
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, map[string]any{"mode": q.Mode(), "data": names})
	}
}

// DeleteHotelMetrics serves DELETE /api/metrics/{hotelName}.
func DeleteHotelMetrics(q *storage.QueryService, log logrus.FieldLogger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		hotel := hotelParam(ctx)
		res, err := q.DeleteByHotel(ctx, hotel)
		if err != nil {
			errResponse(ctx, log, err)
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, deleteMessage(res, "metrics deleted for "+hotel))
	}
}

// DeleteAllMetrics serves DELETE /api/metrics.
func DeleteAllMetrics(q *storage.QueryService, log logrus.FieldLogger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		res, err := q.DeleteAll(ctx)
		if err != nil {
			errResponse(ctx, log, err)
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, deleteMessage(res, "all metrics deleted"))
	}
}

func deleteMessage(res storage.DeleteResult, applied string) deleteResponse {
	msg := applied
	if !res.Applied {
		msg = "delete acknowledged; local snapshots are kept"
	}
	return deleteResponse{Message: msg, Mode: res.Mode, Deleted: res.Deleted, Applied: res.Applied}
}

func hotelParam(ctx *fasthttp.RequestCtx) string {
	v, _ := ctx.UserValue("hotelName").(string)
	return strings.TrimSpace(v)
}
