package handlers

import (
	"bytes"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"hotelmetrics/internal/config"
	httpctx "hotelmetrics/internal/http/ctx"
	"hotelmetrics/internal/model"
	"hotelmetrics/internal/storage"
	ui "hotelmetrics/web"
)

type LayoutData struct {
	Title          string
	ActivePage     string
	PageTemplate   string
	Mode           storage.Mode
	Hotels         []string
	ActiveHotel    string
	Cards          []KPICard
	Rows           []RecordRow
	Error          string
	MaxUploadFiles int
}

// KPICard is one summary tile on the dashboard.
type KPICard struct {
	Label string
	Value string
}

// RecordRow is a display-ready sample.
type RecordRow struct {
	Date       string
	HotelName  string
	Revenue    string
	ADR        string
	RevPAR     string
	Occupancy  string
	SourceFile string
}

func getLayoutData(cfg *config.Config, q *storage.QueryService, activePage, title, pageTemplate string) LayoutData {
	return LayoutData{
		Title:          title,
		ActivePage:     activePage,
		PageTemplate:   pageTemplate,
		Mode:           q.Mode(),
		MaxUploadFiles: cfg.MaxUploadFiles,
	}
}

func renderLayout(ctx *fasthttp.RequestCtx, data LayoutData) {
	var buf bytes.Buffer
	if err := ui.Templates().ExecuteTemplate(&buf, "layout", data); err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("render error")
		return
	}
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBody(buf.Bytes())
}

func kpiCards(t storage.Totals) []KPICard {
	return []KPICard{
		{Label: "Total revenue", Value: FormatAmount(t.Revenue)},
		{Label: "Avg ADR", Value: FormatAmount(t.ADR)},
		{Label: "Avg RevPAR", Value: FormatAmount(t.RevPAR)},
		{Label: "Avg occupancy", Value: FormatPercent(t.Occupancy)},
		{Label: "Days", Value: printer.Sprintf("%d", t.Count)},
	}
}

func recordRows(records []model.Record) []RecordRow {
	rows := make([]RecordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, RecordRow{
			Date:       FormatDate(r.Date),
			HotelName:  r.HotelName,
			Revenue:    FormatAmount(r.Metrics.Revenue),
			ADR:        FormatAmount(r.Metrics.ADR),
			RevPAR:     FormatAmount(r.Metrics.RevPAR),
			Occupancy:  FormatPercent(r.Metrics.Occupancy),
			SourceFile: r.SourceFile,
		})
	}
	return rows
}

// Dashboard renders KPI cards and the sample table, optionally filtered by
// ?hotel=.
func Dashboard(q *storage.QueryService, cfg *config.Config, log logrus.FieldLogger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		hotel := strings.TrimSpace(string(ctx.QueryArgs().Peek("hotel")))
		data := getLayoutData(cfg, q, "dashboard", "Dashboard", "dashboard")
		data.ActiveHotel = hotel

		var (
			records []model.Record
			err     error
		)
		if hotel == "" {
			records, err = q.ListAll(ctx)
		} else {
			records, err = q.ListByHotel(ctx, hotel)
		}
		if err == nil {
			data.Hotels, err = q.Hotels(ctx)
		}
		if err != nil {
			httpctx.LoggerFromCtx(ctx, log).WithError(err).Error("dashboard query failed")
			data.Error = "Metrics are unavailable right now."
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			renderLayout(ctx, data)
			return
		}

		data.Cards = kpiCards(storage.Summarize(model.Samples(records)).Totals)
		data.Rows = recordRows(records)
		renderLayout(ctx, data)
	}
}

// UploadPage renders the multi-file upload form.
func UploadPage(q *storage.QueryService, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		renderLayout(ctx, getLayoutData(cfg, q, "upload", "Upload", "upload"))
	}
}
