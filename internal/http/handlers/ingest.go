package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"hotelmetrics/internal/apperr"
	"hotelmetrics/internal/config"
	httpctx "hotelmetrics/internal/http/ctx"
	"hotelmetrics/internal/pipeline"
)

// IngestMetrics counts ingestion outcomes. A nil *IngestMetrics records
// nothing.
type IngestMetrics struct {
	files     *prometheus.CounterVec
	samples   *prometheus.CounterVec
	fallbacks prometheus.Counter
}

// NewIngestMetrics creates the ingestion collectors and registers them in reg.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	m := &IngestMetrics{
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hotelmetrics",
				Name:      "files_ingested_total",
				Help:      "Uploaded files by extraction source and outcome.",
			},
			[]string{"source", "status"},
		),
		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hotelmetrics",
				Name:      "samples_ingested_total",
				Help:      "Daily metric samples stored, by hotel and storage mode.",
			},
			[]string{"hotel", "mode"},
		),
		fallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hotelmetrics",
				Name:      "extraction_fallbacks_total",
				Help:      "Documents for which synthetic data replaced remote extraction.",
			},
		),
	}
	reg.MustRegister(m.files, m.samples, m.fallbacks)
	return m
}

// Observe records one file result.
func (m *IngestMetrics) Observe(res pipeline.FileResult) {
	if m == nil {
		return
	}
	source := string(res.Source)
	if source == "" {
		source = "none"
	}
	m.files.WithLabelValues(source, string(res.Status)).Inc()
	if res.Status == pipeline.StatusProcessed && res.Count > 0 {
		m.samples.WithLabelValues(res.HotelName, string(res.Mode)).Add(float64(res.Count))
	}
}

// Fallback records a synthetic fallback. It matches extract.Document.OnFallback.
func (m *IngestMetrics) Fallback(error) {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

type uploadResponse struct {
	Processed int                   `json:"processed"`
	Results   []pipeline.FileResult `json:"results"`
}

// Upload serves POST /upload: multipart field "files" (repeatable) plus an
// optional "hotelName" applied to every file. Each file is staged as
// files-<uuid><ext> in the upload directory, ingested and then removed.
func Upload(svc *pipeline.Service, cfg *config.Config, m *IngestMetrics, log logrus.FieldLogger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		const op = "upload"
		form, err := ctx.MultipartForm()
		if err != nil {
			errResponse(ctx, log, apperr.Input(op, "expected multipart/form-data with a files field"))
			return
		}
		files := form.File["files"]
		if len(files) == 0 {
			errResponse(ctx, log, apperr.Input(op, "no files uploaded"))
			return
		}
		if cfg.MaxUploadFiles > 0 && len(files) > cfg.MaxUploadFiles {
			errResponse(ctx, log, apperr.Input(op, fmt.Sprintf("at most %d files per upload", cfg.MaxUploadFiles)))
			return
		}
		hotel := ""
		if v := form.Value["hotelName"]; len(v) > 0 {
			hotel = strings.TrimSpace(v[0])
		}

		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			errResponse(ctx, log, apperr.E(apperr.KindStorage, op, err))
			return
		}

		reqLog := httpctx.LoggerFromCtx(ctx, log)
		resp := uploadResponse{Results: make([]pipeline.FileResult, 0, len(files))}
		for _, fh := range files {
			name := filepath.Base(fh.Filename)
			staged := filepath.Join(cfg.UploadDir, "files-"+uuid.NewString()+strings.ToLower(filepath.Ext(name)))

			var res pipeline.FileResult
			if err := fasthttp.SaveMultipartFile(fh, staged); err != nil {
				reqLog.WithError(err).WithField("file", name).Error("failed to stage upload")
				res = pipeline.FileResult{File: name, Status: pipeline.StatusFailed, Reason: "failed to stage upload"}
			} else {
				res = svc.IngestFile(ctx, staged, name, hotel)
				if err := os.Remove(staged); err != nil {
					reqLog.WithError(err).WithField("staged", staged).Warn("failed to remove staged upload")
				}
			}

			m.Observe(res)
			if res.Status == pipeline.StatusProcessed {
				resp.Processed++
			}
			resp.Results = append(resp.Results, res)
		}

		jsonResponse(ctx, fasthttp.StatusOK, resp)
	}
}
