// Package pipeline routes staged uploads to an extractor and stores the
// resulting ingestion document.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"hotelmetrics/internal/apperr"
	"hotelmetrics/internal/extract"
	"hotelmetrics/internal/model"
	"hotelmetrics/internal/storage"
)

// Status is the per-file outcome of an upload.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// FileResult reports what happened to one uploaded file.
type FileResult struct {
	File     string       `json:"file"`
	Status   Status       `json:"status"`
	Reason   string       `json:"reason,omitempty"`
	JSONPath string       `json:"jsonPath,omitempty"`
	Source   model.Source `json:"source,omitempty"`
	Mode     storage.Mode `json:"mode,omitempty"`
	Count    int          `json:"count"`
	// HotelName is the partition the samples were stored under.
	HotelName string `json:"hotelName,omitempty"`
}

// Saver persists an ingestion document. storage.Selector implements it.
type Saver interface {
	Save(ctx context.Context, doc model.IngestionDocument) (storage.SaveResult, error)
}

// Service ingests staged files.
type Service struct {
	Sheets *extract.Spreadsheet
	Docs   *extract.Document
	Store  Saver
	Log    logrus.FieldLogger
}

// New returns a pipeline over the given extractors and store.
func New(sheets *extract.Spreadsheet, docs *extract.Document, store Saver, log logrus.FieldLogger) *Service {
	return &Service{Sheets: sheets, Docs: docs, Store: store, Log: log}
}

// Kind classifies a file by extension.
type Kind int

const (
	KindUnsupported Kind = iota
	KindSpreadsheet
	KindDocument
)

// Classify maps a file name to the extractor that handles it.
func Classify(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls":
		return KindSpreadsheet
	case ".pdf":
		return KindDocument
	default:
		return KindUnsupported
	}
}

// IngestFile extracts stagedPath and saves the result. originalName is the
// client's file name: it names the sample source and, unless hotelName is
// set, the hotel. Failures are reported in the result rather than returned
// so that one bad file does not abort a multi-file upload.
func (s *Service) IngestFile(ctx context.Context, stagedPath, originalName, hotelName string) FileResult {
	if originalName == "" {
		originalName = filepath.Base(stagedPath)
	}
	res := FileResult{File: originalName}

	hotel := strings.TrimSpace(hotelName)
	if hotel == "" {
		base := filepath.Base(originalName)
		hotel = strings.TrimSuffix(base, filepath.Ext(base))
	}
	log := s.logger().WithFields(logrus.Fields{"file": originalName, "hotel": hotel})

	var (
		out *extract.Result
		err error
	)
	switch Classify(originalName) {
	case KindSpreadsheet:
		out, err = s.Sheets.Extract(ctx, extract.SpreadsheetInput{Path: stagedPath, HotelName: hotel, SourceFile: originalName})
	case KindDocument:
		out, err = s.Docs.Extract(ctx, extract.DocumentInput{Path: stagedPath, HotelName: hotel, SourceFile: originalName})
	default:
		res.Status = StatusSkipped
		res.Reason = fmt.Sprintf("unsupported file type %q", filepath.Ext(originalName))
		log.Info("skipping unsupported upload")
		return res
	}
	if err != nil {
		res.Status = StatusFailed
		res.Reason = apperr.Message(err)
		log.WithError(err).WithField("code", apperr.KindOf(err).String()).Error("extraction failed")
		return res
	}

	res.JSONPath = out.SnapshotPath
	res.Source = out.Source
	res.HotelName = out.Document.HotelName

	saved, err := s.Store.Save(ctx, out.Document)
	res.Mode = saved.Mode
	res.Count = saved.Count
	if err != nil {
		res.Status = StatusFailed
		res.Reason = apperr.Message(err)
		log.WithError(err).WithField("mode", saved.Mode).Error("store write failed, snapshot kept")
		return res
	}

	res.Status = StatusProcessed
	log.WithFields(logrus.Fields{
		"source": out.Source,
		"mode":   saved.Mode,
		"count":  saved.Count,
	}).Info("file ingested")
	return res
}

func (s *Service) logger() logrus.FieldLogger {
	if s.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return s.Log
}
