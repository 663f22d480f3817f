// Package extract turns uploaded files into canonical ingestion documents.
//
// Spreadsheets are read directly; other documents go through an external
// extraction service with a synthetic fallback. Every successful run writes
// the document to the snapshot directory before returning.
package extract

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"hotelmetrics/internal/apperr"
	"hotelmetrics/internal/model"
	"hotelmetrics/internal/normalize"
	"hotelmetrics/internal/snapshot"
)

// Result is the outcome of one extraction run.
type Result struct {
	Document     model.IngestionDocument
	SnapshotPath string
	Source       model.Source
}

// SpreadsheetInput describes a staged spreadsheet. HotelName and SourceFile
// override the values derived from Path when set.
type SpreadsheetInput struct {
	Path       string
	HotelName  string
	SourceFile string
}

// Spreadsheet extracts metrics from the first sheet of a workbook.
type Spreadsheet struct {
	Normalizer   *normalize.Normalizer
	ProcessedDir string
	Now          func() time.Time
	Log          logrus.FieldLogger
}

// NewSpreadsheet returns an extractor writing snapshots to processedDir.
func NewSpreadsheet(processedDir string, log logrus.FieldLogger) *Spreadsheet {
	return &Spreadsheet{
		Normalizer:   normalize.New(),
		ProcessedDir: processedDir,
		Now:          time.Now,
		Log:          log,
	}
}

// Extract reads in.Path and writes the resulting snapshot. Unreadable files
// fail with a parse error and produce no document.
func (s *Spreadsheet) Extract(ctx context.Context, in SpreadsheetInput) (*Result, error) {
	const op = "extract.spreadsheet"

	rows, err := readFirstSheet(ctx, in.Path)
	if err != nil {
		return nil, apperr.E(apperr.KindParse, op, err)
	}

	base := filepath.Base(in.Path)
	hotel := strings.TrimSpace(in.HotelName)
	if hotel == "" {
		hotel = strings.TrimSuffix(base, filepath.Ext(base))
	}
	source := in.SourceFile
	if source == "" {
		source = base
	}

	now := s.now()
	doc := model.IngestionDocument{HotelName: hotel, Data: make([]model.MetricSample, 0, len(rows))}
	unresolved := 0
	for _, row := range rows {
		res := s.Normalizer.NormalizeRow(row)
		if !res.DateResolved {
			unresolved++
		}
		doc.Data = append(doc.Data, model.MetricSample{
			HotelName:  hotel,
			Date:       res.Date,
			Metrics:    res.Metrics,
			SourceFile: source,
			CreatedAt:  now,
		})
	}
	if unresolved > 0 && s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"file":  source,
			"hotel": hotel,
			"rows":  unresolved,
		}).Warn("rows without a usable date were stamped with today's date")
	}

	path, err := snapshot.Write(s.ProcessedDir, doc)
	if err != nil {
		return nil, apperr.E(apperr.KindStorage, op, err)
	}
	return &Result{Document: doc, SnapshotPath: path, Source: model.SourceSpreadsheet}, nil
}

func (s *Spreadsheet) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// readFirstSheet returns the data rows of the first sheet keyed by header.
// Cells are raw values, so date cells come back as serial numbers.
func readFirstSheet(ctx context.Context, path string) ([]normalize.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheet)
	}
	if len(grid) == 0 {
		return nil, nil
	}

	header := grid[0]
	rows := make([]normalize.Row, 0, len(grid)-1)
	for _, cols := range grid[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := normalize.Row{}
		blank := true
		for i, h := range header {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			var v any
			if i < len(cols) {
				v = cellValue(cols[i])
			}
			if v != nil {
				blank = false
			}
			row[h] = v
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellValue maps a raw cell string onto nil, float64 or string.
func cellValue(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
