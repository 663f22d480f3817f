// Package snapshot reads and writes the per-hotel JSON ingestion log.
//
// Each extraction run writes its whole document to <dir>/<hotelName>.json.
// The files double as the local storage backend: queries in local mode scan
// the directory and rebuild samples from them.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hotelmetrics/internal/model"
)

const ext = ".json"

// nameEscaper percent-encodes the characters that cannot appear in a file
// name. "%" is escaped too, so distinct hotel names never share a file.
var nameEscaper = strings.NewReplacer("%", "%25", "/", "%2F", "\\", "%5C", "\x00", "%00")

// FileName returns the snapshot file name used for a hotel.
func FileName(hotelName string) string {
	name := nameEscaper.Replace(hotelName)
	switch name {
	case "":
		name = "%"
	case ".", "..":
		name = strings.ReplaceAll(name, ".", "%2E")
	}
	return name + ext
}

// Write stores doc as pretty-printed JSON and returns the file path.
// Concurrent writes for the same hotel race; the last one wins.
func Write(dir string, doc model.IngestionDocument) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	if doc.Data == nil {
		doc.Data = []model.MetricSample{}
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	path := filepath.Join(dir, FileName(doc.HotelName))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// Read parses a single snapshot file.
func Read(path string) (*model.IngestionDocument, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc model.IngestionDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadAll rebuilds records from every snapshot in dir. Files that fail to
// parse are logged and skipped. A missing directory yields no records.
func ReadAll(dir string, log logrus.FieldLogger) ([]model.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	now := time.Now()
	var out []model.Record
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		doc, err := Read(filepath.Join(dir, e.Name()))
		if err != nil {
			if log != nil {
				log.WithError(err).WithField("file", e.Name()).Warn("skipping unreadable snapshot")
			}
			continue
		}
		for _, s := range doc.Data {
			if s.HotelName == "" {
				s.HotelName = doc.HotelName
			}
			if s.Date.IsZero() {
				s.Date = now
			}
			s.Date = model.Date(s.Date)
			if s.SourceFile == "" {
				s.SourceFile = e.Name()
			}
			if s.CreatedAt.IsZero() {
				s.CreatedAt = now
			}
			out = append(out, model.NewRecord(s))
		}
	}
	return out, nil
}
