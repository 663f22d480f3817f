package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hotelmetrics/internal/apperr"
	"hotelmetrics/internal/extract"
	"hotelmetrics/internal/model"
	"hotelmetrics/internal/storage"
)

type failingSaver struct{}

func (failingSaver) Save(context.Context, model.IngestionDocument) (storage.SaveResult, error) {
	return storage.SaveResult{Mode: storage.ModeFirestore}, apperr.E(apperr.KindStorage, "firestore.save", errors.New("deadline exceeded"))
}

func newService(t *testing.T, store Saver) (*Service, string) {
	t.Helper()
	processed := t.TempDir()
	log, _ := test.NewNullLogger()
	if store == nil {
		store = storage.NewSelector(nil, storage.NewLocalBackend(processed, log))
	}
	return New(extract.NewSpreadsheet(processed, log), extract.NewDocument(nil, processed, log), store, log), processed
}

func stageWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Date", "Revenue", "ADR", "RevPAR", "Occ %"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2024-03-01", 1200, 100, 60, "60%"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2024-03-02", 1300, 110, 66, "60%"}))
	path := filepath.Join(t.TempDir(), "files-0001.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindSpreadsheet, Classify("a.XLSX"))
	assert.Equal(t, KindSpreadsheet, Classify("a.xls"))
	assert.Equal(t, KindDocument, Classify("report.pdf"))
	assert.Equal(t, KindUnsupported, Classify("notes.txt"))
	assert.Equal(t, KindUnsupported, Classify("noext"))
}

func TestIngestSpreadsheetLocalMode(t *testing.T) {
	svc, processed := newService(t, nil)

	res := svc.IngestFile(context.Background(), stageWorkbook(t), "Grand Plaza.xlsx", "")

	assert.Equal(t, StatusProcessed, res.Status)
	assert.Equal(t, model.SourceSpreadsheet, res.Source)
	assert.Equal(t, storage.ModeLocal, res.Mode)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "Grand Plaza", res.HotelName)
	assert.Equal(t, filepath.Join(processed, "Grand Plaza.json"), res.JSONPath)

	records, err := storage.NewLocalBackend(processed, nil).ListByHotel(context.Background(), "Grand Plaza")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Grand Plaza.xlsx", records[0].SourceFile)
}

func TestIngestHotelOverride(t *testing.T) {
	svc, _ := newService(t, nil)

	res := svc.IngestFile(context.Background(), stageWorkbook(t), "export.xlsx", " Seaside ")

	assert.Equal(t, StatusProcessed, res.Status)
	assert.Equal(t, "Seaside", res.HotelName)
}

func TestIngestDocumentFallsBackToSynthetic(t *testing.T) {
	svc, _ := newService(t, nil)
	staged := filepath.Join(t.TempDir(), "files-0002.pdf")
	require.NoError(t, os.WriteFile(staged, []byte("%PDF-1.4"), 0o644))

	res := svc.IngestFile(context.Background(), staged, "march.pdf", "Harbor")

	assert.Equal(t, StatusProcessed, res.Status)
	assert.Equal(t, model.SourceSynthetic, res.Source)
	assert.Equal(t, extract.SyntheticDays, res.Count)
}

func TestIngestUnsupportedIsSkipped(t *testing.T) {
	svc, _ := newService(t, nil)

	res := svc.IngestFile(context.Background(), "/tmp/files-x.txt", "notes.txt", "")

	assert.Equal(t, StatusSkipped, res.Status)
	assert.Contains(t, res.Reason, ".txt")
	assert.Empty(t, res.JSONPath)
}

func TestIngestCorruptSpreadsheetFails(t *testing.T) {
	svc, processed := newService(t, nil)
	staged := filepath.Join(t.TempDir(), "files-0003.xlsx")
	require.NoError(t, os.WriteFile(staged, []byte("not a zip"), 0o644))

	res := svc.IngestFile(context.Background(), staged, "broken.xlsx", "")

	assert.Equal(t, StatusFailed, res.Status)
	assert.NotEmpty(t, res.Reason)
	_, err := os.Stat(filepath.Join(processed, "broken.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestIngestStoreFailureKeepsSnapshot(t *testing.T) {
	svc, _ := newService(t, failingSaver{})

	res := svc.IngestFile(context.Background(), stageWorkbook(t), "Grand Plaza.xlsx", "")

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, storage.ModeFirestore, res.Mode)
	assert.Equal(t, "deadline exceeded", res.Reason)
	require.NotEmpty(t, res.JSONPath)
	_, err := os.Stat(res.JSONPath)
	assert.NoError(t, err)
}
