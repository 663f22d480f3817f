package extract

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hotelmetrics/internal/apperr"
	"hotelmetrics/internal/model"
	"hotelmetrics/internal/snapshot"
)

// DocumentInput describes a staged non-tabular document.
type DocumentInput struct {
	Path      string
	HotelName string
	// SourceFile overrides the base name of Path as the samples' sourceFile.
	SourceFile string
}

// Document extracts metrics from PDFs and similar documents. Failures of the
// remote extractor are absorbed by falling back to synthetic data;
// Result.Source tells which path ran.
type Document struct {
	Client       RemoteExtractor
	Synth        *Synthetic
	ProcessedDir string
	Log          logrus.FieldLogger
	// OnFallback is called with the reason whenever synthetic data is used.
	OnFallback func(reason error)
}

// NewDocument returns a document extractor. client may be nil.
func NewDocument(client RemoteExtractor, processedDir string, log logrus.FieldLogger) *Document {
	return &Document{
		Client:       client,
		Synth:        &Synthetic{Now: time.Now},
		ProcessedDir: processedDir,
		Log:          log,
	}
}

// Extract produces a document for in and writes its snapshot. Only the
// snapshot write can fail.
func (d *Document) Extract(ctx context.Context, in DocumentInput) (*Result, error) {
	hotel := strings.TrimSpace(in.HotelName)
	if hotel == "" {
		base := filepath.Base(in.Path)
		hotel = strings.TrimSuffix(base, filepath.Ext(base))
	}

	name := in.Path
	if in.SourceFile != "" {
		name = in.SourceFile
	}

	doc, err := d.remote(ctx, in.Path, name, hotel)
	source := model.SourceRemote
	if err != nil {
		if d.Log != nil {
			d.Log.WithError(err).WithFields(logrus.Fields{
				"hotel": hotel,
				"code":  apperr.KindOf(err).String(),
			}).Warn("document extraction unavailable, using synthetic data")
		}
		if d.OnFallback != nil {
			d.OnFallback(err)
		}
		synth := d.Synth
		if synth == nil {
			synth = &Synthetic{}
		}
		g := synth.Generate(name, hotel)
		doc = &g
		source = model.SourceSynthetic
	}

	path, err := snapshot.Write(d.ProcessedDir, *doc)
	if err != nil {
		return nil, apperr.E(apperr.KindStorage, "extract.document", err)
	}
	return &Result{Document: *doc, SnapshotPath: path, Source: source}, nil
}

func (d *Document) remote(ctx context.Context, path, name, hotel string) (*model.IngestionDocument, error) {
	if d.Client == nil {
		return nil, ErrNoCredential
	}
	doc, err := d.Client.Extract(ctx, path, hotel)
	if err != nil {
		return nil, apperr.E(apperr.KindExtraction, "extract.remote", err)
	}
	canonicalize(doc, name, hotel)
	return doc, nil
}

// canonicalize fills the gaps a remote response may leave so that it has the
// same shape as every other extraction path.
func canonicalize(doc *model.IngestionDocument, path, hotel string) {
	if strings.TrimSpace(doc.HotelName) == "" {
		doc.HotelName = hotel
	}
	now := time.Now()
	source := filepath.Base(path)
	for i := range doc.Data {
		s := &doc.Data[i]
		if s.HotelName == "" {
			s.HotelName = doc.HotelName
		}
		if s.Date.IsZero() {
			s.Date = model.Date(now)
		} else {
			s.Date = model.Date(s.Date)
		}
		if s.SourceFile == "" {
			s.SourceFile = source
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
	}
	if doc.Data == nil {
		doc.Data = []model.MetricSample{}
	}
}
