package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"

	"hotelmetrics/internal/config"
	"hotelmetrics/internal/http/handlers"
	appmw "hotelmetrics/internal/http/middleware"
	"hotelmetrics/internal/logger"
	"hotelmetrics/internal/pipeline"
	ui "hotelmetrics/web"
)

var (
	ingestHotel string
	purgeHotel  string
	purgeYes    bool
)

var rootCmd = &cobra.Command{
	Use:   "hotelmetrics",
	Short: "Hotel performance metrics ingestion and query service",
	Long: `hotelmetrics ingests hotel performance reports (spreadsheets and PDFs),
normalizes them into daily metric samples and serves them to a dashboard.

Samples are stored in Firestore or PostgreSQL when configured and reachable,
and served from local JSON snapshots otherwise.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest report files from disk",
	Long: `Ingest one or more report files without going through the HTTP upload.

Examples:
  # Hotel name taken from each file name
  hotelmetrics ingest "Grand Plaza.xlsx" seaside.pdf

  # Force the hotel name
  hotelmetrics ingest export.xlsx --hotel "Grand Plaza"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete stored samples for one hotel or for all hotels",
	Long: `Delete stored samples from the active remote store. In local mode the
request is acknowledged and the snapshot files are kept.`,
	RunE: runPurge,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestHotel, "hotel", "", "Hotel name for every file (default: file name)")
	purgeCmd.Flags().StringVar(&purgeHotel, "hotel", "", "Only delete this hotel's samples")
	purgeCmd.Flags().BoolVar(&purgeYes, "yes", false, "Confirm deleting every hotel's samples")

	rootCmd.AddCommand(serveCmd, ingestCmd, purgeCmd)
}

// bootstrap loads .env and configuration and builds the logger.
func bootstrap() (*config.Config, *logrus.Logger, error) {
	_ = godotenv.Load()
	cfg := config.Load()
	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, cfg, log, prometheus.DefaultRegisterer)
	defer a.Close()
	a.startHealth(ctx)

	r := router.New()
	r.SaveMatchedRoutePath = true

	handler := handlers.RequestLogger(log)(
		appmw.InternalReporting(prometheus.DefaultRegisterer)(
			appmw.CORS(cfg.CORSOrigins)(r.Handler)))

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok " + string(a.query.Mode()))
	})

	r.ServeFS("/static/{filepath:*}", ui.StaticFS())
	r.ServeFiles("/processed-data/{filepath:*}", cfg.ProcessedDir)

	r.GET("/", handlers.Dashboard(a.query, cfg, log))
	r.GET("/upload", handlers.UploadPage(a.query, cfg))
	r.POST("/upload", handlers.Upload(a.pipeline, cfg, a.metrics, log))

	r.GET("/api/metrics", handlers.ListMetrics(a.query, log))
	r.DELETE("/api/metrics", handlers.DeleteAllMetrics(a.query, log))
	r.GET("/api/metrics/summary", handlers.MetricsSummary(a.query, log))
	r.GET("/api/metrics/hotels", handlers.Hotels(a.query, log))
	r.POST("/api/metrics/date-range", handlers.DateRangeMetrics(a.query, log))
	r.GET("/api/metrics/{hotelName}", handlers.HotelMetrics(a.query, log))
	r.DELETE("/api/metrics/{hotelName}", handlers.DeleteHotelMetrics(a.query, log))

	r.GET("/metrics", handlers.PrometheusHandler(prometheus.DefaultGatherer))

	srv := &fasthttp.Server{
		Handler:            handler,
		Name:               "hotelmetrics",
		MaxRequestBodySize: 100 << 20,
		ReadTimeout:        2 * time.Minute,
		WriteTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.ListenAddr, "mode": a.query.Mode()}).Info("hotelmetrics listening")
		errc <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.ShutdownWithContext(shutdownCtx)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	a := newApp(cmd.Context(), cfg, log, nil)
	defer a.Close()

	failed := 0
	for _, path := range args {
		res := a.pipeline.IngestFile(cmd.Context(), path, "", ingestHotel)
		if res.Status != pipeline.StatusProcessed {
			failed++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%d\t%s\n", res.File, res.Status, res.Source, res.Mode, res.Count, res.Reason)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files not ingested", failed, len(args))
	}
	return nil
}

func runPurge(cmd *cobra.Command, _ []string) error {
	if purgeHotel == "" && !purgeYes {
		return fmt.Errorf("refusing to delete every hotel's samples without --yes")
	}
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	a := newApp(cmd.Context(), cfg, log, nil)
	defer a.Close()

	if purgeHotel != "" {
		res, err := a.query.DeleteByHotel(cmd.Context(), purgeHotel)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "mode=%s deleted=%d applied=%t\n", res.Mode, res.Deleted, res.Applied)
		return nil
	}
	res, err := a.query.DeleteAll(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "mode=%s deleted=%d applied=%t\n", res.Mode, res.Deleted, res.Applied)
	return nil
}
