package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-pos/cmd/odyssey/cli"
	"github.com/odyssey-erp/odyssey-pos/internal/app"
	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/products"
	"github.com/odyssey-erp/odyssey-pos/internal/observability"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/procurement"
	"github.com/odyssey-erp/odyssey-pos/internal/returns"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/invoices"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/quotations"
	"github.com/odyssey-erp/odyssey-pos/jobs"
	"github.com/odyssey-erp/odyssey-pos/report"
)

func main() {
	if len(os.Args) > 1 {
		os.Exit(runCommand(os.Args[1], os.Args[2:]))
	}

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	queue, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	dispatcher := documents.NewDispatcher(queue, metrics, logger)

	services := app.NewServices(cfg, dbpool, redisClient, dispatcher, logger)

	pdfClient := report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout)
	renderer, err := report.NewRenderer(pdfClient)
	if err != nil {
		logger.Error("parse document templates", slog.Any("error", err))
		os.Exit(1)
	}

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		ProductsHandler:    products.NewHandler(logger, services.Products),
		CustomersHandler:   customers.NewHandler(logger, services.Customers),
		InvoicesHandler:    invoices.NewHandler(logger, services.Invoices),
		QuotationsHandler:  quotations.NewHandler(logger, services.Quotations),
		ProcurementHandler: procurement.NewHandler(logger, services.Procurement),
		ReturnsHandler:     returns.NewHandler(logger, services.Returns),
		ReportHandler:      report.NewHandler(pdfClient, renderer, services.DocumentSource(), logger),
		JobHandler:         jobs.NewHandler(inspector, logger),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runCommand(name string, args []string) int {
	switch name {
	case "price":
		fs := flag.NewFlagSet("price", flag.ContinueOnError)
		path := fs.String("file", "-", "draft document JSON, - for stdin")
		asJSON := fs.Bool("json", false, "print JSON instead of a table")
		if err := fs.Parse(args); err != nil {
			return 2
		}
		return cli.PriceCommand(cli.PriceOptions{Path: *path, JSONOutput: *asJSON})
	case "jobs":
		return runJobs(args)
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command %q (expected price or jobs)\n", name)
		return 2
	}
}

func runJobs(args []string) int {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	redisAddr := fs.String("redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "redis address")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "jobs: expected stats or render <kind> <id>")
		return 2
	}

	jc, err := cli.NewJobsCLI(*redisAddr)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	defer jc.Close()

	ctx := context.Background()
	switch rest[0] {
	case "stats":
		stats, err := jc.InspectQueue(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
			return 1
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
		return 0
	case "render":
		if len(rest) != 3 {
			_, _ = fmt.Fprintln(os.Stderr, "jobs: render <kind> <id>")
			return 2
		}
		id, err := strconv.ParseInt(rest[2], 10, 64)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs: invalid id %q\n", rest[2])
			return 2
		}
		info, err := jc.Render(ctx, rest[1], id)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
			return 1
		}
		fmt.Printf("enqueued %s (%s)\n", info.ID, info.Type)
		return 0
	default:
		_, _ = fmt.Fprintf(os.Stderr, "jobs: unknown subcommand %q\n", rest[0])
		return 2
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
