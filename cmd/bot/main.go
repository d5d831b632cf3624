package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lowcap-signals/internal/chat"
	"lowcap-signals/internal/market"
	"lowcap-signals/internal/observability"
	"lowcap-signals/internal/pipeline"
	"lowcap-signals/internal/storage"
	chstore "lowcap-signals/internal/storage/clickhouse"
	"lowcap-signals/internal/storage/memory"
	"lowcap-signals/internal/storage/migrations"
	pgstore "lowcap-signals/internal/storage/postgres"
)

func main() {
	// Parse flags
	wsEndpoint := flag.String("ws-endpoint", "", "Chat gateway WebSocket endpoint")
	channels := flag.String("channels", "", "Comma-separated channel names to monitor")
	dexURL := flag.String("dexscreener-url", "", "DexScreener API base URL (empty for default)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN for the snapshot archive (empty to disable)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	workers := flag.Int("workers", pipeline.DefaultWorkers, "Number of pipeline workers")
	enrichTimeout := flag.Duration("enrich-timeout", pipeline.DefaultEnrichTimeout, "Market data lookup timeout")
	migrate := flag.Bool("migrate", false, "Apply migrations before starting")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lshortfile)

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	channelList := splitChannels(*channels)
	if len(channelList) == 0 {
		logger.Fatal("No channels specified. Use --channels")
	}
	logger.Printf("Monitoring channels: %v", channelList)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to signal main goroutine completion
	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err := run(ctx, logger, runOptions{
		wsEndpoint:    *wsEndpoint,
		channels:      channelList,
		dexURL:        *dexURL,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useMemory:     *useMemory,
		workers:       *workers,
		enrichTimeout: *enrichTimeout,
		migrate:       *migrate,
	})

	// Signal completion to shutdown handler
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type runOptions struct {
	wsEndpoint    string
	channels      []string
	dexURL        string
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
	workers       int
	enrichTimeout time.Duration
	migrate       bool
}

// run wires the storage, enrichment, and chat layers and drains the
// message stream until the context is cancelled.
func run(ctx context.Context, logger *log.Logger, opts runOptions) error {
	if opts.wsEndpoint == "" {
		return fmt.Errorf("--ws-endpoint is required")
	}

	// Require --postgres-dsn unless --use-memory is explicitly set
	if !opts.useMemory && opts.postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Create stores (use interfaces)
	var sink storage.SignalStore = memory.NewSignalStore()
	var archive storage.SnapshotArchive

	if !opts.useMemory {
		pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if opts.migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				return fmt.Errorf("postgres migrations: %w", err)
			}
		}

		sink = pgstore.NewSignalStore(pool)
	}

	if opts.clickhouseDSN != "" {
		var conn *chstore.Conn
		var err error
		if opts.migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, opts.clickhouseDSN)
		} else {
			conn, err = chstore.NewConn(ctx, opts.clickhouseDSN)
		}
		if err != nil {
			return fmt.Errorf("connect to clickhouse: %w", err)
		}
		defer conn.Close()

		archive = chstore.NewSnapshotArchive(conn)
	}

	// Create enrichment client
	fetcherOpts := []market.ClientOption{market.WithTimeout(opts.enrichTimeout)}
	fetcher := market.NewDexScreenerClient(opts.dexURL, fetcherOpts...)

	p := pipeline.New(pipeline.Options{
		Fetcher:       fetcher,
		Sink:          sink,
		Archive:       archive,
		Logger:        logger,
		EnrichTimeout: opts.enrichTimeout,
	})

	// Connect to the chat gateway
	client, err := chat.NewClient(ctx, opts.wsEndpoint, opts.channels, nil)
	if err != nil {
		return fmt.Errorf("connect to chat gateway: %w", err)
	}
	defer client.Close()

	logger.Println("Starting signal extraction...")
	runner := pipeline.NewRunner(p, opts.workers)
	runner.Run(ctx, client.Messages())

	return ctx.Err()
}

// splitChannels parses the comma-separated channel list.
func splitChannels(raw string) []string {
	var list []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			list = append(list, c)
		}
	}
	return list
}
