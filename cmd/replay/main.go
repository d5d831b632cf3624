package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lowcap-signals/internal/domain"
	"lowcap-signals/internal/market"
	"lowcap-signals/internal/pipeline"
	"lowcap-signals/internal/storage"
	"lowcap-signals/internal/storage/memory"
	pgstore "lowcap-signals/internal/storage/postgres"
)

func main() {
	// Parse flags
	inputPath := flag.String("input", "", "JSONL file of captured chat messages (required)")
	channel := flag.String("channel", "", "Override channel on every message (empty keeps recorded channels)")
	dexURL := flag.String("dexscreener-url", "", "DexScreener API base URL (empty for default)")
	offline := flag.Bool("offline", false, "Skip market data lookups, use zero snapshots")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", true, "Use in-memory storage")
	outputJSON := flag.Bool("json", false, "Output emitted signals as JSON")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags)

	// Validate required flags
	if *inputPath == "" {
		logger.Fatal("--input is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Create stores
	var sink storage.SignalStore = memory.NewSignalStore()
	archive := memory.NewSnapshotArchive()

	if !*useMemory && *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()

		sink = pgstore.NewSignalStore(pool)
	}

	// Create fetcher
	var fetcher market.Fetcher = market.NewDexScreenerClient(*dexURL)
	if *offline {
		fetcher = offlineFetcher{}
	}

	p := pipeline.New(pipeline.Options{
		Fetcher: fetcher,
		Sink:    sink,
		Archive: archive,
		Logger:  logger,
	})

	f, err := os.Open(*inputPath)
	if err != nil {
		logger.Fatalf("open input: %v", err)
	}
	defer f.Close()

	stats := ReplayStats{}
	var emitted []*domain.Signal

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg domain.RawMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			stats.MalformedLines++
			continue
		}
		if *channel != "" {
			msg.Channel = *channel
		}

		stats.MessagesProcessed++
		if sig := p.Process(ctx, msg); sig != nil {
			stats.SignalsEmitted++
			emitted = append(emitted, sig)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Fatalf("read input: %v", err)
	}

	// Output summary
	if *outputJSON {
		output, _ := json.MarshalIndent(emitted, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("\n=== Replay Summary ===\n")
		fmt.Printf("Messages Processed: %d\n", stats.MessagesProcessed)
		fmt.Printf("Malformed Lines:    %d\n", stats.MalformedLines)
		fmt.Printf("Signals Emitted:    %d\n", stats.SignalsEmitted)
		for _, sig := range emitted {
			fmt.Printf("[%s] %s %s %s\n",
				sig.CreatedAt.Format(time.RFC3339),
				sig.Type,
				sig.TokenSymbol,
				sig.Analysis,
			)
		}
	}
}

// ReplayStats holds replay statistics.
type ReplayStats struct {
	MessagesProcessed int `json:"messages_processed"`
	MalformedLines    int `json:"malformed_lines"`
	SignalsEmitted    int `json:"signals_emitted"`
}

// offlineFetcher returns the zero snapshot for every candidate.
type offlineFetcher struct{}

func (offlineFetcher) FetchSnapshot(context.Context, *domain.Candidate) domain.MarketSnapshot {
	return domain.MarketSnapshot{}
}

var _ market.Fetcher = offlineFetcher{}
