package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/time/rate"

	"github.com/nmansoor/souq/internal/ai"
	"github.com/nmansoor/souq/internal/httpapi"
	"github.com/nmansoor/souq/internal/store"
	"github.com/nmansoor/souq/internal/telemetry"
)

func main() {
	var (
		addr     = flag.String("addr", ":8080", "listen address (PORT env var overrides the port)")
		dbFlag   = flag.String("db", "", "path to SQLite database file (overrides DB_PATH env var)")
		devMode  = flag.Bool("dev", false, "development mode: echo OTP codes in responses")
		otlpAddr = flag.String("otlp-endpoint", "", "OTLP trace collector host:port (empty disables tracing)")
		llmRPS   = flag.Float64("llm-rps", 0, "max model calls per second, 0 for unlimited")
	)
	flag.Parse()

	listen := *addr
	if port := os.Getenv("PORT"); port != "" {
		listen = ":" + port
	}

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = os.Getenv("DB_PATH")
	}
	if dbPath == "" {
		dbPath = "./data/souq.db"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *otlpAddr != "" {
		shutdown, err := telemetry.Setup(ctx, *otlpAddr, "souqd")
		if err != nil {
			log.Fatalf("failed to initialize tracing (%s): %v", *otlpAddr, err)
		}
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer flushCancel()
			if err := shutdown(flushCtx); err != nil {
				log.Printf("trace shutdown: %v", err)
			}
		}()
	}

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("failed to initialize sqlite store (%s): %v", dbPath, err)
	}
	defer st.Close()
	log.Printf("using sqlite store at %s", dbPath)

	var limiter *rate.Limiter
	if *llmRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(*llmRPS), 1)
	}

	var completer ai.Completer
	if client, err := ai.NewAnthropicClientFromEnv(limiter); err != nil {
		log.Printf("warning: %v; AI features will use deterministic fallbacks", err)
	} else {
		completer = client
	}
	gateway := ai.NewGateway(completer)

	handler := httpapi.NewServer(st, gateway, *devMode)

	log.Printf("souqd listening on %s (dev=%v)", listen, *devMode)
	srv := &http.Server{Addr: listen, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
