package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/Lingz450/receiptsplit/internal/auth"
	"github.com/Lingz450/receiptsplit/internal/config"
	"github.com/Lingz450/receiptsplit/internal/engine"
	"github.com/Lingz450/receiptsplit/internal/middleware"
	"github.com/Lingz450/receiptsplit/internal/service"
	"github.com/Lingz450/receiptsplit/internal/storage/sqlite"
	"github.com/Lingz450/receiptsplit/pkg/logging"
)

func main() {
	mintAddr := flag.String("mint-token", "", "print a bearer token for the given actor address and exit")
	mintName := flag.String("mint-name", "", "display name embedded in the minted token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	// Operator escape hatch: actors are pre-authenticated addresses, so
	// tokens are minted out of band rather than through a login flow.
	if *mintAddr != "" {
		token, err := jwtManager.Generate(*mintAddr, *mintName)
		if err != nil {
			slog.Error("Failed to mint token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	eng := engine.New(store)

	// One mutex serializes every command plus the clock ticks into the
	// single global order the engine assumes.
	var mu sync.Mutex

	go runClock(eng, &mu, cfg.ClockInterval)

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	metrics := middleware.NewMetrics(registry)

	mux := http.NewServeMux()
	service.Register(mux, eng, &mu, jwtManager, metrics)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(corsMiddleware(mux), &http2.Server{})

	slog.Info("Connect server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// runClock advances the logical clock at a fixed cadence, under the same
// mutex as commands.
func runClock(eng *engine.Engine, mu *sync.Mutex, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		mu.Lock()
		err := eng.AdvanceClock(context.Background(), time.Now().UnixMilli())
		mu.Unlock()
		if err != nil {
			slog.Warn("Clock tick failed", "error", err)
		}
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, X-Request-Id")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
