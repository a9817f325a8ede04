package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/metrics"
	"github.com/niksmo/storefront/internal/adapter/storage"
)

const metricsPath = "/metrics"

// MockAPI serves the storefront API from the in-memory catalog and cart.
type MockAPI struct {
	cfg        config.Config
	httpServer httphandler.HTTPServer
}

func NewMockAPI(cfg config.Config) *MockAPI {
	const op = "NewMockAPI"

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))

	handler, err := NewMockHandler(cfg)
	if err != nil {
		panic(fmt.Errorf("%s: %w", op, err))
	}

	return &MockAPI{
		cfg: cfg,
		httpServer: httphandler.NewHTTPServer(
			cfg.MockServer.Addr, handler, cfg.MockServer.Timeout,
		),
	}
}

// NewMockHandler returns the API handler over a freshly seeded backend,
// instrumented and serving its metrics.
func NewMockHandler(cfg config.Config) (http.Handler, error) {
	const op = "NewMockHandler"

	products, err := storage.SeedProducts()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := metrics.NewHTTPMetrics()

	mux := http.NewServeMux()
	httphandler.RegisterStorefront(mux, storage.NewMemory(products), cfg.API.APIPath)
	mux.Handle("GET "+metricsPath, m.Handler())

	limit := httphandler.RateLimit(cfg.MockServer.RateLimit, cfg.MockServer.RateBurst)
	return m.Instrument(limit(httphandler.AllowJSON(mux))), nil
}

func (m *MockAPI) Run(stopFn context.CancelFunc) {
	go m.httpServer.Run(stopFn)

	slog.Info("mock api is running", "apiPath", m.cfg.API.APIPath)
}

func (m *MockAPI) Close(ctx context.Context) {
	slog.Info("mock api is closing...")

	m.httpServer.Close(ctx)

	slog.Info("mock api is closed")
}
