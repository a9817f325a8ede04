package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/cache"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/notify"
	"github.com/niksmo/storefront/internal/adapter/restapi"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/querycache"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

const redisPingAttempts = 5

type Option func(*App)

// WithNotifier replaces the default slog notifier.
func WithNotifier(n port.Notifier) Option {
	return func(app *App) {
		app.notifier = n
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(app *App) {
		app.httpClient = hc
	}
}

// WithoutLogger keeps the current default slog logger.
func WithoutLogger() Option {
	return func(app *App) {
		app.keepLogger = true
	}
}

// App is the storefront client: the product query layer and the cart
// store of one session, with an optional cart activity stream.
type App struct {
	ctx        context.Context
	cfg        config.Config
	notifier   port.Notifier
	httpClient *http.Client
	keepLogger bool

	redis    *cache.Redis
	api      *restapi.Client
	catalog  *service.Catalog
	cart     *service.CartStore
	activity *kafka.CartActivityProducer

	unsubscribe func()
}

func New(ctx context.Context, cfg config.Config, opts ...Option) *App {
	app := &App{ctx: ctx, cfg: cfg, notifier: notify.Log{}}
	for _, opt := range opts {
		opt(app)
	}

	app.initLogger()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initActivity()

	return app
}

func (app *App) Catalog() *service.Catalog {
	return app.catalog
}

func (app *App) Cart() *service.CartStore {
	return app.cart
}

func (app *App) initLogger() {
	if app.keepLogger {
		return
	}
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	api, err := restapi.New(restapi.Config{
		BaseURL:    app.cfg.API.BaseURL,
		APIPath:    app.cfg.API.APIPath,
		Timeout:    app.cfg.API.Timeout,
		HTTPClient: app.httpClient,
	})
	if err != nil {
		app.fallDown(op, err)
	}
	app.api = api

	if app.cfg.Cache.Backend == config.CacheBackendRedis {
		app.redis = cache.NewRedis(app.cfg.Cache.RedisAddr)
		if err := app.redis.Ping(app.ctx, redisPingAttempts); err != nil {
			app.fallDown(op, err)
		}
	}
}

func (app *App) initCoreService() {
	cacheOpts := []querycache.Option{querycache.WithTTL(app.cfg.Cache.TTL)}
	if app.redis != nil {
		cacheOpts = append(cacheOpts, querycache.WithBackend(app.redis))
	}

	app.catalog = service.NewCatalog(app.api, querycache.NewClient(cacheOpts...))
	app.cart = service.NewCartStore(app.api, app.notifier)
}

func (app *App) initActivity() {
	const op = "App.initActivity"

	cfg := app.cfg.Activity
	if !cfg.Enabled {
		return
	}
	ctx := app.ctx

	var tlsConfig *tls.Config
	if cfg.TLS.CA != "" {
		c, err := adapter.MakeTLSConfig(cfg.TLS.CA, cfg.TLS.Cert, cfg.TLS.Key)
		if err != nil {
			app.fallDown(op, err)
		}
		tlsConfig = c
	}

	srOpts := []sr.ClientOpt{sr.URLs(cfg.SchemaRegistryURLs...)}
	if tlsConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(tlsConfig))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeCartSnapshotV1(
		ctx,
		schema.SubjectOpt(cfg.Topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewRegistryIdentifier(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewCartActivityProducer(
		cfg.SessionID,
		kafka.ProducerClientOpt(ctx, cfg.SeedBrokers, cfg.Topic, tlsConfig),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.activity = producer

	app.unsubscribe = app.cart.Subscribe(func(st service.CartState) {
		producer.Publish(st.Revision, st.Cart)
	})
}

func (app *App) Run() {
	if app.activity != nil {
		go app.activity.Run(app.ctx)
	}

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	if app.unsubscribe != nil {
		app.unsubscribe()
	}
	if app.activity != nil {
		app.activity.Close(ctx)
	}
	if app.redis != nil {
		app.redis.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
