package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopium/payments-service/internal/authclient"
	"shopium/payments-service/internal/cache"
	"shopium/payments-service/internal/config"
	"shopium/payments-service/internal/events"
	"shopium/payments-service/internal/httpapi"
	"shopium/payments-service/internal/payment"
	"shopium/payments-service/internal/storage"
)

type App struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *storage.Store
	tokenCache *cache.TokenCache
	publisher  events.Publisher
	processor  *payment.Processor
	httpSrv    *http.Server
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	store, err := storage.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// The validation cache is an optimization; the service runs without it.
	tokenCache, err := cache.NewTokenCache(cfg.RedisURL, cfg.TokenCacheTTL)
	if err != nil {
		logger.Warn("token cache unavailable, validating every request", "err", err)
		tokenCache = nil
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitURL != "" {
		publisher, err = events.NewRabbitPublisher(cfg.RabbitURL, cfg.PaymentsExchange)
		if err != nil {
			store.Close()
			if tokenCache != nil {
				tokenCache.Close()
			}
			return nil, err
		}
	}

	var validationCache authclient.ValidationCache
	if tokenCache != nil {
		validationCache = tokenCache
	}
	auth := authclient.New(cfg.UserServiceURL, cfg.AuthTimeout, validationCache, logger)

	processor := payment.NewProcessor(store, payment.StubAuthorizer{}, publisher, logger)

	api := httpapi.NewServer(processor, auth, store, logger)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		tokenCache: tokenCache,
		publisher:  publisher,
		processor:  processor,
		httpSrv:    httpSrv,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("payments http server listening", "addr", a.httpSrv.Addr)
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *App) Close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.ShutdownGracePeriod)
	defer cancel()
	_ = a.httpSrv.Shutdown(shutdownCtx)
	_ = a.publisher.Close()
	if a.tokenCache != nil {
		a.tokenCache.Close()
	}
	a.store.Close()
}

func Run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer app.Close(ctx)

	return app.Run(ctx)
}
