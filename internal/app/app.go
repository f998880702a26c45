package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/ShopTrack/internal/config"
	"github.com/GoArmGo/ShopTrack/internal/core/ports"
	"github.com/GoArmGo/ShopTrack/internal/database/client"
	"github.com/GoArmGo/ShopTrack/internal/usecase"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

type App struct {
	Config             *config.Config
	logger             *slog.Logger
	db                 *client.Client
	authUseCase        usecase.AuthUseCase
	inventoryUseCase   usecase.InventoryUseCase
	stockEventConsumer ports.StockEventConsumer // nil, если RabbitMQ не настроен
	exportEnabled      bool
	closers            []func()
}

// Option дополняет App необязательными зависимостями.
type Option func(*App)

// WithStockEventConsumer подключает очередь событий для режима worker.
func WithStockEventConsumer(consumer ports.StockEventConsumer) Option {
	return func(a *App) { a.stockEventConsumer = consumer }
}

// WithHistoryExport включает маршрут экспорта журнала.
func WithHistoryExport() Option {
	return func(a *App) { a.exportEnabled = true }
}

// WithCloser регистрирует ресурс, который закрывается в Shutdown перед БД.
func WithCloser(fn func()) Option {
	return func(a *App) { a.closers = append(a.closers, fn) }
}

func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	db *client.Client,
	authUseCase usecase.AuthUseCase,
	inventoryUseCase usecase.InventoryUseCase,
	opts ...Option,
) *App {
	a := &App{
		Config:           cfg,
		logger:           logger,
		db:               db,
		authUseCase:      authUseCase,
		inventoryUseCase: inventoryUseCase,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run запускает приложение в выбранном режиме и блокируется до SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting application", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = a.runServer(ctx)
	case ModeWorker:
		err = a.runWorker(ctx)
	default:
		err = fmt.Errorf("unknown mode %q (use %q or %q)", mode, ModeServer, ModeWorker)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}
	if err != nil {
		return err
	}

	a.logger.Info("application stopped gracefully")
	return nil
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
		a.db = nil
	}
	return nil
}
