package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ShopTrack/internal/adapter/storage/minio"
	"github.com/GoArmGo/ShopTrack/internal/app"
	"github.com/GoArmGo/ShopTrack/internal/config"
	"github.com/GoArmGo/ShopTrack/internal/core/ports"
	"github.com/GoArmGo/ShopTrack/internal/database/client"
	"github.com/GoArmGo/ShopTrack/internal/database/storage"
	"github.com/GoArmGo/ShopTrack/internal/logger"
	"github.com/GoArmGo/ShopTrack/internal/rabbitmq"
	"github.com/GoArmGo/ShopTrack/internal/usecase"
)

// LoadRuntime загружает конфигурацию и создаёт основной логгер.
func LoadRuntime() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)
	return cfg, slogger, nil
}

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
// RabbitMQ и MinIO подключаются, только если они заданы в конфигурации.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Конфигурация и логгер
	cfg, slogger, err := LoadRuntime()
	if err != nil {
		return nil, err
	}

	// 2. База данных и миграции
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := dbClient.Migrate(); err != nil {
			_ = dbClient.Close()
			return nil, err
		}
	}

	// 3. Хранилища
	userStorage := storage.NewUserStorage(dbClient, slogger)
	sessionStorage := storage.NewSessionStorage(dbClient, slogger)
	productStorage := storage.NewProductStorage(dbClient, slogger)
	historyStorage := storage.NewHistoryStorage(dbClient, slogger)

	var opts []app.Option

	// 4. RabbitMQ: публикация событий и потребитель для воркера
	var (
		publisher      ports.StockEventPublisher
		rabbitMQClient *rabbitmq.Client
	)
	if cfg.EventsEnabled() {
		rabbitMQClient, err = rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		publisher = rabbitMQClient
		opts = append(opts,
			app.WithStockEventConsumer(rabbitMQClient),
			app.WithCloser(rabbitMQClient.Close),
		)
	} else {
		slogger.Info("RABBITMQ_URL not set, stock events disabled")
	}

	// 5. MinIO для экспорта журнала
	var fileStorage ports.FileStorage
	if cfg.ExportEnabled() {
		minioClient, err := minio.NewMinioClient(ctx, cfg, slogger)
		if err != nil {
			if rabbitMQClient != nil {
				rabbitMQClient.Close()
			}
			_ = dbClient.Close()
			return nil, fmt.Errorf("init minio: %w", err)
		}
		fileStorage = minioClient
		opts = append(opts, app.WithHistoryExport())
	} else {
		slogger.Info("MinIO not configured, history export disabled")
	}

	// 6. Бизнес-логика
	authUseCase := usecase.NewAuthUseCase(userStorage, sessionStorage, cfg.BcryptCost, slogger)
	inventoryUseCase := usecase.NewInventoryUseCase(dbClient, productStorage, historyStorage, publisher, fileStorage, slogger)

	// 7. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, dbClient, authUseCase, inventoryUseCase, opts...)

	slogger.Info("all dependencies initialized",
		"stock_events", publisher != nil,
		"history_export", fileStorage != nil,
	)
	return application, nil
}
