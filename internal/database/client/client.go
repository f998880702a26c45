package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/GoArmGo/ShopTrack/internal/config"
)

// Dialect: имя драйвера database/sql, под которым открыто соединение.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

const sqliteMemory = ":memory:"

// Client: единственная точка доступа к реляционному хранилищу.
// Диалект (плейсхолдеры, миграции, коды ошибок) скрыт внутри: хранилища пишут запросы
// с '?' и получают их в нужной форме через Rebind.
type Client struct {
	DB          *sqlx.DB
	dialect     Dialect
	databaseURL string
	logger      *slog.Logger
}

// NewClient открывает соединение по cfg.DatabaseURL и проверяет его.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	return Open(cfg.DatabaseURL, logger)
}

// Open принимает URL вида postgres://... или sqlite://path (sqlite://:memory: для тестов).
func Open(databaseURL string, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	dialect, dsn, inMemory, err := parseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(string(dialect), dsn)
	if err != nil {
		logger.Error("failed to open database connection", "dialect", dialect, "error", err)
		return nil, fmt.Errorf("open database connection: %w", err)
	}

	switch {
	case inMemory:
		// каждое соединение к :memory:: отдельная пустая база
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	case dialect == DialectSQLite:
		db.SetMaxOpenConns(4)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	logger.Info("database connection established",
		"dialect", dialect,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: db, dialect: dialect, databaseURL: databaseURL, logger: logger}, nil
}

// sqliteParams: внешние ключи включаются на каждом соединении, BEGIN IMMEDIATE
// сериализует пишущие транзакции.
const sqliteParams = "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

func parseURL(databaseURL string) (dialect Dialect, dsn string, inMemory bool, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DialectPostgres, databaseURL, false, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return "", "", false, errors.New("sqlite database path is empty")
		}
		if strings.Contains(path, "?") {
			return DialectSQLite, path, strings.HasPrefix(path, sqliteMemory), nil
		}
		return DialectSQLite, path + "?" + sqliteParams, path == sqliteMemory, nil
	default:
		return "", "", false, fmt.Errorf("unsupported database url scheme: %q", databaseURL)
	}
}

func (c *Client) Dialect() Dialect { return c.dialect }

type txKey struct{}

// Querier возвращает транзакцию из контекста, если она открыта WithinTx, иначе пул соединений.
func (c *Client) Querier(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return c.DB
}

// WithinTx выполняет fn в одной транзакции: commit при nil, rollback при ошибке или панике.
// Вложенный вызов переиспользует уже открытую транзакцию.
func (c *Client) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := c.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				c.logger.Error("failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation распознаёт нарушение уникальности в обоих драйверах.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close() error {
	start := time.Now()
	err := c.DB.Close()
	if err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
