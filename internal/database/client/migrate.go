package client

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/GoArmGo/ShopTrack/internal/database/migrations"
)

// Migrate применяет все доступные миграции к бд
func (c *Client) Migrate() error {
	return c.runMigrations("up", func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown откатывает все миграции.
func (c *Client) MigrateDown() error {
	return c.runMigrations("down", func(m *migrate.Migrate) error { return m.Down() })
}

func (c *Client) runMigrations(direction string, step func(*migrate.Migrate) error) error {
	m, closeFn, err := c.newMigrator()
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer closeFn()

	err = step(m)
	if errors.Is(err, migrate.ErrNoChange) {
		c.logger.Info("migrations not required, database is up to date", "direction", direction)
		return nil
	}
	if err != nil {
		return fmt.Errorf("run migrations %s: %w", direction, err)
	}

	version, dirty, vErr := m.Version()
	if vErr != nil && !errors.Is(vErr, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", vErr)
	}
	c.logger.Info("migrations applied", "direction", direction, "version", version, "dirty", dirty)
	return nil
}

// newMigrator для Postgres открывает отдельное соединение по URL и закрывает его после;
// для SQLite работает поверх текущего пула (база :memory: живёт только в нём),
// поэтому Close мигратора не вызывается: он закрыл бы и наш *sql.DB.
func (c *Client) newMigrator() (*migrate.Migrate, func(), error) {
	dir := "postgres"
	if c.dialect == DialectSQLite {
		dir = "sqlite"
	}

	src, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	if c.dialect == DialectPostgres {
		m, err := migrate.NewWithSourceInstance("iofs", src, c.databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return m, func() {
			if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
				c.logger.Warn("failed to close migrator", "source_error", srcErr, "db_error", dbErr)
			}
		}, nil
	}

	driver, err := migratesqlite.WithInstance(c.DB.DB, &migratesqlite.Config{})
	if err != nil {
		return nil, nil, err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, nil, err
	}
	return m, func() { _ = src.Close() }, nil
}
