package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads settings from a key/value table shared with the host
// application's database:
//
//	CREATE TABLE pluginreporter_settings (key text PRIMARY KEY, value text NOT NULL);
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// ConnectPostgres opens a small pool and verifies connectivity.
func ConnectPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{Pool: pool}, nil
}

func (p *PostgresStore) Settings(ctx context.Context) (Settings, error) {
	rows, err := p.Pool.Query(ctx, `SELECT key, value FROM pluginreporter_settings`)
	if err != nil {
		return Settings{}, fmt.Errorf("querying settings: %w", err)
	}
	m := make(map[string]string)
	var k, v string
	_, err = pgx.ForEachRow(rows, []any{&k, &v}, func() error {
		m[k] = v
		return nil
	})
	if err != nil {
		return Settings{}, fmt.Errorf("scanning settings: %w", err)
	}
	return settingsFromMap(m), nil
}

func (p *PostgresStore) SaveSettings(ctx context.Context, s Settings) (err error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	for k, v := range settingsToMap(s) {
		if _, err = tx.Exec(ctx, `
			INSERT INTO pluginreporter_settings (key, value)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
		`, k, v); err != nil {
			return fmt.Errorf("writing %s: %w", k, err)
		}
	}
	return nil
}

func (p *PostgresStore) Close() error {
	p.Pool.Close()
	return nil
}
