package db

import (
	"context"
	"fmt"
	"time"

	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/config"
	"shop-admin/internal/mylogger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectRetries  = 5
	connectInterval = 2 * time.Second
	pingTimeout     = 3 * time.Second
)

type DB struct {
	ctx   context.Context
	cfg   *config.DBconfig
	mylog mylogger.Logger
	pool  *pgxpool.Pool
}

var _ ports.IDB = (*DB)(nil)

// Start opens the pool, retrying while postgres comes up.
func Start(ctx context.Context, dbCfg *config.DBconfig, mylog mylogger.Logger) (*DB, error) {
	d := &DB{
		cfg:   dbCfg,
		ctx:   ctx,
		mylog: mylog,
	}

	if err := d.connect(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *DB) GetPool() *pgxpool.Pool {
	return d.pool
}

// Close closes the pool
func (d *DB) Close() error {
	if d.pool != nil {
		d.pool.Close()
	}
	return nil
}

// IsAlive pings the DB to verify it's responsive
func (d *DB) IsAlive(ctx context.Context) error {
	if d.pool == nil {
		return fmt.Errorf("DB is not initialized")
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := d.pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func (d *DB) connect() error {
	poolCfg, err := pgxpool.ParseConfig(d.cfg.DSN())
	if err != nil {
		return fmt.Errorf("parse database config: %w", err)
	}

	var lastErr error
	for i := 0; i < connectRetries; i++ {
		pool, err := pgxpool.NewWithConfig(d.ctx, poolCfg)
		if err == nil {
			d.pool = pool
			if lastErr = d.IsAlive(d.ctx); lastErr == nil {
				return nil
			}
			pool.Close()
		} else {
			lastErr = err
		}

		d.mylog.Action("db_connect_retry").Warn("database not ready", "attempt", i+1, "error", lastErr.Error())
		select {
		case <-d.ctx.Done():
			return d.ctx.Err()
		case <-time.After(connectInterval):
		}
	}
	d.pool = nil
	return fmt.Errorf("failed to connect to database: %w", lastErr)
}
