package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/asquebay/order-tracking-api/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB — минимальный набор методов пула, которым пользуется репозиторий
// *pgxpool.Pool ему удовлетворяет, а в тестах его можно подменить
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// New создает и возвращает новый пул соединений с PostgreSQL
func New(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	const op = "repository.postgres.postgres.New"

	dsn := fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse pgx config: %w", op, err)
	}

	// настройка пула соединений
	poolConfig.MaxConns = 10
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create connection pool: %w", op, err)
	}

	// проверяем, что соединение установлено
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return dbpool, nil
}

// schema создаёт таблицу заказов, если её ещё нет; миграций у сервиса нет
const schema = `
CREATE TABLE IF NOT EXISTS orders (
  id             BIGSERIAL PRIMARY KEY,
  address        TEXT    NOT NULL,
  recipient_name TEXT    NOT NULL,
  active         BOOLEAN NOT NULL DEFAULT TRUE,
  status         TEXT    NOT NULL DEFAULT 'ORDER_RECEIVED'
    CHECK (status IN ('ORDER_RECEIVED', 'ORDER_PROCESSING', 'ORDER_OUT_FOR_DELIVERY', 'ORDER_SHIPPED')),
  items          JSONB   NOT NULL DEFAULT '[]'::jsonb
);
CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status);
CREATE INDEX IF NOT EXISTS orders_active_idx ON orders (active);
`

// EnsureSchema создаёт схему при старте процесса
func EnsureSchema(ctx context.Context, db DB) error {
	const op = "repository.postgres.postgres.EnsureSchema"

	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%s: failed to create schema: %w", op, err)
	}
	return nil
}
