package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/i-reserve/room-reservation/internal/config"
)

// DB bundles the connection pool with the dialect it was opened for.
// Repositories write their SQL with '?' placeholders and rebind through
// the dialect before executing.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the configured store and verifies the connection.
func Open(ctx context.Context, cfg config.Config) (*DB, error) {
	dialect, err := DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	var driverName, dsn string
	switch dialect {
	case MySQL:
		driverName, dsn = "mysql", mysqlDSN(cfg)
	case Postgres:
		driverName, dsn = "pgx", postgresDSN(cfg)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}
	return &DB{DB: db, Dialect: dialect}, nil
}

// Wrap pairs an existing pool with a dialect; tests use it with sqlmock.
func Wrap(db *sql.DB, dialect Dialect) *DB {
	return &DB{DB: db, Dialect: dialect}
}

// mysqlDSN builds the DSN with parseTime so DATE columns scan into
// time.Time, and loc=UTC to keep dates stable across hosts.
func mysqlDSN(cfg config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPass
	mc.Net = "tcp"
	mc.Addr = cfg.DBHost + ":" + cfg.DBPort
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func postgresDSN(cfg config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     cfg.DBHost + ":" + cfg.DBPort,
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=disable&timezone=UTC",
	}
	if cfg.DBPass != "" {
		u.User = url.UserPassword(cfg.DBUser, cfg.DBPass)
	} else {
		u.User = url.User(cfg.DBUser)
	}
	return u.String()
}

// Rebind rewrites a '?' query for the pool's dialect.
func (db *DB) Rebind(query string) string { return db.Dialect.Rebind(query) }
