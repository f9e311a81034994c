package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/AhmedTrying/malaysiasafd/internal/config"
	_ "github.com/lib/pq"
)

// connectAttempts bounds how long startup waits for PostgreSQL to come up
const connectAttempts = 5

// Database wraps the SQL database connection
type Database struct {
	DB *sql.DB
}

// DSN builds a postgres connection URL. Credentials are escaped, so
// passwords may contain any character.
func DSN(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

// New opens the connection pool and waits until the server answers
func New(cfg *config.DatabaseConfig) (*Database, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	var pingErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		ctx, cancel := getContext(5 * time.Second)
		pingErr = db.PingContext(ctx)
		cancel()
		if pingErr == nil {
			return &Database{DB: db}, nil
		}
		if attempt < connectAttempts {
			slog.Warn("Database not ready, retrying", "attempt", attempt, "error", pingErr)
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("failed to ping database after %d attempts: %w", connectAttempts, pingErr)
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.DB.Close()
}

// HealthCheck pings the database
func (d *Database) HealthCheck() error {
	ctx, cancel := getContext(5 * time.Second)
	defer cancel()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
