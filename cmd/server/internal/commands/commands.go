package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/pacsgate/internal/store"
	memorystore "github.com/wolfeidau/pacsgate/internal/store/memory"
	postgresstore "github.com/wolfeidau/pacsgate/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString     string        `help:"PostgreSQL connection string" env:"PACSGATE_POSTGRES_CONNECTION_STRING"`
	ConnectTimeout time.Duration `help:"how long to keep retrying the initial connection" default:"1m" env:"PACSGATE_POSTGRES_CONNECT_TIMEOUT"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"PACSGATE_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or PACSGATE_POSTGRES_CONNECTION_STRING)")
	}
	if s.MinConns > s.MaxConns {
		return fmt.Errorf("postgres min conns (%d) exceeds max conns (%d)", s.MinConns, s.MaxConns)
	}
	return nil
}

func (s *PostgresStoreFlags) poolConfig() *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
	}
}

// openStores returns the stores for storeType and a function releasing them.
func openStores(ctx context.Context, log zerolog.Logger, storeType string, pg *PostgresStoreFlags) (store.Stores, func(), error) {
	switch storeType {
	case storePostgres:
		if err := pg.Validate(); err != nil {
			return store.Stores{}, nil, err
		}

		pool, err := postgresstore.ConnectWithRetry(ctx, pg.poolConfig(), pg.ConnectTimeout)
		if err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}

		if pg.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return store.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Msg("Database migrations completed")
		}

		log.Info().Msg("Using PostgreSQL stores with shared connection pool")
		return postgresstore.NewStores(pool), pool.Close, nil

	default:
		log.Info().Msg("Using in-memory stores")
		return memorystore.NewStores(), func() {}, nil
	}
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	// Create HTTP server
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      15 * time.Minute, // PACS downloads are synchronous
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
