package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	connectcors "connectrpc.com/cors"
	"connectrpc.com/otelconnect"
	"github.com/rs/cors"
	"github.com/wolfeidau/pacsgate/internal/audit"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/gateway"
	httpmiddleware "github.com/wolfeidau/pacsgate/internal/http"
	"github.com/wolfeidau/pacsgate/internal/logger"
	"github.com/wolfeidau/pacsgate/internal/pacs"
	"github.com/wolfeidau/pacsgate/internal/server"
	"github.com/wolfeidau/pacsgate/internal/telemetry"
)

type ServeCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"PACSGATE_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"PACSGATE_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"PACSGATE_TLS_KEY"`

	TrustProxyHeaders bool `help:"take the audited client address from X-Forwarded-For/X-Real-IP (only behind a proxy that sets them)" default:"false" env:"PACSGATE_TRUST_PROXY_HEADERS"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"PACSGATE_CORS_ORIGINS"`

	// Telemetry
	Tracing          bool    `help:"enable tracing and metrics export" default:"false" env:"PACSGATE_TRACING"`
	TraceSampleRatio float64 `help:"fraction of traces recorded" default:"1.0" env:"PACSGATE_TRACE_SAMPLE_RATIO"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"PACSGATE_STORE_TYPE" enum:"memory,postgres"`
	Seed          bool               `help:"load demo data on startup (memory store only)" default:"false" env:"PACSGATE_SEED"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`

	Token TokenFlags `embed:"" prefix:"token-"`
	PACS  PACSFlags  `embed:"" prefix:"pacs-"`
}

func (c *ServeCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	tokens, err := c.Token.tokens()
	if err != nil {
		return err
	}
	if err := c.PACS.Validate(); err != nil {
		return err
	}

	// Setup telemetry if enabled
	interceptors := []connect.Interceptor{logger.NewConnectRequests(log)}
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName: "pacsgate-server",
			Version:     globals.Version,
			SampleRatio: c.TraceSampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
		otelInterceptor, err := otelconnect.NewInterceptor()
		if err != nil {
			return fmt.Errorf("failed to create OTEL interceptor: %w", err)
		}
		interceptors = append(interceptors, otelInterceptor)
	}

	stores, closeStores, err := openStores(ctx, log, c.StoreType, &c.PostgresStore)
	if err != nil {
		return err
	}
	defer closeStores()

	gw := gateway.New(stores, audit.NewRecorder(stores.Audit))
	if c.PACS.Enabled() {
		gw.WithPACS(pacs.NewBridge(c.PACS.config()), pacs.NewIndexer())
		log.Info().Str("cache_dir", c.PACS.CacheDir).Bool("move", c.PACS.MoveCommand != "").Msg("PACS bridge enabled")
	} else {
		log.Warn().Msg("No PACS query command configured, PACS procedures are disabled")
	}

	if c.Seed {
		if c.StoreType != storeMemory {
			return errors.New("--seed is only supported with the memory store, use the seed command for postgres")
		}
		master, err := seedDemo(ctx, stores, defaultMasterEmail)
		if err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		token, err := tokens.Issue(master.ID)
		if err != nil {
			return err
		}
		log.Warn().Str("email", master.Email).Str("token", token).Msg("Demo data loaded, master token for development only")
	}

	handler := server.NewServer(gw).Handler(auth.Middleware(tokens, stores.Users), interceptors...)
	handler = httpmiddleware.ClientMetadataMiddleware(c.TrustProxyHeaders)(withCORS(c.CORSOrigins, handler))

	srv := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		if c.Cert != "" && c.Key != "" {
			log.Info().Str("addr", c.Listen).Msg("Starting HTTPS server")
			errCh <- srv.ListenAndServeTLS(c.Cert, c.Key)
			return
		}
		log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// withCORS adds CORS support to a Connect HTTP handler.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: connectcors.AllowedMethods(),
		AllowedHeaders: append(connectcors.AllowedHeaders(), "Authorization"),
		ExposedHeaders: append(connectcors.ExposedHeaders(), logger.RequestIDHeader),
	})
	return middleware.Handler(h)
}
