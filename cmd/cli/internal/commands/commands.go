package commands

import (
	"fmt"
	"time"

	"connectrpc.com/otelconnect"
	"github.com/wolfeidau/pacsgate/cmd/cli/internal/config"
	"github.com/wolfeidau/pacsgate/internal/client"
)

type Globals struct {
	Debug      bool
	Version    string
	ConfigPath string
}

func (g *Globals) configPath() (string, error) {
	if g.ConfigPath != "" {
		return g.ConfigPath, nil
	}
	return config.DefaultPath()
}

// newClient builds an authenticated client from the stored config.
func newClient(globals *Globals, timeout time.Duration) (*client.Client, error) {
	path, err := globals.configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	otelInterceptor, err := otelconnect.NewInterceptor()
	if err != nil {
		return nil, fmt.Errorf("failed to create interceptor: %w", err)
	}

	return client.New(client.Config{
		ServerURL: cfg.ServerURL,
		Token:     cfg.Token,
		Timeout:   timeout,
		Debug:     globals.Debug,
	}, otelInterceptor), nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
