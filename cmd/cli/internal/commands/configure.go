package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfeidau/pacsgate/cmd/cli/internal/config"
	"github.com/wolfeidau/pacsgate/internal/client"
)

type ConfigureCmd struct {
	Server string `help:"Server URL" required:""`
	Token  string `help:"Bearer token issued by 'pacsgate token'" required:"" env:"PACSGATE_TOKEN"`
	Verify bool   `help:"Check the token against the server before saving" default:"true" negatable:""`
}

func (c *ConfigureCmd) Run(ctx context.Context, globals *Globals) error {
	if !strings.HasPrefix(c.Server, "http://") && !strings.HasPrefix(c.Server, "https://") {
		return errors.New("server URL must start with http:// or https://")
	}

	cfg := &config.Config{ServerURL: strings.TrimRight(c.Server, "/"), Token: strings.TrimSpace(c.Token)}

	if c.Verify {
		cl := client.New(client.Config{ServerURL: cfg.ServerURL, Token: cfg.Token, Timeout: 30 * time.Second})
		me, err := cl.Me(ctx)
		if err != nil {
			return fmt.Errorf("failed to verify token: %w", err)
		}
		fmt.Printf("Authenticated as %s (%s)\n", me.Email, me.Role)
	}

	path, err := globals.configPath()
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Printf("Configuration saved to %s\n", path)
	return nil
}
