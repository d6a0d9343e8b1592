package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/pacs"
)

// TokenFlags configures bearer token signing.
type TokenFlags struct {
	Secret string        `help:"HMAC secret used to sign bearer tokens" env:"PACSGATE_TOKEN_SECRET"`
	TTL    time.Duration `help:"bearer token lifetime" default:"12h" env:"PACSGATE_TOKEN_TTL"`
}

func (t *TokenFlags) Validate() error {
	if t.Secret == "" {
		return errors.New("token secret is required (--token-secret or PACSGATE_TOKEN_SECRET)")
	}
	if len(t.Secret) < auth.MinSecretLength {
		return fmt.Errorf("token secret must be at least %d bytes (256 bits) for HMAC-SHA256", auth.MinSecretLength)
	}
	return nil
}

func (t *TokenFlags) tokens() (*auth.Tokens, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return auth.NewTokens([]byte(t.Secret), t.TTL)
}

// PACSFlags configures the PACS helper processes. The PACS procedures are disabled
// when no query command is set.
type PACSFlags struct {
	QueryCommand string        `help:"command performing C-FIND, request JSON on stdin" env:"PACSGATE_PACS_QUERY_COMMAND"`
	MoveCommand  string        `help:"command performing C-MOVE, request JSON as last argument" env:"PACSGATE_PACS_MOVE_COMMAND"`
	QueryTimeout time.Duration `help:"C-FIND timeout" default:"30s" env:"PACSGATE_PACS_QUERY_TIMEOUT"`
	MoveTimeout  time.Duration `help:"C-MOVE timeout" default:"10m" env:"PACSGATE_PACS_MOVE_TIMEOUT"`
	CacheDir     string        `help:"directory receiving retrieved studies" default:"/var/cache/pacsgate/dicom" env:"PACSGATE_PACS_CACHE_DIR"`
}

func (p *PACSFlags) Enabled() bool {
	return p.QueryCommand != ""
}

func (p *PACSFlags) Validate() error {
	if !p.Enabled() {
		return nil
	}
	if p.QueryTimeout <= 0 || p.MoveTimeout <= 0 {
		return errors.New("pacs timeouts must be positive")
	}
	if p.MoveCommand != "" && p.CacheDir == "" {
		return errors.New("pacs cache dir is required when a move command is set (--pacs-cache-dir)")
	}
	return nil
}

func (p *PACSFlags) config() pacs.Config {
	return pacs.Config{
		QueryCommand: p.QueryCommand,
		MoveCommand:  p.MoveCommand,
		QueryTimeout: p.QueryTimeout,
		MoveTimeout:  p.MoveTimeout,
		CacheDir:     p.CacheDir,
	}
}
