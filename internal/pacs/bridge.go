package pacs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	DefaultQueryTimeout = 30 * time.Second
	DefaultMoveTimeout  = 10 * time.Minute

	// stderrLimit bounds how much helper stderr is kept for logs.
	stderrLimit = 4096
)

// Config configures the helper processes.
type Config struct {
	// QueryCommand runs C-FIND, e.g. "python3 /opt/pacsgate/dicom_query.py".
	QueryCommand string
	// MoveCommand runs C-MOVE, e.g. "python3 /opt/pacsgate/dicom_move.py".
	MoveCommand string

	QueryTimeout time.Duration
	MoveTimeout  time.Duration

	// CacheDir is where retrieved studies are written, one directory per study.
	CacheDir string
}

// Bridge runs the PACS helper processes.
type Bridge struct {
	cfg Config
}

// NewBridge creates a bridge, applying default timeouts.
func NewBridge(cfg Config) *Bridge {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.MoveTimeout <= 0 {
		cfg.MoveTimeout = DefaultMoveTimeout
	}
	return &Bridge{cfg: cfg}
}

// Query runs the C-FIND helper synchronously. It is never retried; on timeout the helper is killed.
func (b *Bridge) Query(ctx context.Context, ep Endpoint, filters Filters) (*QueryResult, error) {
	argv := strings.Fields(b.cfg.QueryCommand)
	if len(argv) == 0 {
		return nil, &ProcessError{Op: "query", Kind: ErrNotConfigured, Reason: "no query command"}
	}

	payload, err := json.Marshal(queryRequest{
		PACSHost:     ep.Host,
		PACSPort:     ep.Port,
		PACSAETitle:  ep.AETitle,
		LocalAETitle: ep.LocalAETitle,
		Filters:      filters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query request: %w", err)
	}

	logger := zerolog.Ctx(ctx).With().Str("pacs_host", ep.Host).Str("pacs_ae_title", ep.AETitle).Logger()

	runCtx, cancel := context.WithTimeout(ctx, b.cfg.QueryTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	// #nosec G204 - command comes from operator configuration, request travels on stdin
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	started := time.Now()
	runErr := cmd.Run()
	duration := time.Since(started)

	stderrText := truncate(stderr.String(), stderrLimit)
	if stderrText != "" {
		logger.Debug().Str("stderr", stderrText).Msg("PACS query helper stderr")
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, &ProcessError{
			Op:       "query",
			Kind:     ErrTimeout,
			Reason:   fmt.Sprintf("no response within %s", b.cfg.QueryTimeout),
			ExitCode: -1,
			Stderr:   stderrText,
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var resp queryResponse
	decodeErr := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &resp)

	if runErr != nil {
		pe := &ProcessError{Op: "query", Kind: ErrProcessFailed, Reason: runErr.Error(), ExitCode: -1, Stderr: stderrText}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			pe.ExitCode = exitErr.ExitCode()
			pe.Reason = fmt.Sprintf("exit code %d", pe.ExitCode)
			if decodeErr == nil && resp.Error != "" {
				pe.Reason = resp.Error
			}
		}
		return nil, pe
	}

	if decodeErr != nil {
		return nil, &ProcessError{Op: "query", Kind: ErrMalformedResponse, Reason: decodeErr.Error(), Stderr: stderrText}
	}

	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "unspecified error"
		}
		if resp.Details != "" {
			reason += " (" + resp.Details + ")"
		}
		return nil, &ProcessError{Op: "query", Kind: ErrRemote, Reason: reason, Stderr: stderrText}
	}

	studies := resp.Studies
	if studies == nil {
		studies = []StudyRecord{}
	}

	logger.Info().
		Int("count", len(studies)).
		Dur("duration", duration).
		Msg("PACS query completed")

	return &QueryResult{Studies: studies, Duration: duration}, nil
}

// truncate keeps at most the last limit bytes of s, starting on a rune boundary.
func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	start := len(s) - limit
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
