package pacs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	consolestream "github.com/wolfeidau/console-stream"
)

var studyUIDPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// ValidStudyUID reports whether uid is a well formed DICOM UID.
func ValidStudyUID(uid string) bool {
	return len(uid) <= 64 && studyUIDPattern.MatchString(uid)
}

// Move runs the C-MOVE helper for a single study, streaming its output to the log.
// Files land in a per-study directory below the configured cache directory.
func (b *Bridge) Move(ctx context.Context, ep Endpoint, studyUID string) (*MoveResult, error) {
	argv := strings.Fields(b.cfg.MoveCommand)
	if len(argv) == 0 || b.cfg.CacheDir == "" {
		return nil, &ProcessError{Op: "move", Kind: ErrNotConfigured, Reason: "no move command or cache directory"}
	}
	if !ValidStudyUID(studyUID) {
		return nil, ErrInvalidStudyUID
	}

	dir := filepath.Join(b.cfg.CacheDir, studyUID)

	payload, err := json.Marshal(moveRequest{
		PACSHost:         ep.Host,
		PACSPort:         ep.Port,
		PACSAETitle:      ep.AETitle,
		LocalAETitle:     ep.LocalAETitle,
		StudyInstanceUID: studyUID,
		CacheDir:         dir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode move request: %w", err)
	}

	logger := zerolog.Ctx(ctx).With().Str("study_instance_uid", studyUID).Str("pacs_host", ep.Host).Logger()

	runCtx, cancel := context.WithTimeout(ctx, b.cfg.MoveTimeout)
	defer cancel()

	args := append(argv[1:len(argv):len(argv)], string(payload))
	process := consolestream.NewProcess(argv[0], args,
		consolestream.WithPipeMode(),
		consolestream.WithFlushInterval(time.Second),
	)

	var output bytes.Buffer
	started := time.Now()
	exitCode := -1

stream:
	for event, err := range process.ExecuteAndStream(runCtx) {
		if err != nil {
			if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
				return nil, &ProcessError{
					Op:       "move",
					Kind:     ErrTimeout,
					Reason:   fmt.Sprintf("no result within %s", b.cfg.MoveTimeout),
					ExitCode: -1,
				}
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &ProcessError{Op: "move", Kind: ErrProcessFailed, Reason: err.Error(), ExitCode: -1}
		}

		switch e := event.Event.(type) {
		case *consolestream.ProcessStart:
			logger.Debug().Int("pid", e.PID).Msg("PACS move helper started")

		case *consolestream.OutputData:
			output.Write(e.Data)
			logger.Debug().Int("bytes", len(e.Data)).Msg("PACS move helper output")

		case *consolestream.ProcessEnd:
			exitCode = e.ExitCode
			logger.Debug().Int("exit_code", e.ExitCode).Dur("duration", e.Duration).Msg("PACS move helper finished")
			break stream

		default:
			logger.Debug().Str("event", event.String()).Msg("Unhandled PACS move helper event")
		}
	}

	duration := time.Since(started)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, &ProcessError{Op: "move", Kind: ErrTimeout, Reason: fmt.Sprintf("no result within %s", b.cfg.MoveTimeout), ExitCode: -1}
	}

	resp, decodeErr := parseMoveOutput(output.Bytes())

	if exitCode != 0 {
		reason := fmt.Sprintf("exit code %d", exitCode)
		if decodeErr == nil && resp.Error != "" {
			reason = resp.Error
		}
		return nil, &ProcessError{Op: "move", Kind: ErrProcessFailed, Reason: reason, ExitCode: exitCode, Stderr: truncate(output.String(), stderrLimit)}
	}
	if decodeErr != nil {
		return nil, &ProcessError{Op: "move", Kind: ErrMalformedResponse, Reason: decodeErr.Error()}
	}
	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "unspecified error"
		}
		return nil, &ProcessError{Op: "move", Kind: ErrRemote, Reason: reason}
	}

	if resp.CacheDir != "" {
		dir = resp.CacheDir
	}

	logger.Info().Int("file_count", resp.FileCount).Dur("duration", duration).Msg("PACS move completed")

	return &MoveResult{
		StudyInstanceUID: studyUID,
		FileCount:        resp.FileCount,
		Dir:              dir,
		Duration:         duration,
	}, nil
}

// parseMoveOutput decodes the last JSON object line in the helper output.
// Helpers may print progress lines before the result.
func parseMoveOutput(output []byte) (*moveResponse, error) {
	var last []byte
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) > 0 && line[0] == '{' {
			last = append(last[:0], line...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if last == nil {
		return nil, errors.New("no JSON result line in output")
	}

	resp := &moveResponse{}
	if err := json.Unmarshal(last, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
