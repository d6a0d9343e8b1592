package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/authn"
	"connectrpc.com/connect"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// UserLookup loads the user named by a token subject.
type UserLookup interface {
	Get(ctx context.Context, id int64) (*models.User, error)
}

// NewAuthFunc returns an authn.AuthFunc that validates bearer tokens and resolves the
// principal from the user store. Inactive or deleted users are rejected.
func NewAuthFunc(tokens *Tokens, users UserLookup) authn.AuthFunc {
	return func(ctx context.Context, req authn.Request) (any, error) {
		tokenStr, ok := bearerToken(req.Header())
		if !ok {
			return nil, authn.Errorf("missing bearer token")
		}

		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			log.Debug().Err(err).Msg("Bearer token rejected")
			return nil, authn.Errorf("invalid token")
		}

		user, err := users.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return nil, authn.Errorf("unknown user")
			}
			log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load principal")
			if errors.Is(err, store.ErrUnavailable) {
				return nil, connect.NewError(connect.CodeUnavailable, errors.New("identity lookup unavailable"))
			}
			return nil, connect.NewError(connect.CodeInternal, errors.New("identity lookup failed"))
		}

		if !user.IsActive {
			log.Warn().Int64("user_id", userID).Msg("Inactive user presented a token")
			return nil, authn.Errorf("user is inactive")
		}

		return PrincipalFromUser(user), nil
	}
}

func bearerToken(h http.Header) (string, bool) {
	tok, ok := strings.CutPrefix(h.Get("Authorization"), "Bearer ")
	tok = strings.TrimSpace(tok)
	return tok, ok && tok != ""
}

// Middleware wraps handlers so every request carries an authenticated principal.
func Middleware(tokens *Tokens, users UserLookup) func(http.Handler) http.Handler {
	mw := authn.NewMiddleware(NewAuthFunc(tokens, users))
	return mw.Wrap
}
