package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wolfeidau/pacsgate/internal/audit"
	"github.com/wolfeidau/pacsgate/internal/gateway"
	"github.com/wolfeidau/pacsgate/internal/logger"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// TokenCmd signs a user in and prints a bearer token. It stands in for the identity
// provider in deployments that do not have one.
type TokenCmd struct {
	Email  string `help:"email of the user"`
	UserID int64  `help:"ID of the user"`

	Token         TokenFlags         `embed:"" prefix:"token-"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *TokenCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx = log.WithContext(ctx)

	if (c.Email == "") == (c.UserID == 0) {
		return errors.New("exactly one of --email or --user-id is required")
	}

	tokens, err := c.Token.tokens()
	if err != nil {
		return err
	}

	stores, closeStores, err := openStores(ctx, log, storePostgres, &c.PostgresStore)
	if err != nil {
		return err
	}
	defer closeStores()

	userID := c.UserID
	if c.Email != "" {
		user, err := findUserByEmail(ctx, stores.Users, c.Email)
		if err != nil {
			return err
		}
		userID = user.ID
	}

	gw := gateway.New(stores, audit.NewRecorder(stores.Audit))
	user, err := gw.SignIn(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to sign in user %d: %w", userID, err)
	}

	token, err := tokens.Issue(user.ID)
	if err != nil {
		return err
	}

	log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("Issued token")
	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}

func findUserByEmail(ctx context.Context, users store.UserStore, email string) (*models.User, error) {
	all, err := users.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range all {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("no user with email " + email)
}
