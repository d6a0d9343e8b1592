package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

const userColumns = `id, unit_id, open_id, name, email, role, is_active, created_at, updated_at, last_signed_in`

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Create inserts a user and fills in its generated ID and timestamps.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			unit_id, open_id, name, email, role, is_active, last_signed_in
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING id, created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		user.UnitID,
		user.OpenID,
		user.Name,
		user.Email,
		string(user.Role),
		user.IsActive,
		user.LastSignedIn,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapPostgresError(err))
	}

	log.Debug().
		Int64("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("Created user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", mapPostgresError(err))
	}

	return user, nil
}

// List returns users of one unit, or every user when unitID is nil.
func (s *UserStore) List(ctx context.Context, unitID *int64) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE $1::bigint IS NULL OR unit_id = $1
		ORDER BY name, id
	`

	rows, err := s.pool.Query(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", mapPostgresError(err))
	}

	return users, nil
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			unit_id = $2,
			open_id = $3,
			name = $4,
			email = $5,
			role = $6,
			is_active = $7,
			last_signed_in = $8,
			updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		user.ID,
		user.UnitID,
		user.OpenID,
		user.Name,
		user.Email,
		string(user.Role),
		user.IsActive,
		user.LastSignedIn,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", mapPostgresError(err))
	}

	log.Debug().
		Int64("user_id", user.ID).
		Msg("Updated user")

	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user models.User
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.UnitID,
		&user.OpenID,
		&user.Name,
		&user.Email,
		&role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastSignedIn,
	)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return &user, nil
}
