package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"storefront/api/apperr"
	"storefront/api/models"
)

type UserStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(db *sql.DB, log *zap.Logger) *UserStore {
	return &UserStore{db: db, log: log}
}

const userColumns = `id, name, email, username, hashed_password, role, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Username,
		&user.HashedPassword,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// CreateUser inserts a new user. A duplicate email or username is a
// validation error.
func (s *UserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, username, hashed_password, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	created, err := scanUser(s.db.QueryRowContext(ctx, query, user.Name, user.Email, user.Username, user.HashedPassword, user.Role))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Validation("Email or username already registered")
		}
		return nil, storeError("Failed to register user", fmt.Errorf("create user: %w", err))
	}

	s.log.Info("User created", zap.Int64("user_id", created.ID), zap.String("email", created.Email))
	return created, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, storeError("Failed to get user", fmt.Errorf("get user by id: %w", err))
	}
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, storeError("Failed to get user", fmt.Errorf("get user by email: %w", err))
	}
	return user, nil
}

// GetUserByIdentifier matches either the email or the username.
func (s *UserStore) GetUserByIdentifier(ctx context.Context, email, username string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $2 LIMIT 1`, email, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, storeError("Failed to get user", fmt.Errorf("get user by identifier: %w", err))
	}
	return user, nil
}

func (s *UserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, storeError("Failed to list users", fmt.Errorf("list users: %w", err))
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, storeError("Failed to list users", fmt.Errorf("scan user: %w", err))
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("Failed to list users", fmt.Errorf("iterate users: %w", err))
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of update. Password must already be
// hashed into HashedPassword.
func (s *UserStore) UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.Username != nil {
		add("username", *update.Username)
	}
	if update.Role != nil {
		add("role", *update.Role)
	}
	if update.HashedPassword != nil {
		add("hashed_password", update.HashedPassword)
	}
	if len(sets) == 0 {
		return s.GetUserByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`, strings.Join(sets, ", "), len(args), userColumns)
	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		if isUniqueViolation(err) {
			return nil, apperr.Validation("Email or username already in use")
		}
		return nil, storeError("Failed to update user", fmt.Errorf("update user %d: %w", id, err))
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
