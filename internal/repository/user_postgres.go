package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jaekwang-park/todo-app/internal/model"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUser(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// GetOrCreate returns the user row for a Cognito subject, inserting it on
// first sign-in and refreshing the stored email otherwise.
func (r *PostgresUserRepository) GetOrCreate(ctx context.Context, cognitoSub, email string) (model.User, error) {
	query := `
		INSERT INTO users (cognito_sub, email)
		VALUES ($1, $2)
		ON CONFLICT (cognito_sub) DO UPDATE SET email = EXCLUDED.email, updated_at = now()
		RETURNING id, cognito_sub, email, created_at, updated_at`

	return scanUser(r.db.QueryRowContext(ctx, query, cognitoSub, email))
}

func (r *PostgresUserRepository) GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error) {
	query := `
		SELECT id, cognito_sub, email, created_at, updated_at
		FROM users
		WHERE cognito_sub = $1`

	return scanUser(r.db.QueryRowContext(ctx, query, cognitoSub))
}

func scanUser(row scannable) (model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.CognitoSub, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return model.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
