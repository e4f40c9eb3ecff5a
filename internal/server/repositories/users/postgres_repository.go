package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/common"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/dbx"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, name, avatar_url, role, created_at, updated_at FROM users
		 WHERE email = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, email, name, avatar_url, role, created_at, updated_at FROM users
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) SaveOrUpdate(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Email == "" {
		return nil, common.ErrorInvalidIdentity
	}

	query :=
		`INSERT INTO users (email, name, avatar_url)
         VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE
		 SET name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url, updated_at = now()
		 RETURNING id, role, created_at, updated_at
		 `

	out := *user
	err := r.db.QueryRowContext(ctx, query, user.Email, user.Name, user.AvatarURL).
		Scan(&out.ID, &out.Role, &out.CreatedAt, &out.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &out, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}
