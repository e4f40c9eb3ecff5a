package users

import (
	"context"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/models"
)

// Repository is the user directory. Lookups of an absent user return
// common.ErrorNotFound.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// SaveOrUpdate inserts the user or, when the email is already taken,
	// refreshes its profile fields. The stored row is returned.
	SaveOrUpdate(ctx context.Context, user *models.User) (*models.User, error)
}
