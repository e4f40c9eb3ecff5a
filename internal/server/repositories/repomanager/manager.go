package repomanager

import (
	"context"
	"database/sql"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/dbx"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
