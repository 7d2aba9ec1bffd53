// Package repomanager bundles repository construction behind one interface
// so that services can ask for repositories bound either to the shared
// *sql.DB or to a transaction handle.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/avoronins/inkpost/internal/dbx"
	"github.com/avoronins/inkpost/internal/server/repositories/articles"
	"github.com/avoronins/inkpost/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Articles(db dbx.DBTX) articles.Repository
}
