// Package repomanager vends the SQL repositories bound to a connection or a
// transaction and runs the schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Products(db dbx.DBTX) products.Repository
}
