package store

import (
	"context"
	"database/sql"
	"embed"

	"github.com/luxfi/vaultdb/vaulterr"
)

//go:embed schema.sql
var schemaFS embed.FS

func initSchema(ctx context.Context, db *sql.DB) error {
	ddl, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return vaulterr.Wrap(vaulterr.Internal, "store.initSchema", err)
	}
	if _, err := db.ExecContext(ctx, string(ddl)); err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "store.initSchema", err)
	}
	return nil
}
