package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/robalobadob/tusmo/assets"
	"github.com/robalobadob/tusmo/internal/database"
)

// openDatabase opens the SQLite file at path and brings its schema up to date.
func openDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(ctx, db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
