package database

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"woodeoo-auth/pkg/utils"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations through database/sql, which
// goose requires.
func Migrate(config utils.DatabaseConfig) error {
	db, err := sql.Open("pgx", DSN(config))
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
