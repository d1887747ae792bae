// Package migrations embeds SQL migration files into the binary, so the
// server can migrate its schema without the SQL files being present on disk.
package migrations

import (
	"embed"

	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS
}
