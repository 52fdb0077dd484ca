package migrations

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const migrationsDir = "migrations"

// RunMigrations applies the SQL files in ./migrations through the postgres
// driver. A database that already carries the schema (the gifts table exists)
// but has no migrate metadata is baselined to the newest version first, so
// adopting migrate on a live deployment never replays the schema.
func RunMigrations(databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open DB: %w", err)
	}
	defer sqlDB.Close()

	driver, err := pg.WithInstance(sqlDB, &pg.Config{MigrationsTable: "schema_migrations_migrate"})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	baselineIfAdopting(sqlDB, m)

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration up failed: %w", err)
	}

	log.Printf("[MIGRATE] Schema is current")
	return nil
}

// baselineIfAdopting forces the migrate version to the newest migration file
// when the schema predates migrate itself: gifts table present, metadata
// table absent.
func baselineIfAdopting(sqlDB *sql.DB, m *migrate.Migrate) {
	var schemaExists bool
	row := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name='gifts')")
	if err := row.Scan(&schemaExists); err != nil || !schemaExists {
		return
	}

	var metaExists bool
	row = sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name='schema_migrations_migrate')")
	if err := row.Scan(&metaExists); err != nil || metaExists {
		return
	}

	latest := latestMigrationVersion(migrationsDir)
	if latest == 0 {
		return
	}
	log.Printf("[MIGRATE] Baseline to version %d (schema present, no migrate metadata)", latest)
	if err := m.Force(int(latest)); err != nil {
		log.Printf("[MIGRATE] Force to version %d failed: %v", latest, err)
	}
}

// latestMigrationVersion returns the highest numeric prefix among the
// migration files (000001_init.up.sql -> 1).
func latestMigrationVersion(dir string) int64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	var latest int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		prefix, _, found := strings.Cut(entry.Name(), "_")
		if !found {
			continue
		}
		v, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}
		if v > latest {
			latest = v
		}
	}
	return latest
}
