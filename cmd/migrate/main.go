// Command migrate applies or rolls back the SQL migrations of the history database.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pageza/recipesnap/backend/internal/database"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		rollback      bool
		migrationsDir string
		databaseURL   string
	)

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back history database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return errors.New("DATABASE_URL environment variable is not set")
			}

			db, err := sql.Open("postgres", databaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			if err := ensureMigrationsTable(db); err != nil {
				return err
			}
			if rollback {
				return rollbackLast(cmd, db, migrationsDir)
			}
			return applyAll(cmd, db, migrationsDir)
		},
	}

	cmd.Flags().BoolVar(&rollback, "rollback", false, "Rollback the last migration")
	cmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "directory holding the SQL migrations")
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	return cmd
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func applyAll(cmd *cobra.Command, db *sql.DB, dir string) error {
	files, err := database.MigrationFiles(dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, file := range files {
		var applied bool
		if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations WHERE name = $1)", file).Scan(&applied); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			fmt.Fprintf(out, "Migration already applied: %s\n", file)
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		err = inTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(string(content)); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", file, err)
			}
			if _, err := tx.Exec("INSERT INTO migrations (name) VALUES ($1)", file); err != nil {
				return fmt.Errorf("failed to record migration: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Successfully applied migration: %s\n", file)
	}

	fmt.Fprintln(out, "All migrations applied successfully.")
	return nil
}

func rollbackLast(cmd *cobra.Command, db *sql.DB, dir string) error {
	var name string
	err := db.QueryRow("SELECT name FROM migrations ORDER BY applied_at DESC, id DESC LIMIT 1").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("no migrations to rollback")
	}
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackPath := filepath.Join(dir, strings.TrimSuffix(name, ".sql")+database.RollbackSuffix)
	content, err := os.ReadFile(rollbackPath)
	if err != nil {
		return fmt.Errorf("failed to read rollback file: %w", err)
	}

	err = inTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute rollback: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM migrations WHERE name = $1", name); err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Successfully rolled back migration: %s\n", name)
	return nil
}

func inTx(db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
