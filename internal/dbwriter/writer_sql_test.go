//go:build sqltest
// +build sqltest

package dbwriter

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-txdb"
	_ "github.com/lib/pq" // PostgreSQL driver
)

func init() {
	txdb.Register("txdb", "postgres", "user=test password=test dbname=test host=/var/run/postgresql sslmode=disable")
}

// TestSchemaApplies executes each schema file inside a rolled-back
// transaction to catch SQL syntax errors without mutating the database.
func TestSchemaApplies(t *testing.T) {
	schemaDir := "../../db/schema"

	files, err := os.ReadDir(schemaDir)
	if err != nil {
		t.Fatalf("failed to read schema directory: %v", err)
	}

	for _, file := range files {
		if filepath.Ext(file.Name()) == ".sql" {
			t.Run(file.Name(), func(t *testing.T) {
				db, err := sql.Open("txdb", file.Name())
				if err != nil {
					t.Fatalf("failed to open database: %v", err)
				}
				defer db.Close()

				content, err := os.ReadFile(filepath.Join(schemaDir, file.Name()))
				if err != nil {
					t.Fatalf("failed to read schema file: %v", err)
				}

				tx, err := db.Begin()
				if err != nil {
					t.Fatalf("failed to begin transaction: %v", err)
				}
				defer tx.Rollback()

				if _, err := tx.Exec(string(content)); err != nil {
					t.Errorf("schema failed: %v", err)
				}
			})
		}
	}
}
