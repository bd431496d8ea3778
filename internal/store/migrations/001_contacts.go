package migrations

import (
	"context"
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "create_contacts_table",
		Up:      createContactsTable,
	})
}

func createContactsTable(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx,
		`CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone_number TEXT NOT NULL DEFAULT '',
			variations TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name COLLATE NOCASE)`,
	)
}
