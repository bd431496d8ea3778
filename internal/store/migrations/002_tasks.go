package migrations

import (
	"context"
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 2,
		Name:    "create_tasks_table",
		Up:      createTasksTable,
	})
}

func createTasksTable(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			description TEXT NOT NULL,
			time_expr TEXT NOT NULL DEFAULT '',
			due_at DATETIME,
			language TEXT NOT NULL DEFAULT 'en',
			status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'fired')),
			created_at DATETIME NOT NULL,
			fired_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status_due ON tasks(status, due_at)`,
	)
}
