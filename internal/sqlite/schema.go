package sqlite

import (
	"fmt"
	"strings"
)

// Each logical collection is one SQLite table keyed by document name.
// The document column holds the BSON encoding of a types.Document; rowid
// gives a stable insertion order for Select.
const (
	createCollection = `CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    document BLOB NOT NULL,
    updated_at TEXT NOT NULL
);`

	selectDocuments = `SELECT document FROM %s ORDER BY rowid`

	upsertDocument = `INSERT INTO %s (name, document, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`

	updateDocument = `UPDATE %s SET document = ?, updated_at = ? WHERE name = ?`

	deleteDocument = `DELETE FROM %s WHERE name = ? RETURNING document`
)

// Pragmas applied once per connection.
var connectPragmas = []string{
	`PRAGMA busy_timeout = 5000`,
	`PRAGMA foreign_keys = ON`,
}

// quoteIdent quotes a table name for use in SQL text.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// stmt renders a statement template for the given table.
func stmt(tmpl, table string) string {
	return fmt.Sprintf(tmpl, quoteIdent(table))
}
