// Package records holds the queries shared by the SQLite and PostgreSQL
// stores. Statements are built with squirrel so the same code emits "?" or
// "$n" placeholders, and rows are scanned with sqlx.
package records

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/sirr/internal/migration"
)

// Queries runs the domain queries against one database handle.
type Queries struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// New wraps db for the given driver.
func New(db *sql.DB, driver migration.Driver) *Queries {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == migration.DriverPostgres {
		placeholder = sq.Dollar
	}
	return &Queries{
		db: sqlx.NewDb(db, string(driver)),
		sb: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// Timestamps are stored as RFC3339 text in both dialects.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
