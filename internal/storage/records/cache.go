package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/sirr/internal/storage"
)

func (q *Queries) GetCache(ctx context.Context, key string) (string, time.Time, error) {
	query, args, err := q.sb.Select("value", "updated_at").
		From("cache").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", time.Time{}, err
	}

	var row struct {
		Value     string `db:"value"`
		UpdatedAt string `db:"updated_at"`
	}
	if err := q.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, fmt.Errorf("cache %q: %w", key, storage.ErrNotFound)
		}
		return "", time.Time{}, fmt.Errorf("failed to read cache %q: %w", key, err)
	}
	updated, err := parseTime(row.UpdatedAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return row.Value, updated, nil
}

func (q *Queries) PutCache(ctx context.Context, key, value string, at time.Time) error {
	query, args, err := q.sb.Insert("cache").
		Columns("key", "value", "updated_at").
		Values(key, value, formatTime(at)).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to write cache %q: %w", key, err)
	}
	return nil
}

func (q *Queries) MarkViewed(ctx context.Context, day int, kind string, at time.Time) error {
	query, args, err := q.sb.Insert("viewed_content").
		Columns("day", "kind", "viewed_at").
		Values(day, kind, formatTime(at)).
		Suffix("ON CONFLICT (day, kind) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark day %d %s viewed: %w", day, kind, err)
	}
	return nil
}

func (q *Queries) IsViewed(ctx context.Context, day int, kind string) (bool, error) {
	query, args, err := q.sb.Select("COUNT(*)").
		From("viewed_content").
		Where(sq.Eq{"day": day, "kind": kind}).
		ToSql()
	if err != nil {
		return false, err
	}
	var count int
	if err := q.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("failed to read viewed state: %w", err)
	}
	return count > 0, nil
}
