package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/sirr/internal/models"
)

type progressRow struct {
	Day         int            `db:"day"`
	Completed   bool           `db:"completed"`
	CompletedAt sql.NullString `db:"completed_at"`
}

func (r progressRow) toModel() (models.DayProgress, error) {
	at, err := parseNullTime(r.CompletedAt)
	if err != nil {
		return models.DayProgress{}, fmt.Errorf("day %d: %w", r.Day, err)
	}
	return models.DayProgress{Day: r.Day, Completed: r.Completed, CompletedAt: at}, nil
}

func (q *Queries) GetProgress(ctx context.Context, day int) (models.DayProgress, error) {
	query, args, err := q.sb.Select("day", "completed", "completed_at").
		From("day_progress").
		Where("day = ?", day).
		ToSql()
	if err != nil {
		return models.DayProgress{}, err
	}

	var row progressRow
	if err := q.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DayProgress{Day: day}, nil
		}
		return models.DayProgress{}, fmt.Errorf("failed to read progress for day %d: %w", day, err)
	}
	return row.toModel()
}

func (q *Queries) ListProgress(ctx context.Context) ([]models.DayProgress, error) {
	query, args, err := q.sb.Select("day", "completed", "completed_at").
		From("day_progress").
		OrderBy("day").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []progressRow
	if err := q.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	out := make([]models.DayProgress, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (q *Queries) MarkCompleted(ctx context.Context, day int, at time.Time) error {
	query, args, err := q.sb.Insert("day_progress").
		Columns("day", "completed", "completed_at").
		Values(day, true, formatTime(at)).
		Suffix("ON CONFLICT (day) DO UPDATE SET completed = excluded.completed, " +
			"completed_at = COALESCE(day_progress.completed_at, excluded.completed_at)").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark day %d completed: %w", day, err)
	}
	return nil
}

func (q *Queries) ResetProgress(ctx context.Context) error {
	query, args, err := q.sb.Delete("day_progress").ToSql()
	if err != nil {
		return err
	}
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}
