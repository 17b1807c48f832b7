package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage"
)

var prayerColumns = []string{
	"date", "name", "name_arabic", "time", "status", "offered_at",
	"notification_enabled", "notification_offset", "fiqh_method", "updated_at",
}

type prayerRow struct {
	Date                string         `db:"date"`
	Name                string         `db:"name"`
	NameArabic          string         `db:"name_arabic"`
	Time                string         `db:"time"`
	Status              string         `db:"status"`
	OfferedAt           sql.NullString `db:"offered_at"`
	NotificationEnabled bool           `db:"notification_enabled"`
	NotificationOffset  int            `db:"notification_offset"`
	FiqhMethod          int            `db:"fiqh_method"`
	UpdatedAt           string         `db:"updated_at"`
}

func (r prayerRow) toModel() (models.Prayer, error) {
	name, ok := models.ParsePrayerName(r.Name)
	if !ok {
		return models.Prayer{}, fmt.Errorf("unknown prayer %q stored for %s", r.Name, r.Date)
	}
	status, err := models.ParseStatus(r.Status, r.OfferedAt.String)
	if err != nil {
		return models.Prayer{}, fmt.Errorf("%s %s: %w", r.Date, r.Name, err)
	}
	updated, err := parseTime(r.UpdatedAt)
	if err != nil {
		return models.Prayer{}, err
	}
	return models.Prayer{
		Name:                name,
		NameArabic:          r.NameArabic,
		Date:                r.Date,
		Time:                r.Time,
		Status:              status,
		NotificationEnabled: r.NotificationEnabled,
		NotificationOffset:  r.NotificationOffset,
		FiqhMethod:          r.FiqhMethod,
		UpdatedAt:           updated,
	}, nil
}

func (q *Queries) selectPrayers(ctx context.Context, where sq.Sqlizer) ([]models.Prayer, error) {
	builder := q.sb.Select(prayerColumns...).From("prayers").OrderBy("date")
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []prayerRow
	if err := q.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query prayers: %w", err)
	}

	out := make([]models.Prayer, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	models.SortPrayers(out)
	return out, nil
}

func (q *Queries) GetPrayers(ctx context.Context, date string) ([]models.Prayer, error) {
	return q.selectPrayers(ctx, sq.Eq{"date": date})
}

func (q *Queries) ListPrayers(ctx context.Context) ([]models.Prayer, error) {
	return q.selectPrayers(ctx, nil)
}

func (q *Queries) GetPrayer(ctx context.Context, date string, name models.PrayerName) (models.Prayer, error) {
	query, args, err := q.sb.Select(prayerColumns...).
		From("prayers").
		Where(sq.Eq{"date": date, "name": string(name)}).
		ToSql()
	if err != nil {
		return models.Prayer{}, err
	}

	var row prayerRow
	if err := q.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Prayer{}, fmt.Errorf("%s on %s: %w", name, date, storage.ErrNotFound)
		}
		return models.Prayer{}, fmt.Errorf("failed to read %s on %s: %w", name, date, err)
	}
	return row.toModel()
}

func (q *Queries) SavePrayer(ctx context.Context, p models.Prayer) error {
	offeredAt, _ := p.Status.OfferedAt()
	query, args, err := q.sb.Insert("prayers").
		Columns(prayerColumns...).
		Values(
			p.Date, string(p.Name), p.NameArabic, p.Time, string(p.Status.Kind()), nullString(offeredAt),
			p.NotificationEnabled, p.NotificationOffset, p.FiqhMethod, formatTime(p.UpdatedAt),
		).
		Suffix("ON CONFLICT (date, name) DO UPDATE SET " +
			"name_arabic = excluded.name_arabic, time = excluded.time, status = excluded.status, " +
			"offered_at = excluded.offered_at, notification_enabled = excluded.notification_enabled, " +
			"notification_offset = excluded.notification_offset, fiqh_method = excluded.fiqh_method, " +
			"updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save %s on %s: %w", p.Name, p.Date, err)
	}
	return nil
}

// DeletePrayersBefore removes every record dated strictly before date.
func (q *Queries) DeletePrayersBefore(ctx context.Context, date string) (int64, error) {
	query, args, err := q.sb.Delete("prayers").Where(sq.Lt{"date": date}).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete prayers before %s: %w", date, err)
	}
	return res.RowsAffected()
}
