package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/sirr/internal/models"
)

type alarmRow struct {
	Slot          int            `db:"slot"`
	Token         string         `db:"token"`
	Prayer        string         `db:"prayer"`
	NameArabic    string         `db:"name_arabic"`
	BaseTime      string         `db:"base_time"`
	OffsetMinutes int            `db:"offset_minutes"`
	FireAt        string         `db:"fire_at"`
	Title         string         `db:"title"`
	Message       string         `db:"message"`
	DeliveredAt   sql.NullString `db:"delivered_at"`
}

// SaveAlarm installs a at its slot, replacing whatever was there.
func (q *Queries) SaveAlarm(ctx context.Context, a models.Alarm) error {
	query, args, err := q.sb.Insert("alarms").
		Columns("slot", "token", "prayer", "name_arabic", "base_time", "offset_minutes",
			"fire_at", "title", "message", "delivered_at").
		Values(a.Slot, a.Token, a.Prayer, a.NameArabic, a.BaseTime, a.OffsetMinutes,
			formatTime(a.FireAt), a.Title, a.Message, nullTime(a.DeliveredAt)).
		Suffix("ON CONFLICT (slot) DO UPDATE SET " +
			"token = excluded.token, prayer = excluded.prayer, name_arabic = excluded.name_arabic, " +
			"base_time = excluded.base_time, offset_minutes = excluded.offset_minutes, " +
			"fire_at = excluded.fire_at, title = excluded.title, message = excluded.message, " +
			"delivered_at = excluded.delivered_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save alarm %d: %w", a.Slot, err)
	}
	return nil
}

func (q *Queries) DeleteAlarm(ctx context.Context, slot int) error {
	query, args, err := q.sb.Delete("alarms").Where(sq.Eq{"slot": slot}).ToSql()
	if err != nil {
		return err
	}
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete alarm %d: %w", slot, err)
	}
	return nil
}

func (q *Queries) GetAlarms(ctx context.Context) ([]models.Alarm, error) {
	query, args, err := q.sb.Select("slot", "token", "prayer", "name_arabic", "base_time", "offset_minutes",
		"fire_at", "title", "message", "delivered_at").
		From("alarms").
		OrderBy("fire_at", "slot").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []alarmRow
	if err := q.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list alarms: %w", err)
	}

	out := make([]models.Alarm, 0, len(rows))
	for _, r := range rows {
		fireAt, err := parseTime(r.FireAt)
		if err != nil {
			return nil, fmt.Errorf("alarm %d: %w", r.Slot, err)
		}
		delivered, err := parseNullTime(r.DeliveredAt)
		if err != nil {
			return nil, fmt.Errorf("alarm %d: %w", r.Slot, err)
		}
		out = append(out, models.Alarm{
			Slot:          r.Slot,
			Token:         r.Token,
			Prayer:        r.Prayer,
			NameArabic:    r.NameArabic,
			BaseTime:      r.BaseTime,
			OffsetMinutes: r.OffsetMinutes,
			FireAt:        fireAt,
			Title:         r.Title,
			Message:       r.Message,
			DeliveredAt:   delivered,
		})
	}
	return out, nil
}

func (q *Queries) MarkAlarmDelivered(ctx context.Context, token string, at time.Time) (bool, error) {
	query, args, err := q.sb.Update("alarms").
		Set("delivered_at", formatTime(at)).
		Where(sq.Eq{"token": token, "delivered_at": nil}).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to mark alarm delivered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
