package records

import (
	"context"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/models"
)

// GetRamadanStatus reads the journey state kept in the settings table. Missing
// keys read as inactive with pointer 0.
func (q *Queries) GetRamadanStatus(ctx context.Context) (models.RamadanStatus, error) {
	query, args, err := q.sb.Select("key", "value").
		From("settings").
		Where(sq.Eq{"key": []string{constants.SettingRamadanActive, constants.SettingCurrentDay}}).
		ToSql()
	if err != nil {
		return models.RamadanStatus{}, err
	}

	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := q.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return models.RamadanStatus{}, fmt.Errorf("failed to read ramadan status: %w", err)
	}

	var status models.RamadanStatus
	for _, r := range rows {
		switch r.Key {
		case constants.SettingRamadanActive:
			status.Active = r.Value == "true"
		case constants.SettingCurrentDay:
			day, err := strconv.Atoi(r.Value)
			if err != nil {
				return models.RamadanStatus{}, fmt.Errorf("parsing current_day: %w", err)
			}
			status.CurrentDay = day
		}
	}
	return status, nil
}

func (q *Queries) SaveRamadanStatus(ctx context.Context, status models.RamadanStatus) error {
	tx, err := q.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	values := map[string]string{
		constants.SettingRamadanActive: strconv.FormatBool(status.Active),
		constants.SettingCurrentDay:    strconv.Itoa(status.CurrentDay),
	}
	for key, value := range values {
		query, args, err := q.sb.Insert("settings").
			Columns("key", "value").
			Values(key, value).
			Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value").
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}
	return tx.Commit()
}
