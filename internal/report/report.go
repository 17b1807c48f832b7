// Package report exports journey progress and prayer history to a
// spreadsheet.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/models"
)

const (
	JourneySheet = "Journey"
	PrayersSheet = "Prayers"
)

var (
	journeyHeader = []interface{}{"Day", "Completed", "Completed At"}
	prayersHeader = []interface{}{"Date", "Prayer", "Arabic", "Time", "Status", "Offered At", "Notification", "Offset (min)"}
)

// Data is everything written to the workbook.
type Data struct {
	Progress []models.DayProgress
	Prayers  []models.Prayer
	Location *time.Location // for Completed At; nil means UTC
}

// Build returns a workbook with one row per curriculum day and one row per
// prayer record.
func Build(data Data) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", JourneySheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(PrayersSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeJourney(f, data); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write %s sheet: %w", JourneySheet, err)
	}
	if err := writePrayers(f, data.Prayers); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write %s sheet: %w", PrayersSheet, err)
	}
	return f, nil
}

// Write builds the workbook and saves it to path.
func Write(path string, data Data) error {
	f, err := Build(data)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func writeJourney(f *excelize.File, data Data) error {
	loc := data.Location
	if loc == nil {
		loc = time.UTC
	}
	byDay := make(map[int]models.DayProgress, len(data.Progress))
	for _, p := range data.Progress {
		byDay[p.Day] = p
	}

	if err := f.SetSheetRow(JourneySheet, "A1", &journeyHeader); err != nil {
		return err
	}
	for day := 1; day <= constants.TotalDays; day++ {
		p := byDay[day]
		completedAt := ""
		if p.Completed && p.CompletedAt != nil {
			completedAt = p.CompletedAt.In(loc).Format("2006-01-02 15:04")
		}
		row := []interface{}{day, yesNo(p.Completed), completedAt}
		cell, err := excelize.CoordinatesToCellName(1, day+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(JourneySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writePrayers(f *excelize.File, prayers []models.Prayer) error {
	if err := f.SetSheetRow(PrayersSheet, "A1", &prayersHeader); err != nil {
		return err
	}
	sorted := append([]models.Prayer(nil), prayers...)
	models.SortPrayers(sorted)

	for i, p := range sorted {
		offeredAt, _ := p.Status.OfferedAt()
		row := []interface{}{
			p.Date,
			string(p.Name),
			p.NameArabic,
			p.Time,
			p.Status.String(),
			offeredAt,
			onOff(p.NotificationEnabled),
			p.NotificationOffset,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(PrayersSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
