package admin

import (
	"bytes"
	"fmt"
	"time"

	"fieldops-app/internal/domain/havs"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var overviewHeader = []interface{}{
	"Week Ending", "Ganger", "Status", "Members", "Total Minutes", "Total Hours", "Revision", "Submitted At", "Last Saved At",
}

var complianceHeader = []interface{}{"Week Ending", "Ganger", "Status", "Total Minutes"}

func overviewWorkbook(rows []havs.WeekSummary) (*bytes.Buffer, error) {
	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		data = append(data, []interface{}{
			r.WeekEnding.String(),
			r.GangerName,
			r.Status,
			r.MemberCount,
			r.TotalMinutes,
			float64(r.TotalMinutes) / 60,
			r.RevisionNumber,
			formatTime(r.SubmittedAt),
			formatTime(r.LastSavedAt),
		})
	}
	return singleSheet("Overview", overviewHeader, data)
}

func complianceWorkbook(rows []havs.ComplianceRow) (*bytes.Buffer, error) {
	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		data = append(data, []interface{}{r.WeekEnding.String(), r.GangerName, r.Status, r.TotalMinutes})
	}
	return singleSheet("Compliance", complianceHeader, data)
}

func singleSheet(name string, header []interface{}, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(name, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
