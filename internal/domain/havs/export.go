package havs

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var CSVHeader = []string{
	"Week Ending", "Ganger", "Member Name", "Member Type", "Source", "Role",
	"Equipment", "Category", "Day", "Minutes", "Total Member Minutes", "Status", "Submitted At",
}

// ExportRow is one (member, equipment, day) cell with non-zero minutes.
type ExportRow struct {
	WeekEnding         Date       `json:"week_ending"`
	Ganger             string     `json:"ganger"`
	MemberName         string     `json:"member_name"`
	MemberType         string     `json:"member_type"`
	Source             string     `json:"source"`
	Role               string     `json:"role"`
	Equipment          string     `json:"equipment"`
	Category           string     `json:"category"`
	Day                Day        `json:"-"`
	DayName            string     `json:"day"`
	Minutes            int        `json:"minutes"`
	TotalMemberMinutes int        `json:"total_member_minutes"`
	Status             string     `json:"status"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
}

// ExportRows flattens a week into CSV rows, skipping empty cells.
func ExportRows(d *WeekDetails) []ExportRow {
	var rows []ExportRow
	for _, m := range d.Members {
		for _, e := range m.Entries {
			for _, day := range Days {
				minutes := e.Get(day)
				if minutes == 0 {
					continue
				}
				rows = append(rows, ExportRow{
					WeekEnding:         d.WeekEnding,
					Ganger:             d.GangerName,
					MemberName:         m.Name,
					MemberType:         m.PersonType,
					Source:             m.Source,
					Role:               m.Role,
					Equipment:          e.EquipmentName,
					Category:           e.Category,
					Day:                day,
					DayName:            day.String(),
					Minutes:            minutes,
					TotalMemberMinutes: m.TotalMinutes,
					Status:             d.Status,
					SubmittedAt:        d.SubmittedAt,
				})
			}
		}
	}
	return rows
}

func (r ExportRow) record() []string {
	submitted := ""
	if r.SubmittedAt != nil {
		submitted = r.SubmittedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		r.WeekEnding.String(),
		r.Ganger,
		r.MemberName,
		r.MemberType,
		r.Source,
		r.Role,
		r.Equipment,
		r.Category,
		r.DayName,
		strconv.Itoa(r.Minutes),
		strconv.Itoa(r.TotalMemberMinutes),
		r.Status,
		submitted,
	}
}

// WriteCSV writes the header and rows. Fields containing commas, quotes or
// newlines are double-quoted.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9\-]+`)

// ExportFilename builds e.g. "havs-john-smith-2024-06-09.csv".
func ExportFilename(d *WeekDetails) string {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(d.GangerName), " ", "-"))
	name = strings.Trim(unsafeFilename.ReplaceAllString(name, ""), "-")
	if name == "" {
		name = "ganger"
	}
	return fmt.Sprintf("havs-%s-%s.csv", name, d.WeekEnding)
}
