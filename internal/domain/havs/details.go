package havs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type EntryDetails struct {
	EquipmentName string `json:"equipment_name"`
	Category      string `json:"category"`
	DayMinutes
	TotalMinutes int `json:"total_minutes"`
}

type MemberDetails struct {
	ID           string         `json:"id"`
	PersonType   string         `json:"person_type"`
	EmployeeID   *uint          `json:"employee_id,omitempty"`
	ManualName   *string        `json:"manual_name,omitempty"`
	Name         string         `json:"name"`
	Role         string         `json:"role"`
	Source       string         `json:"source"`
	Entries      []EntryDetails `json:"entries"`
	TotalMinutes int            `json:"total_minutes"`
}

type RevisionSummary struct {
	RevisionNumber int       `json:"revision_number"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// WeekDetails is the full nested view of a week: members, their entries,
// revisions and the computed totals.
type WeekDetails struct {
	ID             string            `json:"id"`
	GangerID       uint              `json:"ganger_id"`
	GangerName     string            `json:"ganger_name"`
	WeekEnding     Date              `json:"week_ending"`
	Status         string            `json:"status"`
	SubmittedAt    *time.Time        `json:"submitted_at,omitempty"`
	LastSavedAt    *time.Time        `json:"last_saved_at,omitempty"`
	RevisionNumber int               `json:"revision_number"`
	Notes          string            `json:"notes,omitempty"`
	Members        []MemberDetails   `json:"members"`
	Revisions      []RevisionSummary `json:"revisions"`
	TotalMinutes   int               `json:"total_minutes"`
}

func (d *WeekDetails) IsSubmitted() bool { return d.Status == StatusSubmitted }

func (d *WeekDetails) Member(id string) *MemberDetails {
	for i := range d.Members {
		if d.Members[i].ID == id {
			return &d.Members[i]
		}
	}
	return nil
}

// LoadDetails reads a week regardless of owner. Admin views use it.
func LoadDetails(ctx context.Context, db *gorm.DB, weekID string) (*WeekDetails, error) {
	return loadDetails(db.WithContext(ctx), weekID)
}

// LoadOwnedDetails reads a week only if gangerID owns it.
func LoadOwnedDetails(ctx context.Context, db *gorm.DB, gangerID uint, weekID string) (*WeekDetails, error) {
	tx := db.WithContext(ctx)
	if _, err := loadOwnedWeek(tx, gangerID, weekID); err != nil {
		return nil, err
	}
	return loadDetails(tx, weekID)
}

func loadDetails(tx *gorm.DB, weekID string) (*WeekDetails, error) {
	var w Week
	err := tx.
		Preload("Ganger").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("CASE WHEN person_type = 'ganger' THEN 0 ELSE 1 END, created_at ASC, id ASC")
		}).
		Preload("Members.Employee").
		Preload("Members.Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("category ASC, equipment_name ASC")
		}).
		Preload("Revisions", func(db *gorm.DB) *gorm.DB {
			return db.Order("revision_number ASC")
		}).
		First(&w, "id = ?", weekID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load week details: %w", err)
	}
	return buildDetails(w), nil
}

func buildDetails(w Week) *WeekDetails {
	d := &WeekDetails{
		ID:             w.ID,
		GangerID:       w.GangerID,
		WeekEnding:     w.WeekEnding,
		Status:         w.Status,
		SubmittedAt:    w.SubmittedAt,
		LastSavedAt:    w.LastSavedAt,
		RevisionNumber: w.RevisionNumber,
		Notes:          w.Notes,
		Members:        make([]MemberDetails, 0, len(w.Members)),
		Revisions:      make([]RevisionSummary, 0, len(w.Revisions)),
	}
	if w.Ganger != nil {
		d.GangerName = w.Ganger.FullName()
	}

	for _, m := range w.Members {
		md := MemberDetails{
			ID:         m.ID,
			PersonType: m.PersonType,
			EmployeeID: m.EmployeeID,
			ManualName: m.ManualName,
			Name:       m.DisplayName(),
			Role:       m.Role,
			Source:     m.Source(),
			Entries:    make([]EntryDetails, 0, len(m.Entries)),
		}
		for _, e := range m.Entries {
			total := e.DayMinutes.Total()
			md.Entries = append(md.Entries, EntryDetails{
				EquipmentName: e.EquipmentName,
				Category:      e.Category,
				DayMinutes:    e.DayMinutes,
				TotalMinutes:  total,
			})
			md.TotalMinutes += total
		}
		d.TotalMinutes += md.TotalMinutes
		d.Members = append(d.Members, md)
	}

	for _, r := range w.Revisions {
		d.Revisions = append(d.Revisions, RevisionSummary{
			RevisionNumber: r.RevisionNumber,
			Notes:          r.Notes,
			CreatedAt:      r.CreatedAt,
		})
	}
	return d
}
