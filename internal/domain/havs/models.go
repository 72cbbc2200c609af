package havs

import (
	"encoding/json"
	"time"

	"fieldops-app/internal/domain/employees"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"

	PersonGanger    = "ganger"
	PersonOperative = "operative"

	// MaxOperatives caps the gang at three people including the ganger.
	MaxOperatives = 2

	// MaxDayMinutes is the most exposure that fits in one day.
	MaxDayMinutes = 24 * 60
)

type Week struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	GangerID uint                `gorm:"not null;uniqueIndex:idx_havs_weeks_ganger_week,priority:1" json:"ganger_id"`
	Ganger   *employees.Employee `gorm:"foreignKey:GangerID;constraint:OnDelete:RESTRICT;" json:"-"`

	WeekEnding Date `gorm:"type:date;not null;uniqueIndex:idx_havs_weeks_ganger_week,priority:2;index" json:"week_ending"`

	Status         string     `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	LastSavedAt    *time.Time `json:"last_saved_at,omitempty"`
	RevisionNumber int        `gorm:"not null;default:0" json:"revision_number"`
	Notes          string     `json:"notes,omitempty"`

	Members   []Member   `gorm:"foreignKey:WeekID;constraint:OnDelete:CASCADE;" json:"members,omitempty"`
	Revisions []Revision `gorm:"foreignKey:WeekID;constraint:OnDelete:CASCADE;" json:"revisions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Week) TableName() string { return "havs_weeks" }

func (w *Week) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

func (w Week) IsSubmitted() bool { return w.Status == StatusSubmitted }

// Member is one person on a week's gang. Exactly one of EmployeeID and
// ManualName is set.
type Member struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	WeekID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_havs_members_week_employee,priority:1" json:"week_id"`

	PersonType string              `gorm:"type:varchar(20);not null" json:"person_type"`
	EmployeeID *uint               `gorm:"uniqueIndex:idx_havs_members_week_employee,priority:2" json:"employee_id,omitempty"`
	Employee   *employees.Employee `gorm:"constraint:OnDelete:SET NULL;" json:"-"`
	ManualName *string             `json:"manual_name,omitempty"`
	Role       string              `json:"role,omitempty"`

	Entries []Entry `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE;" json:"entries,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Member) TableName() string { return "havs_week_members" }

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// DisplayName prefers the linked employee's name over the manual entry.
func (m Member) DisplayName() string {
	if m.Employee != nil {
		return m.Employee.FullName()
	}
	if m.ManualName != nil {
		return *m.ManualName
	}
	return ""
}

func (m Member) Source() string {
	if m.EmployeeID != nil {
		return "employee"
	}
	return "manual"
}

// Entry holds one member's minutes on one piece of equipment across the week.
// (member_id, equipment_name) is the natural key saves upsert against.
type Entry struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	WeekID   string `gorm:"type:uuid;not null;index" json:"week_id"`
	MemberID string `gorm:"type:uuid;not null;uniqueIndex:idx_havs_entries_member_equipment,priority:1" json:"member_id"`

	EquipmentName string `gorm:"not null;uniqueIndex:idx_havs_entries_member_equipment,priority:2" json:"equipment_name"`
	Category      string `gorm:"not null" json:"category"`

	DayMinutes `gorm:"embedded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Entry) TableName() string { return "havs_exposure_entries" }

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// Revision is an append-only snapshot taken when a week is submitted.
type Revision struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	WeekID         string          `gorm:"type:uuid;not null;uniqueIndex:idx_havs_revisions_week_number,priority:1" json:"week_id"`
	RevisionNumber int             `gorm:"not null;uniqueIndex:idx_havs_revisions_week_number,priority:2" json:"revision_number"`
	Notes          string          `json:"notes,omitempty"`
	Snapshot       json.RawMessage `gorm:"type:jsonb;not null" json:"snapshot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Revision) TableName() string { return "havs_revisions" }

func (r *Revision) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// Revisions are never edited or removed once written.
func (r *Revision) BeforeUpdate(tx *gorm.DB) error { return ErrRevisionImmutable }
func (r *Revision) BeforeDelete(tx *gorm.DB) error { return ErrRevisionImmutable }
