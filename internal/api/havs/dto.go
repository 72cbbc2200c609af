package havs

import (
	"fieldops-app/internal/domain/havs"
)

type entriesRequest struct {
	Entries []havs.EntryInput `json:"entries" binding:"required,dive"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// addMemberRequest carries exactly one of EmployeeID and ManualName.
type addMemberRequest struct {
	EmployeeID *uint   `json:"employee_id"`
	ManualName *string `json:"manual_name"`
}

type MemberDTO struct {
	ID         string  `json:"id"`
	WeekID     string  `json:"week_id"`
	PersonType string  `json:"person_type"`
	EmployeeID *uint   `json:"employee_id,omitempty"`
	ManualName *string `json:"manual_name,omitempty"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Source     string  `json:"source"`
}

func toMemberDTO(m havs.Member) MemberDTO {
	return MemberDTO{
		ID:         m.ID,
		WeekID:     m.WeekID,
		PersonType: m.PersonType,
		EmployeeID: m.EmployeeID,
		ManualName: m.ManualName,
		Name:       m.DisplayName(),
		Role:       m.Role,
		Source:     m.Source(),
	}
}

type OperativeDTO struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type WeekEndingDTO struct {
	Date       havs.Date `json:"date"`
	WeekEnding havs.Date `json:"week_ending"`
}
