package users

import (
	"fieldops-app/internal/domain/employees"
	"fieldops-app/internal/domain/users"
)

type MeResponse struct {
	User     UserDTO      `json:"user"`
	Employee *EmployeeDTO `json:"employee,omitempty"`
}

type UserDTO struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AuthProvider string `json:"auth_provider"`
}

type VehicleDTO struct {
	ID           uint   `json:"id"`
	Registration string `json:"registration"`
	Description  string `json:"description,omitempty"`
}

type EmployeeDTO struct {
	ID              uint        `json:"id"`
	UserID          uint        `json:"user_id"`
	Email           string      `json:"email,omitempty"`
	FirstName       string      `json:"first_name"`
	LastName        string      `json:"last_name"`
	Role            string      `json:"role"`
	AssignedVehicle *VehicleDTO `json:"assigned_vehicle,omitempty"`
}

func BuildUserDTO(u users.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, Role: u.Role, AuthProvider: u.AuthProvider}
}

// BuildEmployeeDTO expects User and AssignedVehicle to be preloaded when they
// should appear in the output.
func BuildEmployeeDTO(e employees.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:        e.ID,
		UserID:    e.UserID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Role:      e.Role,
	}
	if e.User != nil {
		dto.Email = e.User.Email
	}
	if e.AssignedVehicle != nil {
		dto.AssignedVehicle = &VehicleDTO{
			ID:           e.AssignedVehicle.ID,
			Registration: e.AssignedVehicle.Registration,
			Description:  e.AssignedVehicle.Description,
		}
	} else if e.AssignedVehicleID != nil {
		dto.AssignedVehicle = &VehicleDTO{ID: *e.AssignedVehicleID}
	}
	return dto
}
