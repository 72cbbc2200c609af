package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fieldops-app/database"
	"fieldops-app/internal/api/apierr"
	havsapi "fieldops-app/internal/api/havs"
	usersapi "fieldops-app/internal/api/users"
	"fieldops-app/internal/domain/employees"
	"fieldops-app/internal/domain/havs"
	"fieldops-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func parseOptionalDate(c *gin.Context, key string) (havs.Date, bool) {
	raw := c.Query(key)
	if raw == "" {
		return "", true
	}
	d, err := havs.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": key + ": " + err.Error()})
		return "", false
	}
	return d, true
}

// GET /admin/havs/overview?week_ending=&from=&to=&status=&format=xlsx
func WeeklyOverview(c *gin.Context) {
	f := havs.OverviewFilter{Status: c.Query("status")}
	var ok bool
	if f.WeekEnding, ok = parseOptionalDate(c, "week_ending"); !ok {
		return
	}
	if f.From, ok = parseOptionalDate(c, "from"); !ok {
		return
	}
	if f.To, ok = parseOptionalDate(c, "to"); !ok {
		return
	}
	if f.Status != "" && f.Status != havs.StatusDraft && f.Status != havs.StatusSubmitted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be draft or submitted"})
		return
	}

	rows, err := havs.EmployerWeeklyOverview(c.Request.Context(), database.DB, f)
	if err != nil {
		apierr.Respond(c, err, "Failed to load overview")
		return
	}

	if c.Query("format") == "xlsx" {
		buf, err := overviewWorkbook(rows)
		if err != nil {
			apierr.Respond(c, err, "Failed to build workbook")
			return
		}
		name := "havs-overview.xlsx"
		if f.WeekEnding != "" {
			name = "havs-overview-" + f.WeekEnding.String() + ".xlsx"
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, gin.H{"weeks": rows})
}

// GET /admin/havs/compliance?from=&to=&format=xlsx
func WeeklyCompliance(c *gin.Context) {
	from, ok := parseOptionalDate(c, "from")
	if !ok {
		return
	}
	to, ok := parseOptionalDate(c, "to")
	if !ok {
		return
	}
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	rows, err := havs.WeeklyCompliance(c.Request.Context(), database.DB, from, to)
	if err != nil {
		apierr.Respond(c, err, "Failed to load compliance")
		return
	}

	if c.Query("format") == "xlsx" {
		buf, err := complianceWorkbook(rows)
		if err != nil {
			apierr.Respond(c, err, "Failed to build workbook")
			return
		}
		c.Header("Content-Disposition", `attachment; filename="havs-compliance-`+from.String()+`-`+to.String()+`.xlsx"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GET /admin/havs/weeks/:id
func GetWeek(c *gin.Context) {
	d, err := havs.LoadDetails(c.Request.Context(), database.DB, c.Param("id"))
	if err != nil {
		apierr.Respond(c, err, "Failed to load week")
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /admin/havs/weeks/:id/export.csv
func ExportWeek(c *gin.Context) {
	d, err := havs.LoadDetails(c.Request.Context(), database.DB, c.Param("id"))
	if err != nil {
		apierr.Respond(c, err, "Failed to load week")
		return
	}
	havsapi.WriteExport(c, d)
}

// GET /admin/employees
func ListEmployees(c *gin.Context) {
	q := database.DB.Preload("User").Preload("AssignedVehicle").Order("last_name ASC, first_name ASC")
	if role := c.Query("role"); role != "" {
		normalized, ok := employees.NormalizeRole(role)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		q = q.Where("role = ?", normalized)
	}

	var list []employees.Employee
	if err := q.Find(&list).Error; err != nil {
		zap.L().Error("list employees", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load employees"})
		return
	}

	out := make([]usersapi.EmployeeDTO, 0, len(list))
	for _, e := range list {
		out = append(out, usersapi.BuildEmployeeDTO(e))
	}
	c.JSON(http.StatusOK, gin.H{"employees": out})
}

type updateEmployeeRequest struct {
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	Role              *string `json:"role"`
	AssignedVehicleID *uint   `json:"assigned_vehicle_id"`
	ClearVehicle      bool    `json:"clear_vehicle"`
}

// PUT /admin/employees/:id
func UpdateEmployee(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return
	}
	var body updateEmployeeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if body.FirstName != nil {
		v := strings.TrimSpace(*body.FirstName)
		if v == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "first_name cannot be empty"})
			return
		}
		updates["first_name"] = v
	}
	if body.LastName != nil {
		v := strings.TrimSpace(*body.LastName)
		if v == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "last_name cannot be empty"})
			return
		}
		updates["last_name"] = v
	}
	if body.Role != nil {
		role, ok := employees.NormalizeRole(*body.Role)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		updates["role"] = role
	}
	switch {
	case body.ClearVehicle:
		updates["assigned_vehicle_id"] = nil
	case body.AssignedVehicleID != nil:
		var n int64
		if err := database.DB.Model(&employees.Vehicle{}).Where("id = ?", *body.AssignedVehicleID).Count(&n).Error; err != nil || n == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown vehicle"})
			return
		}
		updates["assigned_vehicle_id"] = *body.AssignedVehicleID
	}

	var emp employees.Employee
	if err := database.DB.First(&emp, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load employee"})
		return
	}

	if len(updates) > 0 {
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&emp).Updates(updates).Error; err != nil {
				return err
			}
			role, changed := updates["role"].(string)
			if !changed {
				return nil
			}
			// the login role follows the employee role
			userRole := users.RoleUser
			if role == employees.RoleAdmin {
				userRole = users.RoleAdmin
			}
			return tx.Model(&users.User{}).Where("id = ?", emp.UserID).Update("role", userRole).Error
		})
		if err != nil {
			zap.L().Error("update employee", zap.Uint("employee_id", emp.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update employee"})
			return
		}
	}

	if err := database.DB.Preload("User").Preload("AssignedVehicle").First(&emp, emp.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load employee"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": usersapi.BuildEmployeeDTO(emp)})
}

// GET /admin/vehicles
func ListVehicles(c *gin.Context) {
	var list []employees.Vehicle
	if err := database.DB.Order("registration ASC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vehicles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": list})
}

// POST /admin/vehicles
func CreateVehicle(c *gin.Context) {
	var body struct {
		Registration string `json:"registration" binding:"required"`
		Description  string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v := employees.Vehicle{
		Registration: strings.ToUpper(strings.Join(strings.Fields(body.Registration), " ")),
		Description:  strings.TrimSpace(body.Description),
	}
	if v.Registration == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "registration is required"})
		return
	}
	if err := database.DB.Create(&v).Error; err != nil {
		if havs.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Vehicle already exists"})
			return
		}
		zap.L().Error("create vehicle", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}
	c.JSON(http.StatusCreated, v)
}
