// Package functions hosts the privileged operations that span several tables.
package functions

import (
	"net/http"

	"fieldops-app/database"
	"fieldops-app/internal/api/apierr"
	usersapi "fieldops-app/internal/api/users"
	"fieldops-app/internal/domain/accounts"
	"fieldops-app/internal/domain/havs"
	"fieldops-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type startWeekRequest struct {
	GangerID           uint     `json:"ganger_id"`
	WeekEnding         string   `json:"week_ending" binding:"required"`
	CarryOverMemberIDs []string `json:"carry_over_member_ids"`
}

// POST /functions/start-havs-week
//
// Gangers start their own weeks. Admins may start one for any ganger.
func StartHavsWeek(c *gin.Context) {
	var body startWeekRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	weekEnding, err := havs.ParseDate(body.WeekEnding)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerEmployee := c.GetUint("employee_id")
	isAdmin := c.GetString("role") == users.RoleAdmin

	gangerID := body.GangerID
	switch {
	case gangerID == 0:
		gangerID = callerEmployee
	case gangerID != callerEmployee && !isAdmin:
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only start your own weeks"})
		return
	}
	if gangerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ganger_id is required"})
		return
	}

	week, err := havs.StartWeek(c.Request.Context(), database.DB, havs.StartWeekInput{
		GangerID:           gangerID,
		WeekEnding:         weekEnding,
		CarryOverMemberIDs: body.CarryOverMemberIDs,
	})
	if err != nil {
		apierr.Respond(c, err, "Failed to start week")
		return
	}

	zap.L().Info("havs week started",
		zap.String("week_id", week.ID),
		zap.Uint("ganger_id", gangerID),
		zap.String("week_ending", week.WeekEnding.String()),
		zap.Int("carried_over", len(week.Members)-1))
	c.JSON(http.StatusOK, gin.H{"week": week})
}

// POST /functions/add-employee
func AddEmployee(c *gin.Context) {
	var body accounts.NewEmployee
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp, err := accounts.CreateEmployeeAccount(c.Request.Context(), database.DB, body)
	if err != nil {
		apierr.Respond(c, err, "Failed to create employee")
		return
	}

	zap.L().Info("employee created", zap.Uint("employee_id", emp.ID), zap.String("role", emp.Role))
	c.JSON(http.StatusOK, gin.H{"employee": usersapi.BuildEmployeeDTO(*emp)})
}

type deleteUserRequest struct {
	EmployeeID uint `json:"employee_id"`
	UserID     uint `json:"user_id"`
}

// POST /functions/delete-user
func DeleteUser(c *gin.Context) {
	var body deleteUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if body.UserID != 0 && body.UserID == c.GetUint("user_id") ||
		body.EmployeeID != 0 && body.EmployeeID == c.GetUint("employee_id") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}

	if err := accounts.DeleteAccount(c.Request.Context(), database.DB, body.EmployeeID, body.UserID); err != nil {
		apierr.Respond(c, err, "Failed to delete user")
		return
	}

	zap.L().Info("account deleted", zap.Uint("employee_id", body.EmployeeID), zap.Uint("user_id", body.UserID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /functions/bootstrap-admin
func BootstrapAdmin(c *gin.Context) {
	var body accounts.NewEmployee
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp, err := accounts.BootstrapAdmin(c.Request.Context(), database.DB, body)
	if err != nil {
		apierr.Respond(c, err, "Failed to create admin")
		return
	}

	zap.L().Info("admin bootstrapped", zap.Uint("employee_id", emp.ID))
	c.JSON(http.StatusOK, gin.H{"employee": usersapi.BuildEmployeeDTO(*emp)})
}
