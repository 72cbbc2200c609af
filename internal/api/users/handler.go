package users

import (
	"errors"
	"net/http"

	"fieldops-app/database"
	"fieldops-app/internal/domain/employees"
	"fieldops-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GET /me
func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	resp := MeResponse{User: BuildUserDTO(user)}

	var emp employees.Employee
	err := database.DB.Preload("AssignedVehicle").Where("user_id = ?", user.ID).First(&emp).Error
	switch {
	case err == nil:
		emp.User = &user
		dto := BuildEmployeeDTO(emp)
		resp.Employee = &dto
	case !errors.Is(err, gorm.ErrRecordNotFound):
		zap.L().Error("load employee for /me", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
