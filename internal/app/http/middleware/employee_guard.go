package middleware

import (
	"errors"
	"net/http"

	"fieldops-app/database"
	"fieldops-app/internal/domain/employees"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequireEmployee resolves the caller's employee profile and stores its id and
// role in the context. Accounts without a profile cannot use field routes.
func RequireEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var emp employees.Employee
		err := database.DB.WithContext(c.Request.Context()).Where("user_id = ?", userID).First(&emp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No employee profile for this account"})
			return
		}
		if err != nil {
			zap.L().Error("load employee profile", zap.Uint("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load employee profile"})
			return
		}

		c.Set("employee_id", emp.ID)
		c.Set("employee_role", emp.Role)
		c.Next()
	}
}
