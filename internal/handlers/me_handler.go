package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/glowbook/booking-api/internal/httperr"
	"github.com/glowbook/booking-api/internal/middleware"
	"github.com/glowbook/booking-api/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	resp := gin.H{"user": user}

	if user.Role == middleware.RoleSpecialist {
		var sp models.Specialist
		if err := h.db.
			Preload("PortfolioImages").
			Where("user_id = ?", userID).
			First(&sp).Error; err == nil {
			resp["specialist"] = sp
		}
	}

	c.JSON(http.StatusOK, resp)
}
