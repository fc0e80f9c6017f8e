package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/glowbook/booking-api/internal/httperr"
	"github.com/glowbook/booking-api/internal/httpresp"
	"github.com/glowbook/booking-api/internal/middleware"
	"github.com/glowbook/booking-api/internal/models"
)

type SpecialistHandler struct {
	db *gorm.DB
}

func NewSpecialistHandler(db *gorm.DB) *SpecialistHandler {
	return &SpecialistHandler{db: db}
}

// ======================================================
// PUBLIC: SEARCH / GET
// ======================================================

func (h *SpecialistHandler) List(c *gin.Context) {
	speciality := strings.TrimSpace(strings.ToLower(c.Query("speciality")))
	location := strings.TrimSpace(strings.ToLower(c.Query("location")))
	minRatingStr := c.Query("min_rating")

	q := h.db.Preload("User")

	if speciality != "" {
		q = q.Where("LOWER(speciality) LIKE ?", "%"+speciality+"%")
	}

	if location != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+location+"%")
	}

	if minRatingStr != "" {
		minRating, err := strconv.ParseFloat(minRatingStr, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_min_rating", "Invalid minimum rating.")
			return
		}
		q = q.Where("rating >= ?", minRating)
	}

	var specialists []models.Specialist
	if err := q.Order("id ASC").Find(&specialists).Error; err != nil {
		httperr.Internal(c, "failed_to_list_specialists", "Could not list specialists.")
		return
	}

	httpresp.List(c, specialists)
}

func (h *SpecialistHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var sp models.Specialist
	if err := h.db.
		Preload("User").
		Preload("PortfolioImages").
		First(&sp, id).Error; err != nil {
		httperr.NotFound(c, "specialist_not_found", "Specialist not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"specialist": sp})
}

// ======================================================
// PRIVATE: PROFILE
// ======================================================

type UpdateSpecialistRequest struct {
	Speciality  *string  `json:"speciality"`
	Bio         *string  `json:"bio"`
	Location    *string  `json:"location"`
	Pricing     *float64 `json:"pricing"`
	OpeningTime *string  `json:"opening_time"`
	ClosingTime *string  `json:"closing_time"`
	Timezone    *string  `json:"timezone"`
}

func (h *SpecialistHandler) UpdateMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var sp models.Specialist
	if err := h.db.Where("user_id = ?", userID).First(&sp).Error; err != nil {
		httperr.NotFound(c, "specialist_profile_not_found", "Specialist profile not found.")
		return
	}

	var req UpdateSpecialistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid profile payload.")
		return
	}

	if req.Speciality != nil {
		sp.Speciality = strings.TrimSpace(*req.Speciality)
	}
	if req.Bio != nil {
		sp.Bio = *req.Bio
	}
	if req.Location != nil {
		sp.Location = *req.Location
	}
	if req.Pricing != nil {
		sp.Pricing = *req.Pricing
	}
	if req.OpeningTime != nil {
		sp.OpeningTime = *req.OpeningTime
	}
	if req.ClosingTime != nil {
		sp.ClosingTime = *req.ClosingTime
	}
	if req.Timezone != nil {
		sp.Timezone = *req.Timezone
	}

	if !validWindow(sp.OpeningTime, sp.ClosingTime) {
		httperr.BadRequest(c, "invalid_working_window", "Opening time must be before closing time.")
		return
	}

	if err := h.db.Save(&sp).Error; err != nil {
		httperr.Internal(c, "failed_to_update_specialist", "Could not update profile.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"specialist": sp})
}

// ======================================================
// SERVICES
// ======================================================

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	DurationMin int     `json:"duration_min" binding:"required,gt=0"`
	Price       float64 `json:"price"`
}

func (h *SpecialistHandler) ListServices(c *gin.Context) {
	speciality := strings.TrimSpace(strings.ToLower(c.Query("speciality")))

	q := h.db.Where("active = true")
	if speciality != "" {
		q = q.Where("LOWER(speciality) = ?", speciality)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	httpresp.List(c, services)
}

// CreateService lets a specialist publish a service in their own speciality
// category.
func (h *SpecialistHandler) CreateService(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var sp models.Specialist
	if err := h.db.Where("user_id = ?", userID).First(&sp).Error; err != nil {
		httperr.NotFound(c, "specialist_profile_not_found", "Specialist profile not found.")
		return
	}

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid service payload.")
		return
	}

	svc := models.Service{
		Speciality:  sp.Speciality,
		Name:        req.Name,
		Description: req.Description,
		DurationMin: req.DurationMin,
		Price:       req.Price,
		Active:      true,
	}

	if err := h.db.Create(&svc).Error; err != nil {
		httperr.Internal(c, "failed_to_create_service", "Could not create service.")
		return
	}

	c.JSON(http.StatusCreated, svc)
}

func validWindow(opening, closing string) bool {
	open, err := time.Parse("15:04", opening)
	if err != nil {
		return false
	}
	closeT, err := time.Parse("15:04", closing)
	if err != nil {
		return false
	}
	return open.Before(closeT)
}
