package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/glowbook/booking-api/internal/cache"
	domain "github.com/glowbook/booking-api/internal/domain/booking"
	"github.com/glowbook/booking-api/internal/httperr"
	"github.com/glowbook/booking-api/internal/middleware"
	"github.com/glowbook/booking-api/internal/models"
	"github.com/glowbook/booking-api/internal/payments"
	"github.com/glowbook/booking-api/internal/timezone"
	ucbooking "github.com/glowbook/booking-api/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db *gorm.DB

	requestUC      *ucbooking.RequestBooking
	availabilityUC *ucbooking.GetAvailability
	cancelUC       *ucbooking.CancelBooking
	statusUC       *ucbooking.UpdateBookingStatus
	scheduleUC     *ucbooking.ListSchedule

	cache    *cache.AvailabilityCache
	payments *payments.MercadoPago
}

func NewBookingHandler(
	db *gorm.DB,
	requestUC *ucbooking.RequestBooking,
	availabilityUC *ucbooking.GetAvailability,
	cancelUC *ucbooking.CancelBooking,
	statusUC *ucbooking.UpdateBookingStatus,
	scheduleUC *ucbooking.ListSchedule,
	availabilityCache *cache.AvailabilityCache,
	mp *payments.MercadoPago,
) *BookingHandler {
	return &BookingHandler{
		db:             db,
		requestUC:      requestUC,
		availabilityUC: availabilityUC,
		cancelUC:       cancelUC,
		statusUC:       statusUC,
		scheduleUC:     scheduleUC,
		cache:          availabilityCache,
		payments:       mp,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	SpecialistID uint   `json:"specialist_id" binding:"required"`
	ServiceID    uint   `json:"service_id" binding:"required"`
	Date         string `json:"date" binding:"required"` // YYYY-MM-DD
	Time         string `json:"time" binding:"required"` // HH:mm
	Notes        string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed cancelled completed"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	customerID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid booking payload.")
		return
	}

	ap, err := h.requestUC.Execute(
		c.Request.Context(),
		ucbooking.RequestBookingInput{
			SpecialistID: req.SpecialistID,
			CustomerID:   customerID,
			ServiceID:    req.ServiceID,
			Date:         req.Date,
			Time:         req.Time,
			Notes:        req.Notes,
		},
	)
	if err != nil {
		mapBookingErrors(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(), req.SpecialistID, req.Date)

	c.JSON(http.StatusCreated, gin.H{"appointment": ap})
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *BookingHandler) Availability(c *gin.Context) {
	idStr := c.Param("id")
	dateStr := c.Query("date")

	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	specialistID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_specialist_id", "Invalid specialist id.")
		return
	}

	if payload, ok := h.cache.Get(c.Request.Context(), uint(specialistID), dateStr); ok {
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	var sp models.Specialist
	if err := h.db.First(&sp, specialistID).Error; err != nil {
		httperr.NotFound(c, "specialist_not_found", "Specialist not found.")
		return
	}

	date, err := time.ParseInLocation(
		"2006-01-02",
		dateStr,
		timezone.Location(sp.Timezone),
	)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	schedule, err := h.availabilityUC.Execute(
		c.Request.Context(),
		domain.AvailabilityInput{
			SpecialistID: uint(specialistID),
			Date:         date,
		},
	)
	if err != nil {
		mapBookingErrors(c, err)
		return
	}

	if payload, err := json.Marshal(schedule); err == nil {
		h.cache.Set(c.Request.Context(), uint(specialistID), dateStr, payload)
	}

	c.JSON(http.StatusOK, schedule)
}

// ======================================================
// CANCEL (customer)
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	customerID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Invalid appointment id.")
		return
	}

	ap, err := h.cancelUC.Execute(c.Request.Context(), customerID, uint(id))
	if err != nil {
		mapBookingErrors(c, err)
		return
	}

	h.invalidateDay(c, ap)

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// UPDATE STATUS (specialist)
// ======================================================

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	sp, ok := h.specialistForUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Invalid appointment id.")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid status payload.")
		return
	}

	ap, err := h.statusUC.Execute(
		c.Request.Context(),
		sp.ID,
		uint(id),
		domain.Status(req.Status),
	)
	if err != nil {
		mapBookingErrors(c, err)
		return
	}

	if ap.Status == string(domain.StatusCancelled) {
		h.invalidateDay(c, ap)
	}

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// LISTINGS
// ======================================================

func (h *BookingHandler) ListMine(c *gin.Context) {
	customerID := c.MustGet(middleware.ContextUserID).(uint)

	var aps []models.Appointment
	if err := h.db.
		Preload("Specialist").
		Preload("Service").
		Where("customer_id = ?", customerID).
		Order("start_time DESC").
		Find(&aps).Error; err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Could not list appointments.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": aps})
}

func (h *BookingHandler) Schedule(c *gin.Context) {
	sp, ok := h.specialistForUser(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	date, err := time.ParseInLocation(
		"2006-01-02",
		dateStr,
		timezone.Location(sp.Timezone),
	)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	items, err := h.scheduleUC.Execute(c.Request.Context(), sp.ID, date)
	if err != nil {
		httperr.Internal(c, "failed_to_list_schedule", "Could not list schedule.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":         dateStr,
		"appointments": items,
	})
}

// ======================================================
// CHECKOUT (deposit)
// ======================================================

func (h *BookingHandler) Checkout(c *gin.Context) {
	customerID := c.MustGet(middleware.ContextUserID).(uint)

	if !h.payments.Enabled() {
		httperr.BadRequest(c, "payments_disabled", "Payments are not configured.")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Invalid appointment id.")
		return
	}

	var ap models.Appointment
	if err := h.db.
		Preload("Service").
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&ap).Error; err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return
	}

	if ap.Status != string(domain.StatusPending) && ap.Status != string(domain.StatusConfirmed) {
		httperr.BadRequest(c, "invalid_state", "Appointment cannot be paid for.")
		return
	}

	checkout, err := h.payments.CreateDepositPreference(c.Request.Context(), &ap, &ap.Service)
	if err != nil {
		httperr.Internal(c, "checkout_failed", "Could not create checkout.")
		return
	}

	c.JSON(http.StatusOK, checkout)
}

// ======================================================
// HELPERS
// ======================================================

func (h *BookingHandler) specialistForUser(c *gin.Context) (*models.Specialist, bool) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var sp models.Specialist
	if err := h.db.Where("user_id = ?", userID).First(&sp).Error; err != nil {
		httperr.NotFound(c, "specialist_profile_not_found", "Specialist profile not found.")
		return nil, false
	}

	return &sp, true
}

func (h *BookingHandler) invalidateDay(c *gin.Context, ap *models.Appointment) {
	var sp models.Specialist
	loc := timezone.Location("")
	if err := h.db.First(&sp, ap.SpecialistID).Error; err == nil {
		loc = timezone.Location(sp.Timezone)
	}

	h.cache.Invalidate(
		c.Request.Context(),
		ap.SpecialistID,
		ap.StartTime.In(loc).Format("2006-01-02"),
	)
}

func mapBookingErrors(c *gin.Context, err error) {
	switch {
	case httperr.IsBusiness(err, "specialist_not_found"):
		httperr.NotFound(c, "specialist_not_found", "Specialist not found.")
	case httperr.IsBusiness(err, "appointment_not_found"):
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
	case httperr.IsBusiness(err, "time_slot_unavailable") || httperr.IsExclusionConflict(err):
		httperr.Conflict(c, "time_slot_unavailable", "Time slot unavailable.")
	case httperr.IsBusiness(err, "missing_fields"):
		httperr.BadRequest(c, "missing_fields", "All booking fields are required.")
	case httperr.IsBusiness(err, "invalid_date_or_time"):
		httperr.BadRequest(c, "invalid_date_or_time", "Invalid date or time.")
	case httperr.IsBusiness(err, "service_not_found"):
		httperr.BadRequest(c, "service_not_found", "Service not found.")
	case httperr.IsBusiness(err, "service_not_offered"):
		httperr.BadRequest(c, "service_not_offered", "Service is not offered by this specialist.")
	case httperr.IsBusiness(err, "invalid_service_duration"):
		httperr.BadRequest(c, "invalid_service_duration", "Service has no valid duration.")
	case httperr.IsBusiness(err, "outside_working_hours"):
		httperr.BadRequest(c, "outside_working_hours", "Outside the specialist's working hours.")
	case httperr.IsBusiness(err, "invalid_working_window"):
		httperr.BadRequest(c, "invalid_working_window", "Specialist has no valid working window.")
	case httperr.IsBusiness(err, "invalid_state"):
		httperr.BadRequest(c, "invalid_state", "Appointment state does not allow this change.")
	case httperr.IsBusiness(err, "invalid_status"):
		httperr.BadRequest(c, "invalid_status", "Invalid status.")
	default:
		httperr.Internal(c, "booking_failed", "Could not process booking request.")
	}
}
