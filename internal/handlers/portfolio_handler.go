package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/glowbook/booking-api/internal/httperr"
	"github.com/glowbook/booking-api/internal/media"
	"github.com/glowbook/booking-api/internal/middleware"
	"github.com/glowbook/booking-api/internal/models"
)

type PortfolioHandler struct {
	db       *gorm.DB
	uploader *media.Uploader
}

func NewPortfolioHandler(db *gorm.DB, uploader *media.Uploader) *PortfolioHandler {
	return &PortfolioHandler{db: db, uploader: uploader}
}

// Upload accepts a multipart "image" file, converts it to webp, stores it in
// S3 and records the URL on the specialist's portfolio.
func (h *PortfolioHandler) Upload(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	if !h.uploader.Enabled() {
		httperr.BadRequest(c, "uploads_disabled", "Image uploads are not configured.")
		return
	}

	var sp models.Specialist
	if err := h.db.Where("user_id = ?", userID).First(&sp).Error; err != nil {
		httperr.NotFound(c, "specialist_profile_not_found", "Specialist profile not found.")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		httperr.BadRequest(c, "missing_image", "Image file is required.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httperr.Internal(c, "failed_to_read_image", "Could not read image.")
		return
	}
	defer file.Close()

	url, err := h.uploader.UploadPortfolioImage(c.Request.Context(), sp.ID, file)
	if err != nil {
		if httperr.IsBusiness(err, "invalid_image") {
			httperr.BadRequest(c, "invalid_image", "File is not a valid image.")
			return
		}
		httperr.Internal(c, "failed_to_upload_image", "Could not upload image.")
		return
	}

	img := models.PortfolioImage{
		SpecialistID: sp.ID,
		URL:          url,
	}

	if err := h.db.Create(&img).Error; err != nil {
		httperr.Internal(c, "failed_to_save_image", "Could not save image.")
		return
	}

	c.JSON(http.StatusCreated, img)
}
