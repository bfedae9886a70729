package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	s3store "github.com/linkfolio/backend/internal/adapters/storage/s3"
	"github.com/linkfolio/backend/internal/adapters/transport/http/dto"
	"github.com/linkfolio/backend/internal/adapters/transport/http/middleware"
	"github.com/linkfolio/backend/internal/domain/storage"
)

// GET /api/profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// PUT /api/profile (multipart; optional profileImage file)
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body dto.UpdateProfileDTO
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var upload *storage.Upload
	if file, err := c.FormFile("profileImage"); err == nil {
		if file.Size > s3store.MaxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the 5MB limit"})
			return
		}
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
			return
		}
		defer f.Close()
		upload = &storage.Upload{
			Name:        file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Size:        file.Size,
			Body:        f,
		}
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, body, upload)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    toUserResponse(user),
	})
}
