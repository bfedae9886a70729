package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	authsvc "github.com/linkfolio/backend/internal/app/auth/service"
	linksvc "github.com/linkfolio/backend/internal/app/links"
	usersvc "github.com/linkfolio/backend/internal/app/users"
	customErrors "github.com/linkfolio/backend/internal/domain/errors"
	"github.com/linkfolio/backend/internal/domain/model"
	"github.com/linkfolio/backend/internal/infra/config"
)

const refreshCookieName = "refreshToken"

type Handler struct {
	auth  authsvc.Service
	users usersvc.Service
	links linksvc.Service
	cfg   *config.Config
	log   *zap.Logger
}

func NewHandler(auth authsvc.Service, users usersvc.Service, links linksvc.Service, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{auth: auth, users: users, links: links, cfg: cfg, log: log}
}

func (h *Handler) setRefreshCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		refreshCookieName,
		token,
		int(ttl.Seconds()),
		"/",
		h.cfg.CookieDomain,
		true, // secure
		true, // httpOnly
	)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/", h.cfg.CookieDomain, true, true)
}

type userResponse struct {
	ID              uuid.UUID `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	ProfileTitle    string    `json:"profileTitle"`
	Bio             string    `json:"bio"`
	ProfileImage    string    `json:"profileImage"`
	BackgroundColor string    `json:"backgroundColor"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// toUserResponse is the only way a user leaves the API. Credential and
// token fields deliberately have no place to go.
func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		ProfileTitle:    u.ProfileTitle,
		Bio:             u.Bio,
		ProfileImage:    u.ProfileImage,
		BackgroundColor: u.BackgroundColor,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case customErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case customErrors.IsMissingToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no refresh token in cookies"})
	case customErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
	case customErrors.IsTokenMismatch(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not recognized"})
	case customErrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case customErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"error": "user with this email already exists"})
	case customErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.log.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
