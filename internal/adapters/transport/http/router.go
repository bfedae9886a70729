package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/linkfolio/backend/internal/adapters/transport/http/middleware"
	"github.com/linkfolio/backend/internal/domain/jwt"
	"github.com/linkfolio/backend/internal/infra/config"
)

// maxBodyBytes leaves room above the 5MB file cap for multipart framing
// and the other form fields.
const maxBodyBytes = 6 << 20

// NewRouter wires middleware and the single route table. The former
// shop/link split collapses into one links resource.
func NewRouter(h *Handler, jwtUtil jwt.JWTUtil, redisCli *redis.Client, cfg *config.Config, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.NewRateLimitPerIP(50, 100, 10_000, time.Hour))
	router.Use(limitBody)

	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	authGate := middleware.NewAuthGate(jwtUtil)
	loginLimit := middleware.NewLoginRateLimit(redisCli, 10, time.Minute)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the LinkFolio Backend!")
	})
	router.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

	user := router.Group("/api/user")
	{
		user.POST("/register", h.Register)
		user.POST("/login", loginLimit, h.Login)
		user.GET("/refresh-token", h.RefreshToken)
		user.POST("/logout", h.Logout)
		user.POST("/forgot-password", h.ForgotPassword)
		user.PUT("/reset-password/:token", h.ResetPassword)

		user.PUT("", authGate, h.UpdateUser)
		user.DELETE("", authGate, h.DeleteUser)
	}

	profile := router.Group("/api/profile", authGate)
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}

	links := router.Group("/api/links", authGate)
	{
		links.POST("", h.CreateLink)
		links.GET("", h.ListLinks)
		links.DELETE("/:linkId", h.DeleteLink)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return router
}

func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	c.Next()
}
