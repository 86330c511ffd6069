package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"typeroo-api/internal/auth"
	"typeroo-api/internal/domain"
	"typeroo-api/internal/service"
)

// Users is the profile and settings surface used by the handler.
type Users interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	GetPublicProfile(ctx context.Context, username string) (*domain.User, error)
	Search(ctx context.Context, query string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req service.ProfileUpdate) error
	UpdateSettings(ctx context.Context, userID string, req service.SettingsUpdate) error
	DeleteAccount(ctx context.Context, userID string) error
}

type CustomTexts interface {
	ListMine(ctx context.Context, userID string) ([]domain.CustomText, error)
	Create(ctx context.Context, userID, content string, isPublic bool) (*domain.CustomText, error)
	Delete(ctx context.Context, userID, id string) error
}

type TestResults interface {
	Save(ctx context.Context, who service.Identity, in service.ResultInput) (*domain.TestResult, error)
	History(ctx context.Context, userID string, page, size *int) (domain.ResultPage, error)
	UserHistory(ctx context.Context, username string, page, size *int) (domain.ResultPage, error)
	Stats(ctx context.Context, username string) (domain.UserStats, error)
}

type Avatars interface {
	Upload(ctx context.Context, userID string, file service.AvatarUpload) (string, error)
}

type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// Deps are the collaborators the handler routes to.
type Deps struct {
	Users       Users
	CustomTexts CustomTexts
	TestResults TestResults
	Avatars     Avatars
	Tokens      TokenVerifier
	Logger      *logrus.Logger
	// UploadsDir, when set, is served read-only under /uploads.
	UploadsDir string
	// MaxUploadBytes caps avatar request bodies; zero disables the cap.
	MaxUploadBytes int64
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      Users
	texts      CustomTexts
	results    TestResults
	avatars    Avatars
	tokens     TokenVerifier
	logger     *logrus.Logger
	uploadsDir string

	maxUploadBytes int64
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		users:      d.Users,
		texts:      d.CustomTexts,
		results:    d.TestResults,
		avatars:    d.Avatars,
		tokens:     d.Tokens,
		logger:     logger,
		uploadsDir: d.UploadsDir,

		maxUploadBytes: d.MaxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	if h.uploadsDir != "" {
		router.Static("/uploads", h.uploadsDir)
	}

	authed := h.requireUser()
	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		texts := api.Group("/custom-texts", authed)
		texts.GET("", h.listCustomTexts)
		texts.POST("", h.createCustomText)
		texts.DELETE("/:id", h.deleteCustomText)

		tests := api.Group("/tests")
		tests.GET("/history", authed, h.myHistory)
		tests.GET("/user-history", h.userHistory)
		tests.GET("/stats", h.userStats)
		tests.POST("/save", authed, h.saveResult)

		users := api.Group("/users")
		users.GET("/profile", authed, h.getProfile)
		users.POST("/profile", authed, h.updateProfile)
		users.GET("/search", h.searchUsers)
		users.POST("/settings", authed, h.updateSettings)
		users.POST("/upload-avatar", authed, h.uploadAvatar)
		users.DELETE("/me", authed, h.deleteAccount)
		users.GET("/:username", h.getPublicProfile)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "3600")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, messageResponse{Message: msg})
}

// fail maps service errors onto status codes. Internal errors expose their
// cause to the caller.
func (h *Handler) fail(c *gin.Context, err error) {
	var invalid *service.ValidationError
	switch {
	case errors.As(err, &invalid):
		message(c, http.StatusBadRequest, invalid.Message)
	case errors.Is(err, service.ErrNotFound):
		message(c, http.StatusNotFound, "Error: Not found")
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		h.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("request error")
		message(c, http.StatusInternalServerError, err.Error())
	}
}
