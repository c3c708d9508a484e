package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/taskboard/internal/auth"
	"github.com/taskboard/taskboard/internal/config"
	"github.com/taskboard/taskboard/internal/db/models"
	"github.com/taskboard/taskboard/internal/db/repositories"
	"github.com/taskboard/taskboard/internal/telemetry"
)

// AuthHandlers serves the credential exchange endpoint.
type AuthHandlers struct {
	cfg   *config.Config
	users *repositories.UserRepository
	audit *repositories.AuditRepository
}

// NewAuthHandlers creates the auth handler set.
func NewAuthHandlers(cfg *config.Config, users *repositories.UserRepository, audit *repositories.AuditRepository) *AuthHandlers {
	return &AuthHandlers{cfg: cfg, users: users, audit: audit}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges a username/password pair for a bearer token.
//
// A failed attempt appends exactly one LOGIN_FAILED audit row with a null
// actor (nobody was authenticated) and responds 401 without revealing whether
// the username exists. A store failure responds 500 and records nothing: the
// credentials were never evaluated, so there is no attempt to describe.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	identity, err := auth.VerifyCredentials(c.Request.Context(), h.users, req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	if identity == nil {
		telemetry.LoginFailuresTotal.Inc()
		recordAudit(c, h.audit, nil, models.ActionLoginFailed, "Username: "+req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(*identity, h.cfg.Auth.JWTSecret, h.cfg.Auth.TokenTTL)
	if err != nil {
		slog.Error("token generation failed", "user_id", identity.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token})
}
