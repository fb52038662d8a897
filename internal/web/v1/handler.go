package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/forum-service/internal/core/domain"
	"github.com/duynhne/forum-service/internal/logger"
	logicv1 "github.com/duynhne/forum-service/internal/logic/v1"
	"github.com/duynhne/forum-service/middleware"
)

// Handler groups HTTP handlers for the auth API v1.
// Dependencies are injected via the constructor.
type Handler struct {
	auth     *logicv1.AuthService
	sessions *logicv1.SessionManager
	cookie   CookieConfig
}

// NewHandler creates a new Handler.
func NewHandler(auth *logicv1.AuthService, sessions *logicv1.SessionManager, cookie CookieConfig) *Handler {
	return &Handler{auth: auth, sessions: sessions, cookie: cookie}
}

// RegisterRoutes registers all API v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/hello", h.Hello)
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.GET("/auth/me", h.Me)
	rg.POST("/auth/logout", h.Logout)
}

// Hello is a liveness probe for API clients.
func (h *Handler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "hello world"})
}

// Register handles HTTP request for user registration.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	var req domain.RegisterRequest
	if !bindJSON(c, span, &req) {
		return
	}

	writeResponse(c, h.auth.Register(ctx, req))
}

// Login handles HTTP request for user login and sets the session cookie.
// The incoming cookie is only touched once credentials check out.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	var req domain.LoginRequest
	if !bindJSON(c, span, &req) {
		return
	}

	writeResponse(c, h.auth.Login(ctx, req, newCookieSession(c, h.sessions, h.cookie)))
}

// Me returns the user bound to the session cookie.
func (h *Handler) Me(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	sess, err := loadSession(ctx, c, h.sessions, h.cookie)
	if err != nil {
		writeSessionError(c, span, err)
		return
	}
	span.SetAttributes(attribute.Bool("session.present", sess.ok))

	writeResponse(c, h.auth.Me(ctx, sess))
}

// Logout revokes the session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	sess, err := loadSession(ctx, c, h.sessions, h.cookie)
	if err != nil {
		writeSessionError(c, span, err)
		return
	}

	writeResponse(c, h.auth.Logout(ctx, sess))
}

func startRequestSpan(c *gin.Context) (context.Context, trace.Span) {
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
}

func bindJSON(c *gin.Context, span trace.Span, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.FromContext(c.Request.Context()).Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, &domain.MutationResponse{
			Code:    http.StatusBadRequest,
			Success: false,
			Message: "Invalid request body: " + err.Error(),
		})
		return false
	}
	span.SetAttributes(attribute.Bool("request.valid", true))
	return true
}

func writeSessionError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)
	logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Session lookup failed")
	c.JSON(http.StatusInternalServerError, &domain.MutationResponse{
		Code:    http.StatusInternalServerError,
		Success: false,
		Message: "Internal server error: " + err.Error(),
	})
}

// writeResponse uses the envelope code as the HTTP status.
func writeResponse(c *gin.Context, resp *domain.MutationResponse) {
	c.JSON(resp.Code, resp)
}
