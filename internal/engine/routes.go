package engine

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/apexionhq/cx-copilot/internal/errors"
	"github.com/apexionhq/cx-copilot/internal/observability"
	"github.com/apexionhq/cx-copilot/internal/schema"
	"github.com/apexionhq/cx-copilot/internal/session"
	"github.com/apexionhq/cx-copilot/internal/store"
)

// SessionIDHeader carries the opaque session identifier between client
// and server
const SessionIDHeader = "X-Session-ID"

// Server exposes the pipeline and its supporting stores over HTTP
type Server struct {
	engine        *Engine
	audit         *store.AuditStore
	feedback      *store.FeedbackStore
	sessions      *session.Manager
	schema        *schema.Descriptor
	healthChecker *observability.HealthChecker
	logger        *observability.Logger
}

// NewServer creates the HTTP layer around an assembled engine
func NewServer(eng *Engine, audit *store.AuditStore, feedback *store.FeedbackStore, sessions *session.Manager, desc *schema.Descriptor, healthChecker *observability.HealthChecker) *Server {
	return &Server{
		engine:        eng,
		audit:         audit,
		feedback:      feedback,
		sessions:      sessions,
		schema:        desc,
		healthChecker: healthChecker,
		logger:        observability.NewLogger("http"),
	}
}

// SetupRoutes configures the gin router with all endpoints and middleware
func (s *Server) SetupRoutes() *gin.Engine {
	r := gin.New()

	r.Use(observability.RecoveryMiddleware(s.logger))
	r.Use(observability.RequestLoggingMiddleware(s.logger))
	r.Use(observability.CORSMiddleware())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)

	api := r.Group("/api/v1")
	api.Use(s.sessionMiddleware())
	{
		api.POST("/query", s.handleQuery)
		api.GET("/history", s.handleHistory)
		api.GET("/logs", s.handleLogs)
		api.POST("/feedback", s.handleFeedback)
		api.GET("/schema", s.handleSchema)
	}

	return r
}

// sessionMiddleware resolves the session from the request header, creating
// one when absent or expired, and echoes the ID back in the response so
// clients can persist it.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.sessions == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		var sess *session.Session
		var err error
		if id := c.GetHeader(SessionIDHeader); id != "" {
			sess, err = s.sessions.Touch(ctx, id)
		} else {
			sess, err = s.sessions.Create(ctx)
		}
		if err != nil {
			// Sessions are best-effort; the pipeline works without one
			s.logger.Warn(ctx, "Session resolution failed", map[string]interface{}{
				"error": err.Error(),
			})
			c.Next()
			return
		}

		c.Header(SessionIDHeader, sess.ID)
		c.Request = c.Request.WithContext(observability.WithSessionID(ctx, sess.ID))
		c.Next()
	}
}

func (s *Server) handleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		enhancedErr := errors.NewInvalidInputError("request body", err.Error())
		c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
		return
	}

	response, err := s.engine.Process(c.Request.Context(), &req)
	if err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) handleHistory(c *gin.Context) {
	sessionID := observability.GetSessionID(c.Request.Context())
	if sessionID == "" {
		enhancedErr := errors.NewInvalidInputError(SessionIDHeader, "a session is required to fetch history")
		c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
		return
	}

	entries, err := s.audit.BySession(c.Request.Context(), sessionID, parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, formatErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"entries":    entries,
	})
}

func (s *Server) handleLogs(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := s.audit.Recent(ctx, parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, formatErrorResponse(err))
		return
	}

	stats, err := s.audit.Stats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, formatErrorResponse(err))
		return
	}

	feedback, err := s.feedback.Counts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, formatErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":  entries,
		"stats":    stats,
		"feedback": feedback,
	})
}

// FeedbackRequest rates a previously answered query
type FeedbackRequest struct {
	QueryLogID string `json:"query_log_id" binding:"required"`
	Rating     string `json:"rating" binding:"required"`
	Comment    string `json:"comment,omitempty"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		enhancedErr := errors.NewInvalidInputError("request body", err.Error())
		c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
		return
	}

	fb, err := s.feedback.Create(c.Request.Context(), req.QueryLogID, req.Rating, req.Comment)
	if err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}

	c.JSON(http.StatusCreated, fb)
}

func (s *Server) handleSchema(c *gin.Context) {
	c.JSON(http.StatusOK, s.schema)
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.healthChecker == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "cx-copilot",
		})
		return
	}

	response := s.healthChecker.GetHealthResponse(c.Request.Context())
	statusCode := http.StatusOK
	if response.Status == observability.HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics": observability.GetGlobalMetrics().GetAll(),
	})
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		return 50
	}
	return limit
}

// formatErrorResponse renders an error as the API's error envelope
func formatErrorResponse(err error) gin.H {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		inner := gin.H{
			"code":    enhancedErr.Code,
			"message": enhancedErr.Message,
		}

		if enhancedErr.Details != "" {
			inner["details"] = enhancedErr.Details
		}
		if enhancedErr.Suggestion != "" {
			inner["suggestion"] = enhancedErr.Suggestion
		}
		if len(enhancedErr.Metadata) > 0 {
			inner["metadata"] = enhancedErr.Metadata
		}

		return gin.H{"error": inner}
	}

	return gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	}
}

// getErrorStatusCode maps error codes to HTTP status codes
func getErrorStatusCode(err error) int {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		switch enhancedErr.Code {
		case errors.ErrCodeInvalidInput, errors.ErrCodeMissingRequired:
			return http.StatusBadRequest
		case errors.ErrCodeSafetyValidation:
			return http.StatusUnprocessableEntity
		case errors.ErrCodeTranslation, errors.ErrCodeQueryExecution:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
