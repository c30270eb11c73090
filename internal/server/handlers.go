package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onlyfringe/onlyfringe/internal/logger"
	"github.com/onlyfringe/onlyfringe/internal/model"
	"github.com/onlyfringe/onlyfringe/internal/verify"
)

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and email are required"})
		return
	}

	user := &model.User{Username: req.Username, Email: req.Email}
	if err := s.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this username or email already exists"})
			return
		}
		s.log.Error("Failed to create user", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) GetUser(c *gin.Context) {
	user, err := s.store.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		s.log.Error("Failed to fetch user", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) ListArguments(c *gin.Context) {
	status, err := model.ParseStatus(c.DefaultQuery("status", string(model.StatusApproved)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	arguments, err := s.store.ListArguments(c.Request.Context(), status, c.Query("category"))
	if err != nil {
		s.log.Error("Failed to list arguments", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list arguments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"arguments": arguments,
		"count":     len(arguments),
	})
}

func (s *Server) GetArgument(c *gin.Context) {
	argument, err := s.store.GetArgument(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Argument not found"})
			return
		}
		s.log.Error("Failed to fetch argument", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch argument"})
		return
	}
	c.JSON(http.StatusOK, argument)
}

type sourceRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type submitArgumentRequest struct {
	Title    string          `json:"title" binding:"required"`
	Content  string          `json:"content" binding:"required"`
	Category string          `json:"category"`
	UserID   string          `json:"user_id" binding:"required"`
	Sources  []sourceRequest `json:"sources"`
}

func (s *Server) SubmitArgument(c *gin.Context) {
	var req submitArgumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title, content and user_id are required", "details": err.Error()})
		return
	}

	if !s.userExists(c, req.UserID) {
		return
	}

	outcome, err := s.pipeline.SubmitArgument(c.Request.Context(), verify.ArgumentRequest{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		AuthorID: req.UserID,
		Sources:  toSources(req.Sources),
	})
	if err != nil {
		s.respondPipelineError(c, outcome, err)
		return
	}

	c.JSON(http.StatusCreated, outcome)
}

type submitRebuttalRequest struct {
	Content string          `json:"content" binding:"required"`
	UserID  string          `json:"user_id" binding:"required"`
	Sources []sourceRequest `json:"sources"`
}

func (s *Server) SubmitRebuttal(c *gin.Context) {
	var req submitRebuttalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content and user_id are required", "details": err.Error()})
		return
	}

	if !s.userExists(c, req.UserID) {
		return
	}

	outcome, err := s.pipeline.SubmitRebuttal(c.Request.Context(), verify.RebuttalRequest{
		ArgumentID: c.Param("id"),
		Content:    req.Content,
		AuthorID:   req.UserID,
		Sources:    toSources(req.Sources),
	})
	if err != nil {
		s.respondPipelineError(c, outcome, err)
		return
	}

	c.JSON(http.StatusCreated, outcome)
}

func (s *Server) RetryArgument(c *gin.Context) {
	s.retry(c, model.KindArgument)
}

func (s *Server) RetryRebuttal(c *gin.Context) {
	s.retry(c, model.KindRebuttal)
}

func (s *Server) retry(c *gin.Context, kind model.Kind) {
	outcome, err := s.pipeline.Retry(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		s.respondPipelineError(c, outcome, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) Health(c *gin.Context) {
	dbStatus := "connected"
	code := http.StatusOK
	if err := s.store.Ping(c.Request.Context()); err != nil {
		dbStatus = "unreachable"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     "healthy",
		"database":   dbStatus,
		"ai_enabled": s.aiEnabled,
	})
}

func (s *Server) userExists(c *gin.Context, id string) bool {
	if _, err := s.store.GetUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return false
		}
		s.log.Error("Failed to fetch user", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return false
	}
	return true
}

func toSources(in []sourceRequest) []model.Source {
	out := make([]model.Source, 0, len(in))
	for _, s := range in {
		out = append(out, model.Source{
			URL:         s.URL,
			Title:       s.Title,
			Description: s.Description,
		})
	}
	return out
}

// respondPipelineError maps the pipeline error taxonomy onto HTTP. When
// the pipeline persisted a record despite failing (constraint rejection,
// or a submission left pending on oracle failure), the outcome rides
// along in the response.
func (s *Server) respondPipelineError(c *gin.Context, outcome *verify.Outcome, err error) {
	var pe *verify.PipelineError
	if !errors.As(err, &pe) {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		s.log.Error("Pipeline failure", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Submission processing failed"})
		return
	}

	body := gin.H{"error": pe.Message, "kind": string(pe.Kind)}
	if len(pe.Violations) > 0 {
		body["violations"] = pe.Violations
	}
	if outcome != nil {
		body["submission"] = outcome
	}

	switch pe.Kind {
	case verify.KindInvalidRebuttalTarget:
		c.JSON(http.StatusBadRequest, body)
	case verify.KindContentLengthInvalid, verify.KindInsufficientSources, verify.KindInvalidSource:
		c.JSON(http.StatusUnprocessableEntity, body)
	case verify.KindOracleUnavailable:
		body["retryable"] = true
		c.JSON(http.StatusServiceUnavailable, body)
	case verify.KindOracleResponseInvalid:
		s.log.Error("Oracle returned malformed verdict", logger.Error(pe))
		c.JSON(http.StatusBadGateway, body)
	case verify.KindConcurrencyConflict:
		c.JSON(http.StatusConflict, body)
	default:
		s.log.Error("Pipeline failure", logger.Error(pe))
		c.JSON(http.StatusInternalServerError, body)
	}
}
