// Package api exposes the translator over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nevora/english-to-code/internal/logging"
	"github.com/nevora/english-to-code/internal/models"
	"github.com/nevora/english-to-code/internal/targets"
	"github.com/nevora/english-to-code/internal/translator"
)

type translateRequest struct {
	Prompt  string      `json:"prompt" binding:"required"`
	Target  string      `json:"target" binding:"required"`
	Mode    models.Mode `json:"mode"`
	Context string      `json:"context"`
	Refine  bool        `json:"refine"`
}

type translateResponse struct {
	Code   string      `json:"code"`
	Target string      `json:"target"`
	Mode   models.Mode `json:"mode"`
}

type planRequest struct {
	Prompt string      `json:"prompt" binding:"required"`
	Mode   models.Mode `json:"mode"`
}

type planResponse struct {
	Plan    models.GenerationPlan `json:"plan"`
	Explain string                `json:"explain"`
}

type blueprintRequest struct {
	Prompt string      `json:"prompt" binding:"required"`
	Name   string      `json:"name"`
	Mode   models.Mode `json:"mode"`
}

type verifyRequest struct {
	Code   string `json:"code" binding:"required"`
	Target string `json:"target" binding:"required"`
}

type verifyResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error     string   `json:"error"`
	Supported []string `json:"supported,omitempty"`
}

// Server holds the handlers' dependencies.
type Server struct {
	tr     *translator.Translator
	logger *zap.Logger
}

// NewRouter returns a gin engine serving the translator API.
func NewRouter(tr *translator.Translator, logger *zap.Logger) *gin.Engine {
	s := &Server{tr: tr, logger: logging.OrNop(logger)}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.GET("/targets", s.targets)
	v1.POST("/translate", s.translate)
	v1.POST("/plan", s.plan)
	v1.POST("/blueprint", s.blueprint)
	v1.POST("/verify", s.verify)
	return r
}

func (s *Server) targets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"targets": s.tr.SupportedTargets(),
		"modes":   models.ModeNames(),
	})
}

func (s *Server) translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = models.DefaultMode
	}
	code, err := s.tr.Translate(c.Request.Context(), translator.Request{
		Prompt:  req.Prompt,
		Target:  req.Target,
		Mode:    mode,
		Context: req.Context,
		Refine:  req.Refine,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, translateResponse{Code: code, Target: targets.Normalize(req.Target), Mode: mode})
}

func (s *Server) plan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	plan, err := s.tr.BuildGenerationPlan(c.Request.Context(), req.Prompt, req.Mode)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, planResponse{Plan: plan, Explain: plan.Explain()})
}

func (s *Server) blueprint(c *gin.Context) {
	var req blueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	bp, err := s.tr.BuildBlueprint(c.Request.Context(), req.Prompt, req.Name, req.Mode)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, bp)
}

func (s *Server) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	ok, msg := s.tr.VerifyOutput(c.Request.Context(), req.Code, req.Target)
	c.JSON(http.StatusOK, verifyResponse{OK: ok, Message: msg})
}

// handleError maps validation errors to 400 with the legal values.
func (s *Server) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, translator.ErrUnsupportedMode):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Supported: models.ModeNames()})
	case errors.Is(err, translator.ErrUnsupportedTarget):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Supported: s.tr.SupportedTargets()})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// requestLogger tags every request with an id and logs it after it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		if path == "/healthz" || path == "/metrics" {
			return
		}
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			s.logger.Error("request failed", append(fields, zap.Error(c.Errors.Last().Err))...)
			return
		}
		s.logger.Info("request", fields...)
	}
}
