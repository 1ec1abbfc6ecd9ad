// Package server exposes the service over HTTP with gin.
package server

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ytget/ytapi/errs"
	"github.com/ytget/ytapi/internal/logger"
	"github.com/ytget/ytapi/service"
)

// Name is reported by the health endpoint.
const Name = "ytapi"

// API is the set of operations the server exposes.
type API interface {
	Metadata(ctx context.Context, ref string) (*service.Info, error)
	Streams(ctx context.Context, ref string) (*service.StreamList, error)
	Download(ctx context.Context, ref, itag string, deliver func(*service.Attachment) error) error
}

// Config holds listener settings. Zero values use defaults.
type Config struct {
	Addr        string
	CORSOrigin  string
	ReadTimeout time.Duration
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Server is the HTTP front of the service.
type Server struct {
	cfg    Config
	api    API
	engine *gin.Engine
	server *http.Server
	log    *logger.ComponentLogger
}

// New creates a server with all routes registered.
func New(api API, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":5000"
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:    cfg,
		api:    api,
		engine: gin.New(),
		log:    logger.WithComponent(logger.ComponentServer),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.loggingMiddleware())
	s.engine.Use(s.corsMiddleware())

	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/info", s.handleInfo)
	s.engine.GET("/streams", s.handleStreams)
	s.engine.GET("/download", s.handleDownload)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: 0, // downloads can take arbitrarily long
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Start listens until Stop is called. A graceful stop returns nil.
func (s *Server) Start() error {
	s.log.Info("Starting server", map[string]interface{}{"addr": s.cfg.Addr})
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Stopping server")
	return s.server.Shutdown(ctx)
}

// Middleware

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"bytes":    c.Writer.Size(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.log.Warn("Request failed", fields)
			return
		}
		s.log.Info("Request", fields)
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Expose-Headers", "Content-Disposition, Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Handlers

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": Name + " is running",
	})
}

func (s *Server) handleInfo(c *gin.Context) {
	ref := c.Query("url")
	if ref == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing parameter 'url'"})
		return
	}
	info, err := s.api.Metadata(c.Request.Context(), ref)
	if err != nil {
		s.fail(c, err, "could not get video info")
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleStreams(c *gin.Context) {
	ref := c.Query("url")
	if ref == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing parameter 'url'"})
		return
	}
	list, err := s.api.Streams(c.Request.Context(), ref)
	if err != nil {
		s.fail(c, err, "could not list streams")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleDownload(c *gin.Context) {
	ref := c.Query("url")
	itag := c.Query("itag")
	if ref == "" || itag == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "parameters 'url' and 'itag' are required"})
		return
	}

	err := s.api.Download(c.Request.Context(), ref, itag, func(a *service.Attachment) error {
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
		if a.ContentType != "" {
			c.Header("Content-Type", a.ContentType)
		}
		http.ServeContent(c.Writer, c.Request, a.Name, a.ModTime, a.Content)
		return nil
	})
	if err != nil {
		if c.Writer.Written() {
			s.log.Error("Download failed after response started", map[string]interface{}{"error": err.Error()})
			return
		}
		s.fail(c, err, "download failed")
	}
}

// fail writes the JSON error response for err.
func (s *Server) fail(c *gin.Context, err error, summary string) {
	switch errs.Kind(err) {
	case errs.KindInvalidInput:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errs.KindVariantNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "itag not found"})
	default:
		s.log.Error(summary, map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: summary, Detail: errs.Detail(err)})
	}
}
