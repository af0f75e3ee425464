package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// Server exposes the webhook receiver and the viewer boundary over HTTP:
// POST/GET /webhook for ingestion, GET /inbox and GET /inbox/stream for
// snapshot reads and live subscription, POST /classify for on-demand
// classification.
type Server struct {
	service    *core.TriageService
	logger     *zap.Logger
	listenAddr string
	httpServer *http.Server
}

// NewServer creates a new HTTP server bound to the triage service
func NewServer(service *core.TriageService, logger *zap.Logger, listenAddr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
	}

	engine.POST("/webhook", s.handleWebhook)
	engine.GET("/webhook", s.handleWebhookStatus)
	engine.GET("/inbox", s.handleInbox)
	engine.GET("/inbox/stream", s.handleInboxStream)
	engine.POST("/classify", s.handleClassify)

	s.httpServer = &http.Server{
		Addr:    listenAddr,
		Handler: engine,
	}
	return s
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server in the background
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the HTTP server down gracefully
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// handleWebhook ingests one upstream webhook event. Any payload shape is
// accepted; canonicalization degrades missing fields to null instead of
// rejecting. An unreadable body or a failed append are both the caller's
// 500, matching the upstream retry expectations.
func (s *Server) handleWebhook(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		s.logger.Error("Webhook payload is not a JSON object", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to save data",
		})
		return
	}

	if _, _, err := s.service.Ingest(c.Request.Context(), raw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to save data",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Data saved successfully",
	})
}

// handleWebhookStatus is the liveness probe for the webhook endpoint
func (s *Server) handleWebhookStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Webhook endpoint is active.",
	})
}

// handleInbox returns the full inbox snapshot in insertion order. No
// paging: the viewer gets the whole collection per read.
func (s *Server) handleInbox(c *gin.Context) {
	snapshot, err := s.service.Snapshot(c.Request.Context())
	if err != nil {
		s.logger.Error("Inbox snapshot failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "inbox unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    len(snapshot),
		"messages": snapshot,
	})
}

// handleInboxStream pushes the snapshot and every subsequent append to
// the client as server-sent events.
func (s *Server) handleInboxStream(c *gin.Context) {
	done := make(chan struct{})
	events := make(chan core.InboxEvent, 64)

	unsubscribe, err := s.service.Subscribe(func(event core.InboxEvent) {
		select {
		case events <- event:
		case <-done:
		}
	})
	if err != nil {
		s.logger.Error("Inbox subscription failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "inbox unavailable"})
		return
	}
	defer func() {
		unsubscribe()
		close(done)
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event := <-events:
			switch {
			case event.Err != nil:
				c.SSEvent("error", gin.H{"error": event.Err.Error()})
			case event.Appended != nil:
				c.SSEvent("append", event.Appended)
			default:
				c.SSEvent("snapshot", event.Snapshot)
			}
			return true
		}
	})
}

type classifyRequest struct {
	Subject *string `json:"subject"`
	Text    *string `json:"text"`
}

// handleClassify classifies one email on demand. Classification never
// touches the stored record; callers persist the result elsewhere.
func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := s.service.Classify(c.Request.Context(), req.Subject, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrClassifierUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "classifier is not configured"})
		case errors.Is(err, core.ErrClassifierProvider):
			s.logger.Error("Classifier provider failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "classifier provider failed"})
		default:
			s.logger.Error("Classification failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
