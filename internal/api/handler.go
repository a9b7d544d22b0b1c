// Package api exposes the agent over HTTP.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/models"
	"restaurant-agent/internal/session"
)

const SessionHeader = "X-Session-ID"

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

type ChatResponse struct {
	SessionID string `json:"sessionId"`
	models.AgentResponse
}

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	sessions *session.Manager
	logger   logger.Logger
}

func NewChatHandler(sessions *session.Manager, log logger.Logger) *ChatHandler {
	return &ChatHandler{sessions: sessions, logger: log}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.GetHeader(SessionHeader)
	}
	sessionID, a := h.sessions.Get(sessionID)

	resp := a.ProcessMessage(c.Request.Context(), req.Message)
	c.Header(SessionHeader, sessionID)
	c.JSON(http.StatusOK, ChatResponse{SessionID: sessionID, AgentResponse: resp})
}

// EndSession handles DELETE /api/sessions/:id
func (h *ChatHandler) EndSession(c *gin.Context) {
	if !h.sessions.Remove(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Check is a named readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	checks  []Check
	version string
}

func NewHealthHandler(version string, checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := gin.H{}
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[check.Name] = err.Error()
			continue
		}
		results[check.Name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}
