package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jayan110105/neura/internal/agent"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/logger"
	"go.uber.org/zap"
)

type chatRequest struct {
	Messages []domain.Message `json:"messages"`
}

type errorEvent struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// chat handles POST /api/chat. The turn's events are streamed as
// server-sent events; a failure mid-turn ends the stream with an error
// event.
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if len(req.Messages) == 0 {
		abortWithError(c, fmt.Errorf("%w: messages must not be empty", errBadRequest))
		return
	}
	if last := req.Messages[len(req.Messages)-1]; last.Role != "" && last.Role != domain.RoleUser {
		abortWithError(c, fmt.Errorf("%w: the last message must come from the user", errBadRequest))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	send := func(name string, data any) {
		c.SSEvent(name, data)
		c.Writer.Flush()
	}

	_, err := s.deps.Agent.Run(c.Request.Context(), s.session(c), req.Messages, func(ev agent.Event) {
		send(string(ev.Type), ev)
	})
	if err != nil {
		status := statusFor(err)
		_ = c.Error(err)
		logger.With(c.Request.Context(), s.log).Warn("chat turn failed", zap.Error(err))
		send("error", errorEvent{Error: publicMessage(status, err), Status: status})
	}
}

// getChat handles GET /api/chat.
func (s *Server) getChat(c *gin.Context) {
	t, err := s.deps.Transcripts.GetTranscript(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		abortWithError(c, &domain.PersistenceError{Op: "server.getChat", Err: err})
		return
	}
	msgs := t.Messages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

// resetChat handles DELETE /api/chat.
func (s *Server) resetChat(c *gin.Context) {
	if err := s.deps.Transcripts.DeleteTranscript(c.Request.Context(), c.GetString(userIDKey)); err != nil {
		abortWithError(c, &domain.PersistenceError{Op: "server.resetChat", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
