package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type summaryRequest struct {
	Request string `json:"request"`
}

// emailSummary handles POST /api/email/summary by running the read path
// directly, without the chat agent.
func (s *Server) emailSummary(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	req.Request = strings.TrimSpace(req.Request)
	if req.Request == "" {
		abortWithError(c, fmt.Errorf("%w: request must not be empty", errBadRequest))
		return
	}

	sess := s.session(c)
	ctx := c.Request.Context()
	tok, err := sess.MailToken(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}

	res, err := s.deps.Email.ReadEmail(ctx, sess.UserID, tok, req.Request)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
