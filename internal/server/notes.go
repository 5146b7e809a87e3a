package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/notes"
)

type noteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// listNotes handles GET /api/notes?q=&category=. Categories may repeat or
// be comma separated.
func (s *Server) listNotes(c *gin.Context) {
	var cats []domain.Category
	for _, raw := range c.QueryArray("category") {
		for _, name := range strings.Split(raw, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			cat, err := domain.ParseCategory(name)
			if err != nil {
				abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
				return
			}
			cats = append(cats, cat)
		}
	}

	list, err := s.deps.Notes.List(c.Request.Context(), c.GetString(userIDKey), notes.Filter{
		Query:      strings.TrimSpace(c.Query("q")),
		Categories: cats,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// createNote handles POST /api/notes. Without a category and tags the
// model chooses them from the content.
func (s *Server) createNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	owner := c.GetString(userIDKey)

	var (
		note *domain.Note
		err  error
	)
	if req.Category == "" && len(req.Tags) == 0 {
		if strings.TrimSpace(req.Title) == "" {
			abortWithError(c, fmt.Errorf("%w: note title must not be empty", notes.ErrInvalidNote))
			return
		}
		note, err = s.deps.Notes.Create(c.Request.Context(), owner, req.Title, req.Content)
	} else {
		note, err = s.deps.Notes.Add(c.Request.Context(), &domain.Note{
			Title:    req.Title,
			Content:  req.Content,
			OwnerID:  owner,
			Tags:     req.Tags,
			Category: domain.Category(req.Category),
		})
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// deleteNote handles DELETE /api/notes/:id.
func (s *Server) deleteNote(c *gin.Context) {
	if err := s.deps.Notes.Delete(c.Request.Context(), c.GetString(userIDKey), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
