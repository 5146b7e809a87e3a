package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/notes"
)

// errBadRequest marks malformed request input.
var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	var (
		authErr     *domain.AuthError
		schemaErr   *domain.ModelSchemaError
		providerErr *domain.ProviderError
	)
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.Is(err, errBadRequest), errors.Is(err, notes.ErrInvalidNote):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &schemaErr), errors.As(err, &providerErr):
		return http.StatusBadGateway
	default:
		// *domain.PersistenceError and anything unexpected.
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal failure details from clients.
func publicMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": publicMessage(status, err)})
}
