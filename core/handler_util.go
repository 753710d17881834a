package core

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError sends unified error payload {"error": {"code", "message"}}.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// respondDispatchError maps gateway errors onto the error envelope.
func respondDispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoToken):
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "login required")
	case errors.Is(err, ErrBadPayload):
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("bad backend payload")
		respondError(c, http.StatusBadGateway, "BAD_BACKEND_PAYLOAD", "unexpected backend response")
	default:
		respondError(c, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", "backend unavailable")
	}
}

func respondRejected(c *gin.Context) {
	respondError(c, http.StatusBadGateway, "BACKEND_REJECTED", "backend rejected the request")
}

// respondValue writes v with status, nil as a rejection.
func respondValue[T any](c *gin.Context, status int, v *T, err error) {
	if err != nil {
		respondDispatchError(c, err)
		return
	}
	if v == nil {
		respondRejected(c)
		return
	}
	c.JSON(status, v)
}

// respondAction answers 204 when the backend accepted the transition.
func respondAction(c *gin.Context, ok bool, err error) {
	if err != nil {
		respondDispatchError(c, err)
		return
	}
	if !ok {
		respondRejected(c)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindBody decodes the request JSON into a T, answering 400 on failure.
func bindBody[T any](c *gin.Context) (T, bool) {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
		return v, false
	}
	return v, true
}
