package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/road"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/service/syncer"
)

var (
	errArchiveDisabled = errors.New("archive is disabled")
	errInvalidLimit    = errors.New("limit must be a positive integer")
)

// Response is the JSON envelope of every REST reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func okList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Count: &count})
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), Response{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnsupportedInterval),
		errors.Is(err, syncer.ErrEmptyFilter),
		errors.Is(err, road.ErrUnknownMode),
		errors.Is(err, errInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, syncer.ErrStaleRefresh):
		return http.StatusConflict
	case errors.Is(err, errArchiveDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, syncer.ErrTotalFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
