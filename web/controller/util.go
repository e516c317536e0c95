package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/portal/logger"
	"github.com/schoolhub/portal/web/entity"
	"github.com/schoolhub/portal/web/service"
)

// jsonError translates a service error to its HTTP status and a {message}
// body. Storage and other unexpected failures are logged and masked.
func jsonError(c *gin.Context, err error) {
	status := errStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed:", err)
		msg = "internal error"
	}
	c.JSON(status, entity.Msg{Message: msg})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrUnknownUser):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// jsonBadRequest reports a malformed request body or parameter.
func jsonBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, entity.Msg{Message: msg})
}

// entryId parses the numeric :id path parameter.
func entryId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		jsonBadRequest(c, "bad entry id")
		return 0, false
	}
	return id, true
}
