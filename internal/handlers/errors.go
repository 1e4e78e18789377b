package handlers

import (
	"net/http"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/dto"

	"github.com/gin-gonic/gin"
)

func statusFor(kind dom.Kind) int {
	switch kind {
	case dom.KindConflict:
		return http.StatusConflict
	case dom.KindUnauthorized:
		return http.StatusUnauthorized
	case dom.KindNotFound:
		return http.StatusNotFound
	case dom.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error","kind"}. The underlying cause is only
// exposed in dev.
func writeError(c *gin.Context, dev bool, err error) {
	kind := dom.KindOf(err)
	status := statusFor(kind)
	body := dto.ErrorResponse{Error: dom.Message(err), Kind: kind.String()}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	if dev && body.Error != err.Error() {
		body.Detail = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, dev bool, err error) {
	writeError(c, dev, dom.Validation(err.Error()))
}
