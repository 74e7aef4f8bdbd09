// Package handlers holds the gin handlers of the HTTP API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorKey is the gin context key under which the handled error is stored
// for the access log.
const ErrorKey = "marketscope.error"

// WriteError renders err with the status of its code.  Server-side failures
// hide their message.
func WriteError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown || code == errors.CodeOK {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: string(code)}
	var appErr *errors.AppError
	if status < http.StatusInternalServerError && errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	} else {
		resp.Message = errors.DefaultMessageForCode(code)
	}

	c.Set(ErrorKey, err)
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the body into v, mapping failures to a bad request.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		WriteError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "malformed request body").WithDetail(err.Error()))
		return false
	}
	return true
}

// parsePagination reads offset and limit.  Invalid values fall back to the
// defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	limit = 20
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	return offset, limit
}

//Personal.AI order the ending
