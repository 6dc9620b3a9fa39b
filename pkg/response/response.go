package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"huronportal/internal/apperror"
	"huronportal/internal/logger"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"`

	Details []apperror.FieldError `json:"details,omitempty"`
}

// ListResponse is the success envelope of a paginated listing.
type ListResponse struct {
	Status            string      `json:"status"`
	StatusCode        int         `json:"status_code"`
	Data              interface{} `json:"data"`
	ContinuationToken string      `json:"continuationToken,omitempty"`
	HasMore           bool        `json:"hasMore"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// SuccessWithMessage is Success plus a human-readable confirmation.
func SuccessWithMessage(statusCode int, data interface{}, message string) Response {
	r := Success(statusCode, data)
	r.Message = message
	return r
}

// List wraps one page of items. An empty next token means the listing is
// exhausted.
func List(items interface{}, nextToken string) ListResponse {
	return ListResponse{
		Status:            "success",
		StatusCode:        http.StatusOK,
		Data:              items,
		ContinuationToken: nextToken,
		HasMore:           nextToken != "",
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError builds the error envelope for err. Anything that is not an
// *apperror.AppError is reported as a 500 without leaking its message.
func FromError(err error) Response {
	appErr := apperror.Get(err)
	if appErr == nil || appErr.Type == apperror.TypeInternal {
		return Response{
			Status:     "error",
			StatusCode: http.StatusInternalServerError,
			Error:      "Internal server error",
			Code:       apperror.CodeServerError,
		}
	}
	return Response{
		Status:     "error",
		StatusCode: appErr.Status,
		Error:      appErr.Message,
		Code:       appErr.Code,
		Details:    appErr.Details,
	}
}

// Fail aborts the request with the envelope for err, logging server errors.
func Fail(c *gin.Context, err error) {
	resp := FromError(err)
	if resp.StatusCode >= http.StatusInternalServerError {
		logger.Get().Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(resp.StatusCode, resp)
}
