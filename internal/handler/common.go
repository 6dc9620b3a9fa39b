package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"huronportal/internal/apperror"
	"huronportal/internal/repository"
	"huronportal/pkg/pagination"
)

// bindJSON decodes the request body into dst. Malformed JSON or wrong field
// types become a validation error.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperror.NewValidation("Invalid request payload: " + err.Error())
	}
	return nil
}

// expectedVersion fills version from an If-Match header when the body did
// not carry one. Both `"3"` and `W/"3"` are accepted.
func expectedVersion(c *gin.Context, version **uint64) error {
	if *version != nil {
		return nil
	}
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" || raw == "*" {
		return nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return apperror.NewValidation("Invalid If-Match header", apperror.FieldError{
			Field:   "If-Match",
			Message: "If-Match must hold the entity version",
		})
	}
	*version = &v
	return nil
}

// setETag exposes the entity version for conditional updates.
func setETag(c *gin.Context, version uint64) {
	c.Header("ETag", `"`+strconv.FormatUint(version, 10)+`"`)
}

func pageRequest(c *gin.Context) repository.PageRequest {
	p := pagination.Parse(c)
	return repository.PageRequest{Limit: p.Limit, Cursor: p.Cursor}
}

// fullListRequest pages only when the caller asks for a limit.
func fullListRequest(c *gin.Context) repository.PageRequest {
	p := pagination.ParseOptional(c)
	return repository.PageRequest{Limit: p.Limit, Cursor: p.Cursor}
}
