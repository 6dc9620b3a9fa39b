package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huronportal/internal/apperror"
)

func TestFromError(t *testing.T) {
	resp := FromError(apperror.NewValidation("Invalid data", apperror.FieldError{Field: "numeroOL", Message: "required"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperror.CodeValidation, resp.Code)
	assert.Equal(t, "Invalid data", resp.Error)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "numeroOL", resp.Details[0].Field)

	resp = FromError(errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, apperror.CodeServerError, resp.Code)
	assert.Equal(t, "Internal server error", resp.Error)

	resp = FromError(apperror.NewInternal("failed to access Client store", errors.New("disk full")))
	assert.Equal(t, "Internal server error", resp.Error)
}

func TestList(t *testing.T) {
	resp := List([]string{"a"}, "next")
	assert.True(t, resp.HasMore)
	assert.Equal(t, "next", resp.ContinuationToken)

	resp = List([]string{}, "")
	assert.False(t, resp.HasMore)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","status_code":200,"data":[],"hasMore":false}`, string(raw))
}

func TestFail_AbortsWithEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/machines/x", nil)

	Fail(c, apperror.NewNotFound("Machine"))

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, apperror.CodeNotFound, body.Code)
	assert.Len(t, c.Errors, 1)
}
