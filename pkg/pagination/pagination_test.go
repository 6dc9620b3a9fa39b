package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseQuery(query string) Params {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/clients?"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	assert.Equal(t, Params{Limit: DefaultLimit}, parseQuery(""))
	assert.Equal(t, Params{Limit: 2, Cursor: "abc"}, parseQuery("limit=2&continuationToken=abc"))
	assert.Equal(t, MaxLimit, parseQuery("limit=1000").Limit)
	assert.Equal(t, DefaultLimit, parseQuery("limit=0").Limit)
	assert.Equal(t, DefaultLimit, parseQuery("limit=ten").Limit)
}

func TestParseOptional(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/machine-types?continuationToken=abc", nil)
	assert.Equal(t, Params{Cursor: "abc"}, ParseOptional(c))

	c.Request = httptest.NewRequest("GET", "/machine-types?limit=500", nil)
	assert.Equal(t, Params{Limit: MaxLimit}, ParseOptional(c))
}

func TestCursorRoundTrip(t *testing.T) {
	token := EncodeCursor("Bombardier Aéronautique", "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed")

	c, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "Bombardier Aéronautique", c.Key)
	assert.Equal(t, "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed", c.ID)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, token := range []string{"!!!", "bm90LWpzb24", EncodeCursor("k", "")} {
		_, err := DecodeCursor(token)
		assert.ErrorIs(t, err, ErrInvalidCursor, token)
	}
}
