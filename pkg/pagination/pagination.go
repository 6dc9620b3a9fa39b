package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
	MinLimit     = 1

	// TokenParam is the query parameter carrying the opaque cursor.
	TokenParam = "continuationToken"
)

// Params holds validated pagination parameters.
type Params struct {
	Limit  int
	Cursor string
}

// Parse extracts limit and continuation token from query parameters. Missing or
// non-numeric limits default to DefaultLimit; values above MaxLimit are clamped.
func Parse(c *gin.Context) Params {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Limit:  limit,
		Cursor: c.Query(TokenParam),
	}
}

// ParseOptional is Parse for listings that are returned whole by default: with
// no limit parameter the Limit is zero, meaning every row.
func ParseOptional(c *gin.Context) Params {
	if _, ok := c.GetQuery("limit"); !ok {
		return Params{Cursor: c.Query(TokenParam)}
	}
	return Parse(c)
}

// Cursor marks the last row of a page in (sort key, id) order.
type Cursor struct {
	Key string `json:"k"`
	ID  string `json:"id"`
}

var ErrInvalidCursor = errors.New("invalid continuation token")

func EncodeCursor(key, id string) string {
	raw, _ := json.Marshal(Cursor{Key: key, ID: id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
		return Cursor{}, ErrInvalidCursor
	}
	return c, nil
}
