package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "session"

	DefaultSessionDuration = time.Hour
)

// Session is the verified identity carried by a session token.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Claims is the signed token payload. The registered jti claim holds the
// session id used for revocation.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256 session tokens. It is safe for
// concurrent use.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, for deterministic expiry in tests.
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	m.now = now
	return m
}

func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue mints a token for the given identity, valid for the configured TTL.
func (m *SessionManager) Issue(userID, username string, role Role) (string, *Session, error) {
	if userID == "" {
		return "", nil, errors.New("issue session: empty user id")
	}
	if len(m.secret) == 0 {
		return "", nil, errors.New("issue session: signing secret not configured")
	}

	issuedAt := m.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(m.ttl)
	sid := uuid.NewString()

	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}

	return token, &Session{
		ID:        sid,
		UserID:    userID,
		Username:  username,
		Role:      role,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks the signature and expiry of token. Any failure, including a
// missing claim or an unknown role, yields (nil, false).
func (m *SessionManager) Verify(token string) (*Session, bool) {
	if token == "" || len(m.secret) == 0 {
		return nil, false
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, false
	}

	if claims.UserID == "" || claims.ID == "" || claims.IssuedAt == nil || !claims.Role.Valid() {
		return nil, false
	}

	return &Session{
		ID:        claims.ID,
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, true
}
