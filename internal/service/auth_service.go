package service

import (
	"context"
	"log/slog"
	"time"

	"huronportal/internal/apperror"
	"huronportal/internal/auth"
	"huronportal/internal/logger"
	"huronportal/internal/model"
	"huronportal/internal/repository"
	"huronportal/internal/validation"
)

// LoginRequest accepts either the username or the email in Username.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginResult struct {
	Token   string        `json:"-"`
	Session *auth.Session `json:"-"`

	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// Logout revokes the session carried by token when it is still valid.
	// It never fails: an unusable token has nothing left to revoke.
	Logout(ctx context.Context, token string)
	// Authenticate verifies token and checks it against the revocation store.
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
}

type authService struct {
	users       repository.UserRepository
	hasher      auth.PasswordHasher
	sessions    *auth.SessionManager
	revocations auth.RevocationStore
	log         *slog.Logger
	now         func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	hasher auth.PasswordHasher,
	sessions *auth.SessionManager,
	revocations auth.RevocationStore,
) AuthService {
	if revocations == nil {
		revocations = auth.NopRevocationStore{}
	}
	return &authService{
		users:       users,
		hasher:      hasher,
		sessions:    sessions,
		revocations: revocations,
		log:         logger.WithComponent("auth-service"),
		now:         time.Now,
	}
}

func (s *authService) findUser(ctx context.Context, login string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, login)
	if err != nil || user != nil {
		return user, err
	}
	return s.users.GetByEmail(ctx, login)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Username = validation.NormalizeIdentity(req.Username)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, req.Username)
	if err != nil {
		return nil, repoError(err, "User")
	}
	// Unknown, inactive and wrong-password logins are indistinguishable.
	if user == nil || !user.IsActive || !s.hasher.Verify(req.Password, user.PasswordDigest) {
		s.log.Warn("login rejected", "login", req.Username)
		return nil, apperror.NewInvalidCredentials()
	}

	token, sess, err := s.sessions.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, apperror.NewInternal("failed to issue session", err)
	}

	logIfErr(s.log, "record last login failed", s.users.TouchLastLogin(ctx, user.ID, s.now()), "user_id", user.ID)

	s.log.Info("login succeeded", "user_id", user.ID, "role", user.Role)
	return &LoginResult{
		Token:    token,
		Session:  sess,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) {
	sess, ok := s.sessions.Verify(token)
	if !ok {
		return
	}
	logIfErr(s.log, "revoke session failed", s.revocations.RevokeSession(ctx, sess.ID, sess.ExpiresAt), "user_id", sess.UserID)
	s.log.Info("logout", "user_id", sess.UserID)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*auth.Session, error) {
	sess, ok := s.sessions.Verify(token)
	if !ok {
		return nil, apperror.NewUnauthenticated("Authentication required")
	}
	revoked, err := s.revocations.IsRevoked(ctx, sess)
	if err != nil {
		// Fail closed.
		s.log.Error("revocation lookup failed", "user_id", sess.UserID, "error", err)
		return nil, apperror.NewUnauthenticated("Session could not be verified")
	}
	if revoked {
		return nil, apperror.NewUnauthenticated("Session has been revoked")
	}
	return sess, nil
}
