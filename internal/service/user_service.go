package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"huronportal/internal/apperror"
	"huronportal/internal/auth"
	"huronportal/internal/logger"
	"huronportal/internal/model"
	"huronportal/internal/repository"
	"huronportal/internal/validation"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,max=100,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required"`
	IsActive *bool  `json:"isActive,omitempty"`
}

type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitnil,min=3,max=50,username"`
	Email    *string `json:"email" validate:"omitnil,max=100,email"`
	Name     *string `json:"name" validate:"omitnil,min=1,max=100"`
	Password *string `json:"password" validate:"omitnil,min=8,max=128"`
	Role     *string `json:"role" validate:"omitnil,min=1"`
	IsActive *bool   `json:"isActive"`
	Version  *uint64 `json:"version,omitempty"`
}

// DTO for returning User without exposing the password digest
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      auth.Role  `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	Version   uint64     `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type ListUsersQuery struct {
	Search   string
	Role     string
	IsActive *bool
	Page     repository.PageRequest
}

// UserService defines the business logic of the users admin panel
type UserService interface {
	CreateUser(ctx context.Context, actor *Actor, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, q ListUsersQuery) (repository.Page[UserResponse], error)
	UpdateUser(ctx context.Context, actor *Actor, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actor *Actor, id string) error
}

type userService struct {
	repo        repository.UserRepository
	txManager   repository.TransactionManager
	hasher      auth.PasswordHasher
	revocations auth.RevocationStore
	notifier    ChangeNotifier
	log         *slog.Logger
	now         func() time.Time
}

// NewUserService returns a new instance of UserService. A nil revocation
// store leaves sessions valid until they expire.
func NewUserService(
	repo repository.UserRepository,
	txManager repository.TransactionManager,
	hasher auth.PasswordHasher,
	revocations auth.RevocationStore,
	notifier ChangeNotifier,
) UserService {
	if revocations == nil {
		revocations = auth.NopRevocationStore{}
	}
	return &userService{
		repo:        repo,
		txManager:   txManager,
		hasher:      hasher,
		revocations: revocations,
		notifier:    notifierOrNop(notifier),
		log:         logger.WithComponent("user-service"),
		now:         time.Now,
	}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		Version:   user.Version,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func parseRole(s string) (auth.Role, error) {
	role, ok := auth.ParseRole(s)
	if !ok {
		return "", apperror.NewValidation("Invalid data", apperror.FieldError{
			Field:   "role",
			Message: "role must be one of Admin, Controller, Viewer",
		})
	}
	return role, nil
}

func (s *userService) hashPassword(password string) (string, error) {
	digest, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.NewValidation("Invalid data", apperror.FieldError{
			Field:   "password",
			Message: "password must not exceed 72 bytes",
		})
	}
	if err != nil {
		return "", apperror.NewInternal("failed to hash password", err)
	}
	return digest, nil
}

// ensureAvailable rejects a username or email already held by another user.
func (s *userService) ensureAvailable(ctx context.Context, username, email, excludeID string) error {
	if username != "" {
		other, err := s.repo.GetByUsername(ctx, username)
		if err != nil {
			return repoError(err, "User")
		}
		if other != nil && other.ID != excludeID {
			return apperror.NewDuplicate("Username already exists", "username")
		}
	}
	if email != "" {
		other, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return repoError(err, "User")
		}
		if other != nil && other.ID != excludeID {
			return apperror.NewDuplicate("Email already exists", "email")
		}
	}
	return nil
}

func duplicateUser(err error) error {
	if errors.Is(err, apperror.ErrDuplicate) {
		return apperror.NewDuplicate("Username or email already exists", "")
	}
	return repoError(err, "User")
}

func (s *userService) CreateUser(ctx context.Context, actor *Actor, req CreateUserRequest) (*UserResponse, error) {
	req.Username = validation.NormalizeIdentity(req.Username)
	req.Email = validation.NormalizeIdentity(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, req.Username, req.Email, ""); err != nil {
		return nil, err
	}

	digest, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		Name:           req.Name,
		PasswordDigest: digest,
		Role:           role,
		IsActive:       req.IsActive == nil || *req.IsActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, duplicateUser(err)
	}

	s.log.Info("user created", "user_id", user.ID, "role", user.Role, "by", actorName(actor))
	s.notifier.Notify(EntityUser, ActionCreated, user.ID)
	return mapToResponse(user), nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "User")
	}
	if user == nil {
		return nil, apperror.NewNotFound("User")
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, q ListUsersQuery) (repository.Page[UserResponse], error) {
	filter := repository.UserFilter{Search: q.Search, IsActive: q.IsActive}
	if q.Role != "" {
		role, err := parseRole(q.Role)
		if err != nil {
			return repository.Page[UserResponse]{}, err
		}
		filter.Role = role
	}

	page, err := s.repo.List(ctx, filter, q.Page)
	if err != nil {
		return repository.Page[UserResponse]{}, repoError(err, "User")
	}

	out := repository.Page[UserResponse]{
		Items:      make([]UserResponse, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		out.Items = append(out.Items, *mapToResponse(&page.Items[i]))
	}
	return out, nil
}

// UpdateUser applies a partial update. Changing the role or deactivating the
// account revokes every session the user currently holds; a failure to do so
// rolls the update back.
func (s *userService) UpdateUser(ctx context.Context, actor *Actor, id string, req UpdateUserRequest) (*UserResponse, error) {
	if req.Username != nil {
		v := validation.NormalizeIdentity(*req.Username)
		req.Username = &v
	}
	if req.Email != nil {
		v := validation.NormalizeIdentity(*req.Email)
		req.Email = &v
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var role auth.Role
	if req.Role != nil {
		r, err := parseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}

	var user *model.User
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return repoError(err, "User")
		}
		if current == nil {
			return apperror.NewNotFound("User")
		}
		if err := checkVersion(req.Version, current.Version, "User"); err != nil {
			return err
		}

		var username, email string
		if req.Username != nil && *req.Username != current.Username {
			username = *req.Username
		}
		if req.Email != nil && *req.Email != current.Email {
			email = *req.Email
		}
		if err := s.ensureAvailable(txCtx, username, email, current.ID); err != nil {
			return err
		}

		revoke := false
		if username != "" {
			current.Username = username
		}
		if email != "" {
			current.Email = email
		}
		if req.Name != nil {
			current.Name = *req.Name
		}
		if req.Password != nil {
			digest, err := s.hashPassword(*req.Password)
			if err != nil {
				return err
			}
			current.PasswordDigest = digest
		}
		if role != "" && role != current.Role {
			current.Role = role
			revoke = true
		}
		if req.IsActive != nil && *req.IsActive != current.IsActive {
			current.IsActive = *req.IsActive
			revoke = revoke || !current.IsActive
		}

		if err := s.repo.Update(txCtx, current); err != nil {
			return duplicateUser(err)
		}
		if revoke {
			if err := s.revocations.RevokeUser(txCtx, current.ID, s.now()); err != nil {
				return apperror.NewInternal("failed to revoke user sessions", err)
			}
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user updated", "user_id", user.ID, "version", user.Version, "by", actorName(actor))
	s.notifier.Notify(EntityUser, ActionUpdated, user.ID)
	return mapToResponse(user), nil
}

// DeleteUser removes a user and revokes their sessions. An admin can never
// delete their own account.
func (s *userService) DeleteUser(ctx context.Context, actor *Actor, id string) error {
	if actor != nil && actor.UserID == id {
		return apperror.NewBadRequest(apperror.CodeSelfDelete, "You cannot delete your own account")
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return repoError(err, "User")
		}
		if err := s.revocations.RevokeUser(txCtx, id, s.now()); err != nil {
			return apperror.NewInternal("failed to revoke user sessions", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("user deleted", "user_id", id, "by", actorName(actor))
	s.notifier.Notify(EntityUser, ActionDeleted, id)
	return nil
}
