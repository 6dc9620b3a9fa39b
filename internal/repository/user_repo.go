package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"huronportal/internal/auth"
	"huronportal/internal/model"
)

type UserFilter struct {
	Search   string
	Role     auth.Role
	IsActive *bool
}

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, filter UserFilter, page PageRequest) (Page[model.User], error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	// TouchLastLogin records a successful login without bumping the version,
	// so concurrent admin edits are not invalidated by the user signing in.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(GetDB(ctx, r.db).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	found, err := first(GetDB(ctx, r.db).Where(query, arg), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, page PageRequest) (Page[model.User], error) {
	q := GetDB(ctx, r.db).Model(&model.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	q = containsAny(q, filter.Search, "username", "name", "email")
	return fetchPage(q, "username", page,
		func(u *model.User) string { return u.Username },
		func(u *model.User) string { return u.ID })
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return updateVersioned(GetDB(ctx, r.db), user, "last_login")
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(GetDB(ctx, r.db), &model.User{}, id)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.User{}).Where("id = ?", id).UpdateColumn("last_login", at).Error
}
