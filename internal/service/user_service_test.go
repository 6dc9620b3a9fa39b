package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"huronportal/internal/apperror"
	"huronportal/internal/auth"
)

type authFixture struct {
	*fixture
	hasher      *auth.BcryptHasher
	sessions    *auth.SessionManager
	revocations *auth.RedisRevocationStore
	redis       *miniredis.Miniredis

	userSvc UserService
	authSvc AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := newFixture(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	af := &authFixture{
		fixture:     f,
		hasher:      auth.NewBcryptHasher(bcrypt.MinCost),
		sessions:    auth.NewSessionManager("test-secret", time.Hour),
		revocations: auth.NewRedisRevocationStore(client, time.Hour),
		redis:       mr,
	}
	af.userSvc = NewUserService(f.users, f.tx, af.hasher, af.revocations, f.notifier)
	af.authSvc = NewAuthService(f.users, af.hasher, af.sessions, af.revocations)
	return af
}

func (f *authFixture) createUser(t *testing.T, username, role string) *UserResponse {
	t.Helper()
	u, err := f.userSvc.CreateUser(context.Background(), testAdmin, CreateUserRequest{
		Username: username,
		Email:    username + "@huronportal.com",
		Name:     "User " + username,
		Password: "Secret123!",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func TestUserService_CreateNormalizesIdentity(t *testing.T) {
	f := newAuthFixture(t)

	u, err := f.userSvc.CreateUser(context.Background(), testAdmin, CreateUserRequest{
		Username: "  JDoe ",
		Email:    "JDoe@Example.COM",
		Name:     "Jane Doe",
		Password: "Secret123!",
		Role:     "contrôleur",
	})
	require.NoError(t, err)
	assert.Equal(t, "jdoe", u.Username)
	assert.Equal(t, "jdoe@example.com", u.Email)
	assert.Equal(t, auth.RoleController, u.Role)
	assert.True(t, u.IsActive)

	stored, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, f.hasher.Verify("Secret123!", stored.PasswordDigest))
}

func TestUserService_CreateRejectsDuplicates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "jdoe", "Viewer")

	_, err := f.userSvc.CreateUser(ctx, testAdmin, CreateUserRequest{
		Username: "JDOE", Email: "other@huronportal.com", Name: "X", Password: "Secret123!", Role: "Viewer",
	})
	assertAppError(t, err, apperror.TypeDuplicate, apperror.CodeDuplicate)
	assert.Equal(t, "username", apperror.Get(err).Details[0].Field)

	_, err = f.userSvc.CreateUser(ctx, testAdmin, CreateUserRequest{
		Username: "other", Email: "JDOE@huronportal.com", Name: "X", Password: "Secret123!", Role: "Viewer",
	})
	assertAppError(t, err, apperror.TypeDuplicate, apperror.CodeDuplicate)
	assert.Equal(t, "email", apperror.Get(err).Details[0].Field)
}

func TestUserService_CreateValidation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.userSvc.CreateUser(ctx, testAdmin, CreateUserRequest{
		Username: "ab", Email: "not-an-email", Name: "X", Password: "short", Role: "Viewer",
	})
	assertAppError(t, err, apperror.TypeValidation, apperror.CodeValidation)
	assert.Len(t, apperror.Get(err).Details, 3)

	_, err = f.userSvc.CreateUser(ctx, testAdmin, CreateUserRequest{
		Username: "valid", Email: "valid@huronportal.com", Name: "X", Password: "Secret123!", Role: "Superuser",
	})
	assertAppError(t, err, apperror.TypeValidation, apperror.CodeValidation)

	_, err = f.userSvc.CreateUser(ctx, testAdmin, CreateUserRequest{
		Username: "valid", Email: "valid@huronportal.com", Name: "X", Password: strings.Repeat("p", 100), Role: "Viewer",
	})
	assertAppError(t, err, apperror.TypeValidation, apperror.CodeValidation)
}

func TestUserService_CreateInactive(t *testing.T) {
	f := newAuthFixture(t)

	u, err := f.userSvc.CreateUser(context.Background(), testAdmin, CreateUserRequest{
		Username: "dormant", Email: "dormant@huronportal.com", Name: "D", Password: "Secret123!", Role: "Viewer",
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}

func TestUserService_SelfDeleteForbidden(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.createUser(t, "boss", "Admin")
	actor := &Actor{UserID: admin.ID, Username: admin.Username, Role: auth.RoleAdmin}

	err := f.userSvc.DeleteUser(context.Background(), actor, admin.ID)
	assertAppError(t, err, apperror.TypeValidation, apperror.CodeSelfDelete)
	assert.Equal(t, 400, apperror.Get(err).Status)

	_, err = f.userSvc.GetUserByID(context.Background(), admin.ID)
	require.NoError(t, err)
}

func TestUserService_DeleteRevokesSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "leaving", "Controller")

	res, err := f.authSvc.Login(ctx, LoginRequest{Username: "leaving", Password: "Secret123!"})
	require.NoError(t, err)

	require.NoError(t, f.userSvc.DeleteUser(ctx, testAdmin, u.ID))
	_, err = f.authSvc.Authenticate(ctx, res.Token)
	assertAppError(t, err, apperror.TypeUnauthenticated, apperror.CodeUnauthenticated)

	err = f.userSvc.DeleteUser(ctx, testAdmin, u.ID)
	assertAppError(t, err, apperror.TypeNotFound, apperror.CodeNotFound)
}

func TestUserService_UpdateRoleRevokesSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "promoted", "Viewer")

	res, err := f.authSvc.Login(ctx, LoginRequest{Username: "promoted", Password: "Secret123!"})
	require.NoError(t, err)

	updated, err := f.userSvc.UpdateUser(ctx, testAdmin, u.ID, UpdateUserRequest{Role: strPtr("Controller")})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleController, updated.Role)

	_, err = f.authSvc.Authenticate(ctx, res.Token)
	assertAppError(t, err, apperror.TypeUnauthenticated, "")
}

func TestUserService_UpdateNameKeepsSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "renamed", "Viewer")

	res, err := f.authSvc.Login(ctx, LoginRequest{Username: "renamed", Password: "Secret123!"})
	require.NoError(t, err)

	updated, err := f.userSvc.UpdateUser(ctx, testAdmin, u.ID, UpdateUserRequest{
		Name:     strPtr("Renamed User"),
		Password: strPtr("NewSecret456!"),
		Version:  u64Ptr(u.Version),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed User", updated.Name)
	assert.EqualValues(t, u.Version+1, updated.Version)

	_, err = f.authSvc.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	_, err = f.authSvc.Login(ctx, LoginRequest{Username: "renamed", Password: "NewSecret456!"})
	require.NoError(t, err)

	_, err = f.userSvc.UpdateUser(ctx, testAdmin, u.ID, UpdateUserRequest{Name: strPtr("Stale"), Version: u64Ptr(u.Version)})
	assertAppError(t, err, apperror.TypeConcurrentModification, apperror.CodeVersionMismatch)
}

func TestUserService_UpdateRejectsTakenEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "first", "Viewer")
	second := f.createUser(t, "second", "Viewer")

	_, err := f.userSvc.UpdateUser(context.Background(), testAdmin, second.ID, UpdateUserRequest{
		Email: strPtr("FIRST@huronportal.com"),
	})
	assertAppError(t, err, apperror.TypeDuplicate, apperror.CodeDuplicate)
}

func TestUserService_RevocationFailureRollsBack(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "sticky", "Viewer")

	f.redis.Close()
	_, err := f.userSvc.UpdateUser(ctx, testAdmin, u.ID, UpdateUserRequest{IsActive: boolPtr(false)})
	assertAppError(t, err, apperror.TypeInternal, apperror.CodeServerError)

	got, err := f.userSvc.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, u.Version, got.Version)
}

func TestUserService_ListFilters(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "alice", "Admin")
	f.createUser(t, "bob", "Viewer")
	carol := f.createUser(t, "carol", "Viewer")
	_, err := f.userSvc.UpdateUser(ctx, testAdmin, carol.ID, UpdateUserRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)

	page, err := f.userSvc.ListUsers(ctx, ListUsersQuery{Role: "viewer"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "bob", page.Items[0].Username)

	page, err = f.userSvc.ListUsers(ctx, ListUsersQuery{Role: "Viewer", IsActive: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bob", page.Items[0].Username)

	page, err = f.userSvc.ListUsers(ctx, ListUsersQuery{Search: "ALI"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice", page.Items[0].Username)

	_, err = f.userSvc.ListUsers(ctx, ListUsersQuery{Role: "root"})
	assertAppError(t, err, apperror.TypeValidation, "")
}
