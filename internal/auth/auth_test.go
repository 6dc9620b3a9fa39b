package auth

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
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("Admin123!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$2a$"))

	assert.True(t, h.Verify("Admin123!", digest))
	assert.False(t, h.Verify("Admin123?", digest))
	assert.False(t, h.Verify("admin123!", digest))
	assert.False(t, h.Verify("Admin123!", "not-a-digest"))
	assert.False(t, h.Verify("Admin123!", ""))
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestBcryptHasher_RejectsOverlongPassword(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("x", 73))
	assert.Error(t, err)
}

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(99).cost)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(ttl time.Duration) (*SessionManager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewSessionManager("test-secret", ttl).WithClock(clock.Now), clock
}

func TestSession_IssueVerify(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	token, issued, err := m.Issue("u-1", "admin", RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.Equal(t, issued.IssuedAt.Add(time.Hour), issued.ExpiresAt)

	sess, ok := m.Verify(token)
	require.True(t, ok)
	assert.Equal(t, "u-1", sess.UserID)
	assert.Equal(t, "admin", sess.Username)
	assert.Equal(t, RoleAdmin, sess.Role)
	assert.Equal(t, issued.ID, sess.ID)
}

func TestSession_Expiry(t *testing.T) {
	m, clock := newTestManager(time.Hour)
	token, _, err := m.Issue("u-1", "ctl", RoleController)
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour - time.Second)
	_, ok := m.Verify(token)
	assert.True(t, ok, "valid just before expiry")

	clock.t = clock.t.Add(time.Second)
	_, ok = m.Verify(token)
	assert.False(t, ok, "invalid at expiry")

	clock.t = clock.t.Add(24 * time.Hour)
	_, ok = m.Verify(token)
	assert.False(t, ok)
}

func TestSession_TamperedTokenRejected(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	token, _, err := m.Issue("u-1", "viewer", RoleViewer)
	require.NoError(t, err)

	for i := range token {
		b := []byte(token)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, ok := m.Verify(string(b))
		assert.False(t, ok, "mutation at byte %d accepted", i)
	}
}

func TestSession_WrongSecretAndGarbage(t *testing.T) {
	m, clock := newTestManager(time.Hour)
	token, _, err := m.Issue("u-1", "admin", RoleAdmin)
	require.NoError(t, err)

	other := NewSessionManager("other-secret", time.Hour).WithClock(clock.Now)
	_, ok := other.Verify(token)
	assert.False(t, ok)

	for _, bad := range []string{"", "garbage", "a.b.c"} {
		_, ok := m.Verify(bad)
		assert.False(t, ok, bad)
	}
}

func TestSession_IssueRequiresUserID(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	_, _, err := m.Issue("", "x", RoleViewer)
	assert.Error(t, err)
}

func TestPermissionMatrix(t *testing.T) {
	assert.True(t, CanWrite(RoleAdmin))
	assert.True(t, CanWrite(RoleController))
	assert.False(t, CanWrite(RoleViewer))

	assert.True(t, CanDelete(RoleAdmin))
	assert.False(t, CanDelete(RoleController))
	assert.False(t, CanDelete(RoleViewer))

	assert.True(t, IsAdmin(RoleAdmin))
	assert.False(t, IsAdmin(RoleController))

	assert.Len(t, PermissionsFor(RoleAdmin), 12)
	assert.ElementsMatch(t,
		[]Permission{MachinesRead, MachinesCreate, MachinesUpdate, ClientsRead, ClientsCreate, ClientsUpdate},
		PermissionsFor(RoleController))
	assert.ElementsMatch(t, []Permission{MachinesRead, ClientsRead}, PermissionsFor(RoleViewer))

	for _, p := range []Permission{UsersRead, UsersCreate, UsersUpdate, UsersDelete} {
		assert.False(t, HasPermission(RoleController, p))
		assert.False(t, HasPermission(RoleViewer, p))
	}
	assert.False(t, HasPermission(Role("root"), MachinesRead))
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"Admin":       RoleAdmin,
		"controller":  RoleController,
		"Contrôleur":  RoleController,
		"Utilisateur": RoleViewer,
		"VIEWER":      RoleViewer,
	}
	for in, want := range cases {
		got, ok := ParseRole(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseRole("superuser")
	assert.False(t, ok)
}

func setupRevocation(t *testing.T) (*RedisRevocationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRevocationStore(client, time.Hour), mr
}

func TestRedisRevocationStore_Session(t *testing.T) {
	store, mr := setupRevocation(t)
	ctx := context.Background()
	now := time.Now()

	sess := &Session{ID: "sid-1", UserID: "u-1", IssuedAt: now.Add(-time.Minute), ExpiresAt: now.Add(time.Hour)}

	revoked, err := store.IsRevoked(ctx, sess)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.RevokeSession(ctx, sess.ID, sess.ExpiresAt))
	revoked, err = store.IsRevoked(ctx, sess)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Greater(t, mr.TTL(sessionRevokedPrefix+"sid-1"), 59*time.Minute)

	mr.FastForward(2 * time.Hour)
	revoked, err = store.IsRevoked(ctx, sess)
	require.NoError(t, err)
	assert.False(t, revoked, "marker expires with the session")
}

func TestRedisRevocationStore_User(t *testing.T) {
	store, _ := setupRevocation(t)
	ctx := context.Background()
	at := time.Now()

	before := &Session{ID: "old", UserID: "u-1", IssuedAt: at.Add(-10 * time.Minute)}
	after := &Session{ID: "new", UserID: "u-1", IssuedAt: at.Add(10 * time.Second)}
	otherUser := &Session{ID: "x", UserID: "u-2", IssuedAt: at.Add(-10 * time.Minute)}

	require.NoError(t, store.RevokeUser(ctx, "u-1", at))

	revoked, err := store.IsRevoked(ctx, before)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, after)
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = store.IsRevoked(ctx, otherUser)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevocationStore_ExpiredSessionIsNoop(t *testing.T) {
	store, mr := setupRevocation(t)
	require.NoError(t, store.RevokeSession(context.Background(), "gone", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists(sessionRevokedPrefix+"gone"))
}

func TestRedisRevocationStore_FailsWhenRedisDown(t *testing.T) {
	store, mr := setupRevocation(t)
	mr.Close()

	_, err := store.IsRevoked(context.Background(), &Session{ID: "s", UserID: "u"})
	assert.Error(t, err)
}

func TestNopRevocationStore(t *testing.T) {
	var store RevocationStore = NopRevocationStore{}
	ctx := context.Background()
	require.NoError(t, store.RevokeSession(ctx, "s", time.Now().Add(time.Hour)))
	require.NoError(t, store.RevokeUser(ctx, "u", time.Now()))
	revoked, err := store.IsRevoked(ctx, &Session{ID: "s", UserID: "u"})
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	_ = client.Close()

	client, err = ConnectRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()
}
