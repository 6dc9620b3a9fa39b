package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"huronportal/internal/apperror"
	"huronportal/internal/auth"
	"huronportal/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Client{}, &model.Machine{}, &model.MachineType{}))
	return db
}

func seedClient(t *testing.T, repo ClientRepository, name string) *model.Client {
	t.Helper()
	c := &model.Client{CompanyName: name, Address: "1 Rue Principale", Province: "QC", PostalCode: "H4S1Y9"}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestClientRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))

	c := seedClient(t, repo, "Bombardier")
	assert.NotEmpty(t, c.ID)
	assert.EqualValues(t, 1, c.Version)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Bombardier", got.CompanyName)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	got.Address = "2 Rue Secondaire"
	require.NoError(t, repo.Update(ctx, got))
	assert.EqualValues(t, 2, got.Version)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), apperror.ErrNotFound)
}

func TestUpdateVersioned_StaleVersionRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))
	c := seedClient(t, repo, "Acme")

	a, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	b, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)

	a.CompanyName = "Acme A"
	require.NoError(t, repo.Update(ctx, a))

	b.CompanyName = "Acme B"
	err = repo.Update(ctx, b)
	assert.ErrorIs(t, err, apperror.ErrVersionMismatch)
	assert.EqualValues(t, 1, b.Version, "version restored after a failed write")

	stored, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme A", stored.CompanyName)
}

func TestClientRepository_UpdateKeepsRefreshedMachineCount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	clients := NewClientRepository(db)
	machines := NewMachineRepository(db)
	c := seedClient(t, clients, "Acme")

	stale, err := clients.GetByID(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, machines.Create(ctx, &model.Machine{NumeroOL: "OL-1", Type: "EX", ClientID: c.ID, ClientName: c.CompanyName}))
	require.NoError(t, clients.RefreshMachineCount(ctx, c.ID))

	stale.Address = "9 Rue Neuve"
	require.NoError(t, clients.Update(ctx, stale))
	assert.Equal(t, 1, stale.MachineCount, "entity reloaded after the write")

	stored, err := clients.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.MachineCount)
	assert.Equal(t, "9 Rue Neuve", stored.Address)
}

func TestMachineRepository_UpdateKeepsClientName(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	clients := NewClientRepository(db)
	machines := NewMachineRepository(db)
	a := seedClient(t, clients, "Acme")
	b := seedClient(t, clients, "Beta")

	m := &model.Machine{NumeroOL: "OL-1", Type: "EX", ClientID: a.ID, ClientName: a.CompanyName}
	require.NoError(t, machines.Create(ctx, m))
	stale, err := machines.GetByID(ctx, m.ID)
	require.NoError(t, err)

	require.NoError(t, machines.RenameClient(ctx, a.ID, "Acme Renamed"))

	stale.Type = "EX 2"
	require.NoError(t, machines.Update(ctx, stale))
	assert.Equal(t, "Acme Renamed", stale.ClientName)

	stored, err := machines.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Renamed", stored.ClientName)
	assert.Equal(t, "EX 2", stored.Type)

	stored.ClientID = b.ID
	require.NoError(t, machines.Update(ctx, stored))
	assert.Equal(t, "Beta", stored.ClientName, "moving a machine copies the new owner's name")
}

func TestUserRepository_UpdateKeepsLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	u := &model.User{Username: "jdoe", Email: "jdoe@example.com", Name: "J Doe", PasswordDigest: "x", Role: auth.RoleViewer, IsActive: true}
	require.NoError(t, repo.Create(ctx, u))

	stale, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, repo.TouchLastLogin(ctx, u.ID, at))

	stale.Name = "John Doe"
	require.NoError(t, repo.Update(ctx, stale))

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, at.Equal(*stored.LastLogin))
	assert.Equal(t, "John Doe", stored.Name)
}

func TestClientRepository_PaginationRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))
	for _, name := range []string{"Delta", "Alpha", "Echo", "Charlie", "Bravo"} {
		seedClient(t, repo, name)
	}
	// Same sort key, tie broken by id.
	seedClient(t, repo, "Bravo")

	all, err := repo.List(ctx, ClientFilter{}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 6)
	assert.Empty(t, all.NextCursor)

	var paged []model.Client
	cursor := ""
	for i := 0; i < 10; i++ {
		page, err := repo.List(ctx, ClientFilter{}, PageRequest{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		paged = append(paged, page.Items...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	require.Len(t, paged, len(all.Items))
	for i := range all.Items {
		assert.Equal(t, all.Items[i].ID, paged[i].ID, "position %d", i)
	}
	assert.Equal(t, "Alpha", paged[0].CompanyName)
}

func TestFetchPage_ExactMultipleHasNoTrailingCursor(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))
	seedClient(t, repo, "A")
	seedClient(t, repo, "B")

	page, err := repo.List(ctx, ClientFilter{}, PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Empty(t, page.NextCursor)
}

func TestFetchPage_InvalidCursor(t *testing.T) {
	repo := NewClientRepository(newTestDB(t))
	_, err := repo.List(context.Background(), ClientFilter{}, PageRequest{Limit: 2, Cursor: "%%%"})
	assert.True(t, apperror.Is(err, apperror.TypeValidation))
}

func TestClientRepository_SearchIsCaseInsensitiveAndLiteral(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))
	seedClient(t, repo, "Bombardier Aéronautique")
	seedClient(t, repo, "Pratt & Whitney")
	seedClient(t, repo, "100% Usinage")

	page, err := repo.List(ctx, ClientFilter{Search: "BOMB"}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Bombardier Aéronautique", page.Items[0].CompanyName)

	page, err = repo.List(ctx, ClientFilter{Search: "0%"}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "100% Usinage", page.Items[0].CompanyName)
}

func TestMachineRepository_UniqueNumeroOL(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	clients := NewClientRepository(db)
	machines := NewMachineRepository(db)
	c := seedClient(t, clients, "Acme")

	require.NoError(t, machines.Create(ctx, &model.Machine{NumeroOL: "OL-1", Type: "Fraiseuse", ClientID: c.ID, ClientName: c.CompanyName}))
	err := machines.Create(ctx, &model.Machine{NumeroOL: "OL-1", Type: "Tour", ClientID: c.ID, ClientName: c.CompanyName})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	found, err := machines.GetByNumeroOL(ctx, "OL-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Fraiseuse", found.Type)
}

func TestMachineRepository_FiltersAndCounts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	clients := NewClientRepository(db)
	machines := NewMachineRepository(db)
	a := seedClient(t, clients, "Alpha")
	b := seedClient(t, clients, "Beta")
	mtID := "mt-1"

	for i, c := range []*model.Client{a, a, b} {
		m := &model.Machine{NumeroOL: fmt.Sprintf("OL-%d", i), Type: "Fraiseuse 5 axes", ClientID: c.ID, ClientName: c.CompanyName}
		if i == 0 {
			m.MachineTypeID = &mtID
		}
		require.NoError(t, machines.Create(ctx, m))
	}

	page, err := machines.List(ctx, MachineFilter{ClientID: a.ID}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = machines.List(ctx, MachineFilter{NumeroOL: "ol-2"}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b.ID, page.Items[0].ClientID)

	page, err = machines.List(ctx, MachineFilter{Search: "beta"}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	n, err := machines.CountByClient(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = machines.CountByMachineType(ctx, mtID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, clients.RefreshMachineCount(ctx, a.ID))
	stored, err := clients.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.MachineCount)
	assert.EqualValues(t, 1, stored.Version, "counter refresh leaves the version alone")

	require.NoError(t, machines.RenameClient(ctx, a.ID, "Alpha Inc."))
	page, err = machines.List(ctx, MachineFilter{ClientID: a.ID}, PageRequest{})
	require.NoError(t, err)
	for _, m := range page.Items {
		assert.Equal(t, "Alpha Inc.", m.ClientName)
	}
}

func newMachineType(name string) *model.MachineType {
	return &model.MachineType{
		MachineTypeID: 180, Name: name, Manufacturer: "Huron",
		X: 1000, Y: 800, Z: 500,
		A: decimal.NewFromInt(110), B: decimal.Zero, C: model.UnlimitedRotation,
	}
}

func TestMachineTypeRepository_CaseInsensitiveUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewMachineTypeRepository(newTestDB(t))

	mt := newMachineType("KX10")
	require.NoError(t, repo.Create(ctx, mt))

	exists, err := repo.NameExists(ctx, "kx10", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.NameExists(ctx, "kx10", mt.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.Create(ctx, newMachineType("kx10"))
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	stored, err := repo.GetByID(ctx, mt.ID)
	require.NoError(t, err)
	assert.True(t, stored.C.Equal(model.UnlimitedRotation))
	assert.True(t, stored.A.Equal(decimal.NewFromInt(110)))
}

func TestMachineTypeRepository_SearchNameOrManufacturer(t *testing.T) {
	ctx := context.Background()
	repo := NewMachineTypeRepository(newTestDB(t))
	require.NoError(t, repo.Create(ctx, newMachineType("EX 180")))
	other := newMachineType("VMC 1000")
	other.Manufacturer = "Haas"
	require.NoError(t, repo.Create(ctx, other))

	page, err := repo.List(ctx, MachineTypeFilter{Search: "haas"}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "VMC 1000", page.Items[0].Name)

	page, err = repo.List(ctx, MachineTypeFilter{Search: "ex"}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestUserRepository_FiltersAndLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	users := []*model.User{
		{Username: "admin", Email: "admin@example.com", Name: "Admin", PasswordDigest: "x", Role: auth.RoleAdmin, IsActive: true},
		{Username: "ctl", Email: "ctl@example.com", Name: "Controller", PasswordDigest: "x", Role: auth.RoleController, IsActive: false},
		{Username: "view", Email: "view@example.com", Name: "Viewer", PasswordDigest: "x", Role: auth.RoleViewer, IsActive: true},
	}
	for _, u := range users {
		require.NoError(t, repo.Create(ctx, u))
	}

	inactive, err := repo.GetByUsername(ctx, "ctl")
	require.NoError(t, err)
	assert.False(t, inactive.IsActive, "false is persisted, not replaced by a column default")

	active := true
	page, err := repo.List(ctx, UserFilter{IsActive: &active}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = repo.List(ctx, UserFilter{Role: auth.RoleViewer}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "view", page.Items[0].Username)

	err = repo.Create(ctx, &model.User{Username: "other", Email: "admin@example.com", Name: "x", PasswordDigest: "x", Role: auth.RoleViewer})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.TouchLastLogin(ctx, users[0].ID, at))
	u, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.LastLogin)
	assert.True(t, at.Equal(*u.LastLogin))
	assert.EqualValues(t, 1, u.Version)
}

func TestTransactionManager_RollbackAndNesting(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tx := NewTransactionManager(db)
	clients := NewClientRepository(db)

	boom := errors.New("boom")
	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		seedClientCtx(t, txCtx, clients, "Rolled Back")
		return tx.RunInTx(txCtx, func(inner context.Context) error {
			seedClientCtx(t, inner, clients, "Inner")
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	page, err := clients.List(ctx, ClientFilter{}, PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	require.NoError(t, tx.RunInTx(ctx, func(txCtx context.Context) error {
		seedClientCtx(t, txCtx, clients, "Committed")
		return nil
	}))
	page, err = clients.List(ctx, ClientFilter{}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func seedClientCtx(t *testing.T, ctx context.Context, repo ClientRepository, name string) {
	t.Helper()
	require.NoError(t, repo.Create(ctx, &model.Client{CompanyName: name, Address: "a", Province: "QC", PostalCode: "H4S1Y9"}))
}
