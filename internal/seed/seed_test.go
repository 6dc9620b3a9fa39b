package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"huronportal/internal/auth"
	"huronportal/internal/config"
	"huronportal/internal/database"
	"huronportal/internal/repository"
	"huronportal/internal/service"
)

type seedFixture struct {
	seeder       *Seeder
	hasher       *auth.BcryptHasher
	users        repository.UserRepository
	clients      repository.ClientRepository
	machines     repository.MachineRepository
	machineTypes repository.MachineTypeRepository
}

func newSeedFixture(t *testing.T) *seedFixture {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	f := &seedFixture{
		hasher:       auth.NewBcryptHasher(bcrypt.MinCost),
		users:        repository.NewUserRepository(db),
		clients:      repository.NewClientRepository(db),
		machines:     repository.NewMachineRepository(db),
		machineTypes: repository.NewMachineTypeRepository(db),
	}
	tx := repository.NewTransactionManager(db)
	clientSvc := service.NewClientService(f.clients, f.machines, tx, nil)
	machineSvc := service.NewMachineService(f.machines, f.clients, f.machineTypes, tx, nil)
	f.seeder = New(f.users, f.machineTypes, f.clients, f.machines, clientSvc, machineSvc, f.hasher)
	return f
}

func TestSeeder_AdminOnlyOnce(t *testing.T) {
	f := newSeedFixture(t)
	ctx := context.Background()

	rep, err := f.seeder.Admin(ctx, "Admin123!")
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 1}, rep)

	admin, err := f.users.GetByUsername(ctx, AdminUsername)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, AdminEmail, admin.Email)
	assert.Equal(t, auth.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.True(t, f.hasher.Verify("Admin123!", admin.PasswordDigest))

	rep, err = f.seeder.Admin(ctx, "another-password")
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 1}, rep)

	again, err := f.users.GetByUsername(ctx, AdminUsername)
	require.NoError(t, err)
	assert.Equal(t, admin.PasswordDigest, again.PasswordDigest)
}

func TestSeeder_MachineTypes(t *testing.T) {
	f := newSeedFixture(t)
	ctx := context.Background()

	rep, err := f.seeder.MachineTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 62, rep.Created)
	assert.Equal(t, 4, rep.Skipped)

	page, err := f.machineTypes.List(ctx, repository.MachineTypeFilter{Search: "K2X10"}, repository.PageRequest{})
	require.NoError(t, err)
	var k2x10 bool
	for _, mt := range page.Items {
		if mt.Name == "K2X10" {
			k2x10 = true
			assert.Equal(t, "Huron", mt.Manufacturer)
			assert.Equal(t, 210, mt.MachineTypeID)
			assert.Equal(t, []int{1000, 800, 500}, []int{mt.X, mt.Y, mt.Z})
			assert.Equal(t, SystemUser, mt.CreatedBy)
		}
	}
	assert.True(t, k2x10)

	rep, err = f.seeder.MachineTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: len(Catalogue())}, rep)
}

func TestSeeder_DemoIsIdempotent(t *testing.T) {
	f := newSeedFixture(t)
	ctx := context.Background()

	rep, err := f.seeder.Demo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5+3+4+5+6+7, rep.Created)
	assert.Zero(t, rep.Skipped)

	clients, err := f.clients.List(ctx, repository.ClientFilter{}, repository.PageRequest{})
	require.NoError(t, err)
	require.Len(t, clients.Items, 5)

	byName := make(map[string]int)
	for _, c := range clients.Items {
		byName[c.CompanyName] = c.MachineCount
	}
	assert.Equal(t, 3, byName["Bombardier Aéronautique"])
	assert.Equal(t, 7, byName["Linamar Corporation"])

	m, err := f.machines.GetByNumeroOL(ctx, "OL-01001")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Bombardier Aéronautique", m.ClientName)

	rep, err = f.seeder.Demo(ctx)
	require.NoError(t, err)
	assert.Zero(t, rep.Created)
	assert.Equal(t, 5+25, rep.Skipped)
}
