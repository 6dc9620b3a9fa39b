package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huronportal/internal/config"
	"huronportal/internal/model"
)

func TestConnector_OpensOnceAndMigrates(t *testing.T) {
	c := NewConnector(config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"})
	t.Cleanup(func() { _ = c.Close() })

	db1, err := c.DB()
	require.NoError(t, err)
	db2, err := c.DB()
	require.NoError(t, err)
	assert.Same(t, db1, db2)

	require.NoError(t, Migrate(db1))
	for _, m := range Models {
		assert.True(t, db1.Migrator().HasTable(m))
	}
	assert.True(t, db1.Migrator().HasIndex(&model.MachineType{}, "idx_machine_types_name_key"))
}

func TestConnector_StickyError(t *testing.T) {
	c := NewConnector(config.DatabaseConfig{Driver: "oracle"})
	_, err := c.DB()
	require.Error(t, err)
	_, err2 := c.DB()
	assert.Equal(t, err, err2)
	assert.NoError(t, c.Close())
}

func TestDialectorFor(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "sqlite"} {
		d, err := dialectorFor(config.DatabaseConfig{Driver: driver, Host: "db", Port: 1, Name: "portal"})
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}
	_, err := dialectorFor(config.DatabaseConfig{})
	assert.Error(t, err)
}
