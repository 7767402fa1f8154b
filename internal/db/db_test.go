package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Leganyst/samara-beach/internal/config"
	"github.com/Leganyst/samara-beach/internal/model"
)

func TestNewGormDB_SQLite(t *testing.T) {
	cfg := &config.DBConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "samara.db"),
	}

	gormDB, err := NewGormDB(cfg)
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(gormDB))
	require.True(t, gormDB.Migrator().HasTable(&model.SamaraBooking{}))
	require.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewGormDB_UnsupportedDriver(t *testing.T) {
	_, err := NewGormDB(&config.DBConfig{Driver: config.DriverMemory})
	require.Error(t, err)
}
