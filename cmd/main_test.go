package main

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Leganyst/samara-beach/internal/config"
	"github.com/Leganyst/samara-beach/internal/model"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "samara version "+Version+"\n", out.String())
}

func sqliteConfig(t *testing.T) *config.DBConfig {
	return &config.DBConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "samara.db"),
	}
}

func TestOpenDB_Migrates(t *testing.T) {
	gormDB, err := openDB(sqliteConfig(t), model.AutoMigrate)
	require.NoError(t, err)
	t.Cleanup(func() { closeDB(gormDB, slog.Default()) })

	assert.True(t, gormDB.Migrator().HasTable(&model.SamaraBooking{}))
}

func TestOpenDB_ClosesPoolWhenMigrationFails(t *testing.T) {
	var opened *gorm.DB
	_, err := openDB(sqliteConfig(t), func(db *gorm.DB) error {
		opened = db
		return errors.New("migration failed")
	})
	require.ErrorContains(t, err, "auto migrate")
	require.NotNil(t, opened)

	sqlDB, err := opened.DB()
	require.NoError(t, err)
	require.Error(t, sqlDB.Ping(), "pool must be closed after a failed migration")
}
