package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rst/farmcontrol/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.DatabaseConfig
		want   string
		errMsg string
	}{
		{name: "postgres", cfg: config.DatabaseConfig{Driver: config.DriverPostgres, Host: "localhost", Port: 5432}, want: "postgres"},
		{name: "empty driver defaults to postgres", cfg: config.DatabaseConfig{Host: "localhost", Port: 5432}, want: "postgres"},
		{name: "mysql", cfg: config.DatabaseConfig{Driver: config.DriverMySQL, Host: "localhost", Port: 3306}, want: "mysql"},
		{name: "sqlite", cfg: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, want: "sqlite"},
		{name: "unknown", cfg: config.DatabaseConfig{Driver: "oracle"}, errMsg: `unsupported database driver "oracle"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Dialector(&tt.cfg)
			if tt.errMsg != "" {
				assert.EqualError(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func newSQLiteDatabase(t *testing.T) (*Database, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "rst.db")
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	return db, path
}

func TestNewDatabase_SQLite(t *testing.T) {
	db, path := newSQLiteDatabase(t)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, config.DriverSQLite, db.Driver())
	_, err := os.Stat(filepath.Dir(path))
	assert.NoError(t, err, "data directory should be created")

	require.NoError(t, db.AutoMigrate())
	for _, table := range []string{"cost_entries", "suppliers", "sales", "sale_items"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}

	stats, err := db.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Stats().MaxOpenConnections)
}

func TestDatabase_PingAndClose(t *testing.T) {
	db, _ := newSQLiteDatabase(t)

	require.NoError(t, db.Ping(context.Background()))
	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

type recordingPlugin struct{ initialized bool }

func (p *recordingPlugin) Name() string { return "recording" }

func (p *recordingPlugin) Initialize(*gorm.DB) error {
	p.initialized = true
	return nil
}

func TestDatabase_Use(t *testing.T) {
	db, _ := newSQLiteDatabase(t)
	t.Cleanup(func() { _ = db.Close() })

	plugin := &recordingPlugin{}
	require.NoError(t, db.Use(plugin))
	assert.True(t, plugin.initialized)

	assert.Error(t, db.Use(plugin), "registering the same plugin twice fails")
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
