package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDSN(t *testing.T) {
	db := DBConfig{Host: "db", Port: 1521, User: "quiz", Password: "p@ss", DBName: "FREEPDB1"}

	tests := []struct {
		driver string
		want   string
	}{
		{DriverOracle, "oracle://quiz:p%40ss@db:1521/FREEPDB1"},
		{DriverGodror, `user="quiz" password="p@ss" connectString="db:1521/FREEPDB1"`},
		{DriverPgx, "postgres://quiz:p%40ss@db:1521/FREEPDB1?sslmode=disable"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg := &Config{DB: db}
			cfg.DB.Driver = tt.driver
			assert.Equal(t, tt.want, cfg.GetDSN())
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Config{DB: DBConfig{Driver: DriverPgx}}).Validate())
	assert.Error(t, (&Config{DB: DBConfig{Driver: "mysql"}}).Validate())
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPgx, cfg.DB.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Anonymous.SessionTTL)
	assert.Equal(t, "view_sittings", cfg.JWT.MarkerPermission)
	assert.Equal(t, "change_quiz", cfg.JWT.EditorPermission)
	assert.Equal(t, "qwen3:0.6b", cfg.Marking.Model)
	assert.Equal(t, 30*time.Second, cfg.Marking.Timeout)
}
