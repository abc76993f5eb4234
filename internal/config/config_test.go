package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 8080, cfg.HTTP.Port)

	assert.Equal(t, 7*24*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.Security.CSRFTokenTTL)
	assert.Equal(t, 5, cfg.Security.MaxLoginAttempts)
	assert.Equal(t, time.Hour, cfg.Security.AttemptWindow)
	assert.Equal(t, 15*time.Minute, cfg.Security.LockoutDuration)
	assert.Equal(t, 500*time.Millisecond, cfg.Security.FailedLoginDelay)

	assert.Equal(t, "https://www.hebcal.com", cfg.Calendar.BaseURL)
}

func TestValidateProductionNeedsDatabase(t *testing.T) {
	cfg := &AppConfig{
		Environment: "production",
		Security: SecurityConfig{
			SessionTTL:       time.Hour,
			MaxLoginAttempts: 5,
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres.dsn")
}

func TestValidateDevelopmentAllowsNoDatabase(t *testing.T) {
	cfg := &AppConfig{
		Environment: "development",
		Security: SecurityConfig{
			SessionTTL:       time.Hour,
			MaxLoginAttempts: 5,
		},
	}

	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBrokenLimits(t *testing.T) {
	cfg := &AppConfig{
		Environment: "development",
		Security: SecurityConfig{
			SessionTTL:       time.Hour,
			MaxLoginAttempts: 0,
		},
	}
	assert.Error(t, cfg.Validate())

	cfg.Security.MaxLoginAttempts = 5
	cfg.Security.SessionTTL = 0
	assert.Error(t, cfg.Validate())
}
