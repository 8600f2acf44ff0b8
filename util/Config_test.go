package util

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"OTP_TTL", "OTP_ALLOW_REPLAY", "OTP_STORE", "OTP_SWEEP_INTERVAL", "OTP_EXPOSE_ACTIVE", "ADMIN_JWT_SECRET"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := LoadConfig()
	assert.Equal(t, 3*time.Minute, cfg.OtpTTL)
	assert.True(t, cfg.AllowReplay)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Empty(t, cfg.AdminJWTSecret)
	assert.False(t, cfg.ExposeActive)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("OTP_ALLOW_REPLAY", "false")
	t.Setenv("OTP_SWEEP_INTERVAL", "0")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("RATE_LIMIT_MAX", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 90*time.Second, cfg.OtpTTL)
	assert.False(t, cfg.AllowReplay)
	assert.Zero(t, cfg.SweepInterval)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, 5, cfg.RateLimitMax)
}
