package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "public", cfg.Database.Schema)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.HeartbeatInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.Scheduler.ReminderWindow)
	assert.Equal(t, "/tmp/crm_heartbeat_log.txt", cfg.Scheduler.HeartbeatLog)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SCHEDULER_API_URL", "http://crm:8080/")
	t.Setenv("SCHEDULER_RESTOCK_INTERVAL", "30m")
	t.Setenv("SCHEDULER_REPORT_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://crm:8080", cfg.Scheduler.APIURL)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.RestockInterval)
	assert.False(t, cfg.Scheduler.ReportEnabled)
}
