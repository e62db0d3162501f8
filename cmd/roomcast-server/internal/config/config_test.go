package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5555", cfg.Server.ListenAddr)
	assert.Equal(t, 64, cfg.Server.IntakeCapacity)
	assert.Equal(t, 64, cfg.Server.SubscriptionCapacity)
	assert.Equal(t, 128, cfg.Server.HistoryCapacity)
	assert.Equal(t, time.Duration(0), cfg.Server.IdleTimeout)
	assert.Equal(t, 1024, cfg.Server.ReadBufferSize)
	assert.Equal(t, "raw", cfg.Server.Framing)
	assert.Equal(t, 1<<20, cfg.Server.MaxFrameSize)
	assert.Equal(t, "plain", cfg.Server.Transport)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.EnableNotifications)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "roomcast_", cfg.Database.Prefix)
	assert.Equal(t, 1024, cfg.Database.ArchiveQueueSize)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "127.0.0.1:7000")
	t.Setenv("INTAKE_CAPACITY", "8")
	t.Setenv("SUBSCRIPTION_CAPACITY", "16")
	t.Setenv("HISTORY_CAPACITY", "0")
	t.Setenv("IDLE_TIMEOUT", "30s")
	t.Setenv("FRAMING", "length")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_NAME", "/tmp/roomcast.db")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("ARCHIVE_RETENTION", "24h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.Server.ListenAddr)
	assert.Equal(t, 8, cfg.Server.IntakeCapacity)
	assert.Equal(t, 16, cfg.Server.SubscriptionCapacity)
	assert.Equal(t, 0, cfg.Server.HistoryCapacity)
	assert.Equal(t, 30*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, "length", cfg.Server.Framing)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.True(t, cfg.Database.Enabled())
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 24*time.Hour, cfg.Database.ArchiveRetention)
	assert.Equal(t, "/tmp/roomcast.db", cfg.Database.GetDSN())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "zero intake capacity", env: map[string]string{"INTAKE_CAPACITY": "0"}},
		{name: "negative history", env: map[string]string{"HISTORY_CAPACITY": "-1"}},
		{name: "unknown framing", env: map[string]string{"FRAMING": "lines"}},
		{name: "unknown transport", env: map[string]string{"TRANSPORT": "quic"}},
		{name: "tls without files", env: map[string]string{"TRANSPORT": "tls"}},
		{name: "tls without key", env: map[string]string{"TRANSPORT": "tls", "TLS_CERT_FILE": "server.crt"}},
		{name: "unknown log level", env: map[string]string{"LOG_LEVEL": "verbose"}},
		{name: "unknown log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "oracle"}},
		{name: "mysql without password", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "zero archive queue", env: map[string]string{"DB_DRIVER": "sqlite3", "ARCHIVE_QUEUE_SIZE": "0"}},
		{name: "unparsable duration", env: map[string]string{"IDLE_TIMEOUT": "soon"}},
		{name: "unparsable int", env: map[string]string{"READ_BUFFER_SIZE": "big"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_TLS(t *testing.T) {
	t.Setenv("TRANSPORT", "tls")
	t.Setenv("TLS_CERT_FILE", "server.crt")
	t.Setenv("TLS_KEY_FILE", "server.key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tls", cfg.Server.Transport)
	assert.Equal(t, "server.crt", cfg.Server.TLSCertFile)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "mysql default port",
			cfg:  DatabaseConfig{Driver: "mysql", Host: "db", User: "u", Password: "p", Database: "rc"},
			want: "u:p@tcp(db:3306)/rc?parseTime=true",
		},
		{
			name: "postgres explicit port",
			cfg:  DatabaseConfig{Driver: "postgres", Host: "db", Port: 6432, User: "u", Password: "p", Database: "rc"},
			want: "host=db port=6432 user=u password=p dbname=rc sslmode=disable",
		},
		{
			name: "sqlite3 path",
			cfg:  DatabaseConfig{Driver: "sqlite3", Database: "rc.db"},
			want: "rc.db",
		},
		{
			name: "unknown driver",
			cfg:  DatabaseConfig{Driver: "oracle"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.GetDSN())
		})
	}
}
