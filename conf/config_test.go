package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
app_name: cryptosignals
listen: ":9000"
database:
  host: db.local
  username: app
redis:
  address: "localhost:6379"
jwt:
  secret: s3cret
seed:
  delay: 800ms
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	require.NoError(t, LoadConfig(path))
	assert.Equal(t, ":9000", AppConfig.Listen)
	assert.True(t, AppConfig.Db.Enabled())
	assert.Equal(t, "signal_lifecycle", AppConfig.Kafka.Topic)
	assert.Equal(t, int64(86400), AppConfig.Jwt.JwtTtl)
	assert.Equal(t, 800*time.Millisecond, AppConfig.Seed.Delay)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DB_HOST", "mysql")
	t.Setenv("DB_USER", "root")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("KAFKA_BROKER", "kafka:9092")

	cfg := &Config{}
	cfg.ApplyEnv()

	assert.Equal(t, "mysql", cfg.Host)
	assert.Equal(t, "root", cfg.Username)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "from-env", cfg.Jwt.Secret)
	assert.Equal(t, "kafka:9092", cfg.Kafka.Broker)
}
