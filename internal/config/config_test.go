package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// inTempDir runs the test from an empty directory so no stray .env is read.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "order-events", cfg.OutboxTopic)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.Equal(t, 1.0, cfg.TraceSampleRatio)
}

func TestLoad_FromEnvironment(t *testing.T) {
	inTempDir(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REQUEST_TIMEOUT", "45")
	t.Setenv("SHUTDOWN_TIMEOUT", "2m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ORIGINS", "https://shop.example.com")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4318")
	t.Setenv("TRACE_SAMPLE_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Minute, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "otel-collector:4318", cfg.OTLPEndpoint)
	assert.Equal(t, 0.25, cfg.TraceSampleRatio)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := inTempDir(t)
	content := "JWT_SECRET=" + testSecret + "\nDB_NAME=from_file\nHTTP_PORT=9000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	t.Setenv("HTTP_PORT", "9100")
	// godotenv sets what it loads; register cleanups, then unset so the file applies
	for _, key := range []string{"DB_NAME", "JWT_SECRET"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from_file", cfg.DBName)
	assert.Equal(t, "9100", cfg.HTTPPort, "environment wins over .env")
}

func TestLoad_InvalidValues(t *testing.T) {
	inTempDir(t)
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DB_PORT", "fivefour")
	t.Setenv("PRODUCT_CACHE_TTL", "soon")
	t.Setenv("TRACE_SAMPLE_RATIO", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, "DB_PORT")
	assert.ErrorContains(t, err, "PRODUCT_CACHE_TTL")
	assert.ErrorContains(t, err, "JWT_SECRET")
	assert.ErrorContains(t, err, "TRACE_SAMPLE_RATIO")
}

func TestDuration_RejectsNonPositive(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "0")
	p := &parser{}

	d := p.duration("REQUEST_TIMEOUT", time.Second)

	assert.Equal(t, time.Second, d)
	assert.Len(t, p.errs, 1)
}
