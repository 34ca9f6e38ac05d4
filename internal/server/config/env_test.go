package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	orig := lookupEnv
	t.Cleanup(func() { lookupEnv = orig })
	lookupEnv = func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func Test_parseEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Chdir(t.TempDir())

	stubEnv(t, map[string]string{
		"HTTP_ADDR":      ":1",
		"GRPC_ADDR":      "",
		"DATABASE_DSN":   "dsn",
		"STORAGE":        "memory",
		"REDIS_ADDR":     "r:1",
		"SWEEP_INTERVAL": "90s",
		"BCRYPT_COST":    "4",
	})

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, Config{
		HTTPAddr:         ":1",
		EndpointAddrGRPC: "",
		DatabaseDSN:      "dsn",
		Storage:          "memory",
		RedisAddr:        "r:1",
		SweepInterval:    90 * time.Second,
		BcryptCost:       4,
	}, *cfg)
}

func Test_parseEnv_BadValuesPanic(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Chdir(t.TempDir())

	stubEnv(t, map[string]string{"SWEEP_INTERVAL": "often"})
	assert.Panics(t, func() { parseEnv(&Config{}) })

	stubEnv(t, map[string]string{"BCRYPT_COST": "x"})
	assert.Panics(t, func() { parseEnv(&Config{}) })
}

func Test_loadEnvFile(t *testing.T) {
	t.Run("explicit file is loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("BACHECA_TEST_ONLY=yes\n"), 0o600))
		t.Setenv("BACHECA_TEST_ONLY", "")
		require.NoError(t, os.Unsetenv("BACHECA_TEST_ONLY"))

		loadEnvFile(path)
		assert.Equal(t, "yes", os.Getenv("BACHECA_TEST_ONLY"))
	})

	t.Run("missing default file is fine", func(t *testing.T) {
		t.Chdir(t.TempDir())
		assert.NotPanics(t, func() { loadEnvFile("") })
	})

	t.Run("missing explicit file panics", func(t *testing.T) {
		assert.Panics(t, func() { loadEnvFile(filepath.Join(t.TempDir(), "none.env")) })
	})
}
