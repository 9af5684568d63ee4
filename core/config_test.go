package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_defaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv(envPrefix+"_CONFIG_DIR", t.TempDir())

	conf, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "DEV", conf.Env)
	assert.True(t, conf.Debug)
	assert.False(t, conf.TestMode)
	assert.Equal(t, defaultBaseURL, conf.API.BaseURL)
	assert.Equal(t, "sqlite", conf.Storage.Driver)
	assert.Equal(t, time.Second, conf.Exam.TickInterval)
	assert.Equal(t, 5*time.Minute, conf.Exam.WarningWindow)
	assert.Equal(t, 3*time.Second, conf.Exam.WarningDuration)
	assert.Equal(t, "s_admin@gmail.com", conf.DevAPI.SuperAdminEmail)
}

func TestNewConfig_env(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv(envPrefix+"_CONFIG_DIR", t.TempDir())
	t.Setenv("EDUMASTER_API_BASEURL", "http://localhost:4000/")
	t.Setenv("EDUMASTER_STORAGE_DRIVER", "Redis")
	t.Setenv("EDUMASTER_EXAM_TICKINTERVAL", "250ms")
	t.Setenv("EDUMASTER_DEVAPI_SUPERADMINEMAIL", " Root@Test.cd ")

	conf, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, "http://localhost:4000", conf.API.BaseURL)
	assert.Equal(t, "redis", conf.Storage.Driver)
	assert.Equal(t, 250*time.Millisecond, conf.Exam.TickInterval)
	assert.Equal(t, "root@test.cd", conf.DevAPI.SuperAdminEmail)
}

func TestNewConfig_dotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", ".env.qa"), []byte("EDUMASTER_BUILD=qa-42\nEDUMASTER_DEBUG=false\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("EDUMASTER_BUILD")
		_ = os.Unsetenv("EDUMASTER_DEBUG")
	})

	t.Setenv("ENV", "qa")
	t.Setenv(envPrefix+"_CONFIG_DIR", dir)

	conf, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "QA", conf.Env)
	assert.Equal(t, "qa-42", conf.Build)
	assert.False(t, conf.Debug)
}

func TestNewConfig_invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "empty base url", env: map[string]string{"EDUMASTER_API_BASEURL": "/"}, wantErr: "api.baseUrl must not be empty"},
		{name: "zero tick", env: map[string]string{"EDUMASTER_EXAM_TICKINTERVAL": "0s"}, wantErr: "exam.tickInterval must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "")
			t.Setenv(envPrefix+"_CONFIG_DIR", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewConfig()
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
