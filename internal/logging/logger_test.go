package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/pulsedeck/internal/model"
)

func TestNew_JSONFormat(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	l := New(model.LoggingConfig{Level: "debug", Format: "json"}, &buf)

	l.WithField("request_id", "abc").Debug("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "abc", entry["request_id"])
}

func TestNew_Levels(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, logrus.InfoLevel, New(model.LoggingConfig{Level: "bogus"}, nil).GetLevel())
	assert.Equal(t, logrus.WarnLevel, New(model.LoggingConfig{Level: "warn"}, nil).GetLevel())

	t.Setenv("LOG_LEVEL", "error")
	assert.Equal(t, logrus.ErrorLevel, New(model.LoggingConfig{Level: "debug"}, nil).GetLevel())
}

func TestLoadEnv_OverloadsInOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PULSEDECK_TEST_VAR=base\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.dev"), []byte("PULSEDECK_TEST_VAR=dev\n"), 0o644))
	chdir(t, dir)
	t.Setenv("PULSEDECK_TEST_VAR", "process")

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	LoadEnv(logger)

	assert.Equal(t, "dev", os.Getenv("PULSEDECK_TEST_VAR"))
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, ".env, .env.dev")
}

func TestLoadEnv_NoFiles(t *testing.T) {
	chdir(t, t.TempDir())
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	LoadEnv(logger)
	LoadEnv(nil)

	require.Len(t, hook.Entries, 1)
	assert.Contains(t, hook.Entries[0].Message, "No local env files")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
