package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		logger, err := New(DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
		assert.Equal(t, os.Stderr, logger.Out)
		assert.NoError(t, Close(logger))
	})

	t.Run("text format and debug level", func(t *testing.T) {
		logger, err := New(Config{Level: "debug", Format: "text"})
		require.NoError(t, err)
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := New(Config{Level: "loud"})
		assert.Error(t, err)

		_, err = New(Config{Format: "xml"})
		assert.Error(t, err)
	})
}

// TestFileOutput 测试写入滚动日志文件
func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docmatch.log")
	cfg := DefaultConfig()
	cfg.File = path
	cfg.Compress = true

	logger, err := New(cfg)
	require.NoError(t, err)
	require.IsType(t, &lumberjack.Logger{}, logger.Out)
	rotator := logger.Out.(*lumberjack.Logger)
	assert.True(t, rotator.Compress)
	assert.Equal(t, cfg.MaxSizeMB, rotator.MaxSize)

	logger.WithField("comparison_id", "abc").Info("Comparison completed")
	require.NoError(t, Close(logger))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "abc", entry["comparison_id"])
	assert.Equal(t, "Comparison completed", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}
