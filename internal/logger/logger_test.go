package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ABEL-1010/Inventory-Management-System/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	closer, err := Setup(config.LogConfig{File: path, Level: "debug", Format: "json"})
	require.NoError(t, err)
	defer func() {
		log.SetOutput(os.Stdout)
		_ = closer.Close()
	}()

	assert.Equal(t, log.DebugLevel, log.GetLevel())
	log.WithField("item_id", 7).Info("stock changed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"item_id":7`)
	assert.Contains(t, string(data), "stock changed")
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
