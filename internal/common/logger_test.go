package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerConsoleOnly(t *testing.T) {
	config := NewDefaultConfig()
	config.Logging.Output = []string{"stdout"}
	config.Logging.Level = "debug"

	logger := InitLogger(config)
	require.NotNil(t, logger)

	assert.Equal(t, logger, GetLogger())
}

func TestGetLoggerWithoutInit(t *testing.T) {
	assert.NotNil(t, GetLogger())
}

func TestPrintBanner(t *testing.T) {
	PrintBanner(GetVersion())
}
