package logging_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/nodeapi/logging"
)

func TestSetup_Level(t *testing.T) {
	entry := logging.Setup("debug", "server")
	assert.Equal(t, logrus.DebugLevel, entry.Logger.GetLevel())
	assert.Equal(t, "server", entry.Data["subsystem"])
	assert.Equal(t, logging.Service, entry.Data["service"])
}

func TestSetup_InvalidLevelFallsBack(t *testing.T) {
	entry := logging.Setup("loud", "server")
	assert.Equal(t, logrus.GetLevel(), entry.Logger.GetLevel())
}

func TestSetup_None(t *testing.T) {
	entry := logging.Setup(logging.None, "server")
	assert.Equal(t, io.Discard, entry.Logger.Out)
}

func TestWithRequest(t *testing.T) {
	var buf bytes.Buffer
	entry := logging.Setup("info", "http")
	entry.Logger.SetOutput(&buf)

	ctx := logging.WithSource(logging.WithRequestID(context.Background(), "abc-123"), "http")
	id, ok := logging.RequestID(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc-123", id)

	logger := logging.WithRequest(ctx, entry)
	assert.Equal(t, "abc-123", logger.Data["req-id"])
	assert.Equal(t, "http", logger.Data["src"])

	logger.Info("hello")
	assert.Contains(t, buf.String(), "abc-123")
	assert.Contains(t, buf.String(), "hello")
}

func TestWithRequest_Unset(t *testing.T) {
	logger := logging.WithRequest(context.Background(), logging.Discard())
	id, _ := logger.Data["req-id"].(string)
	assert.Contains(t, id, "unset.")
	assert.NotEqual(t, logging.NewRequestID(), logging.NewRequestID())
}
