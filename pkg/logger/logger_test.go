package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newBufferedLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	log, err := NewLogger(&Config{Level: DebugLevel, Format: "json", AppName: "EcoWaste", Version: "1.0.0"})
	require.NoError(t, err)
	var buf bytes.Buffer
	log.SetOutput(&buf)
	return log, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestJSONFormatterStampsApp(t *testing.T) {
	log, buf := newBufferedLogger(t)

	log.WithField("component", "test").Info("hello")

	entry := decodeLine(t, buf)
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "EcoWaste", entry["app"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "test", entry["component"])
}

func TestWithFieldDoesNotLeak(t *testing.T) {
	log, buf := newBufferedLogger(t)

	_ = log.WithField("request_id", "abc")
	log.Info("plain")

	entry := decodeLine(t, buf)
	assert.NotContains(t, entry, "request_id")
}

func TestLogPayoutEvent(t *testing.T) {
	log, buf := newBufferedLogger(t)
	requestID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	log.LogPayoutEvent(requestID, userID, 60, 10)

	entry := decodeLine(t, buf)
	assert.Equal(t, "payout_event", entry["type"])
	assert.Equal(t, requestID.Hex(), entry["waste_request_id"])
	assert.Equal(t, userID.Hex(), entry["user_id"])
	assert.Equal(t, float64(60), entry["amount"])
}

func TestLogAPIRequestAnonymous(t *testing.T) {
	log, buf := newBufferedLogger(t)

	log.LogAPIRequest("GET", "/api/health", 200, 15*time.Millisecond, nil)

	entry := decodeLine(t, buf)
	assert.Equal(t, float64(200), entry["status_code"])
	assert.Equal(t, float64(15), entry["duration_ms"])
	assert.NotContains(t, entry, "user_id")
}

func TestSetLevelFiltersDebug(t *testing.T) {
	log, buf := newBufferedLogger(t)
	log.SetLevel(WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.NotZero(t, buf.Len())
}
