package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/twentyone/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{" warn ", WARN, false},
		{"warning", WARN, false},
		{"Error", ERROR, false},
		{"verbose", INFO, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, WARN)

	logger.Debug("dealt %d cards", 4)
	logger.Info("round started")
	assert.Empty(t, buf.String(), "messages below WARN should be dropped")

	logger.Warn("deck exhausted")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "deck exhausted")
	assert.Contains(t, buf.String(), "logger_test.go", "caller should point at the call site")

	buf.Reset()
	logger.SetLevel(DEBUG)
	logger.Debug("dealt %d cards", 4)
	assert.Contains(t, buf.String(), "dealt 4 cards")
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, INFO)

	logger.LogError(types.WrapError(types.ErrDatabaseError, "wallet save failed", errors.New("locked")))
	out := buf.String()
	assert.Contains(t, out, "Code: DATABASE_ERROR")
	assert.Contains(t, out, "Message: wallet save failed")
	assert.Contains(t, out, "Cause: locked")

	buf.Reset()
	logger.LogError(errors.New("boom"))
	assert.Contains(t, buf.String(), "Unexpected error: boom")
}

func TestTimestampFromClock(t *testing.T) {
	var buf bytes.Buffer
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 2, 29, 23, 59, 58, 250_000_000, time.Local))
	logger := NewLoggerWithWriter(&buf, DEBUG)
	logger.SetClock(clock)

	logger.Info("dealer stands")

	assert.Contains(t, buf.String(), "[2024-02-29 23:59:58.250] INFO ")
}
