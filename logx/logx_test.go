package logx

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryAndLevelInOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(io.Discard)

	Info("BUILDER", "sealed block ", 3)
	Warn("VALIDATOR", "slow")
	Debug("CHAINSTORE", "put")

	out := buf.String()
	assert.Contains(t, out, "[INFO][BUILDER]")
	assert.Contains(t, out, "sealed block 3")
	assert.Contains(t, out, "[WARN][VALIDATOR]")
	assert.Contains(t, out, "[DEBUG][CHAINSTORE]")
}

func TestErrorfReturnsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(io.Discard)

	base := errors.New("boom")
	err := Errorf("wrapped: %w", base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, buf.String(), "[ERROR][ERROR]")
	assert.Contains(t, buf.String(), "wrapped: boom")
}

func TestGetEnvIntFallback(t *testing.T) {
	t.Setenv("LOGX_TEST_INT", "")
	assert.Equal(t, 5, getEnvInt("LOGX_TEST_INT", 5))

	t.Setenv("LOGX_TEST_INT", "12")
	assert.Equal(t, 12, getEnvInt("LOGX_TEST_INT", 5))

	t.Setenv("LOGX_TEST_INT", "nope")
	assert.Equal(t, 5, getEnvInt("LOGX_TEST_INT", 5))
}
