package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKeyIsRenamed(t *testing.T) {
	var b bytes.Buffer
	l := NewWriter(&b, slog.LevelInfo)

	l.Error("frame failed", "error", errors.New("boom"))
	l.Debug("hidden")

	assert.Contains(t, b.String(), "err=boom")
	assert.NotContains(t, b.String(), "error=")
	assert.NotContains(t, b.String(), "hidden")
}

func TestNop(t *testing.T) {
	l := NewNop()
	assert.NotNil(t, l)
	l.Info("discarded")
}
