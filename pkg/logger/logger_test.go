package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("CreateAppointment: skipped id=%d", 1)
	assert.Empty(t, buf.String())

	log.Warn("CreateAppointment: slot taken staff=%s", "s1")
	assert.Contains(t, buf.String(), "CreateAppointment: slot taken staff=s1")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("", "verbose")
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error("nothing %s", "happens")
	assert.NoError(t, log.Close())
}
