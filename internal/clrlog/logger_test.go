package clrlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_FiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	l.Infof("should not appear")
	l.Warnf("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
	assert.Contains(t, out, "WARN")
}

func TestLogger_TagsMessagesWithRunID(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)
	l.Debugf("hello")

	prefix := l.RunID().String()[:8]
	assert.True(t, strings.Contains(buf.String(), prefix))
}
