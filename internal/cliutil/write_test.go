package cliutil

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWritef(t *testing.T) {
	var buf bytes.Buffer
	Writef(&buf, "%s: %d promoted", "AddressType", 1)
	assert.Equal(t, "AddressType: 1 promoted", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWritef_WriteError(t *testing.T) {
	assert.NotPanics(t, func() { Writef(failingWriter{}, "lost") })
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0 conflicts", Count(0, "conflict"))
	assert.Equal(t, "1 conflict", Count(1, "conflict"))
	assert.Equal(t, "3 files", Count(3, "file"))
}
