package ui

import (
	"bytes"
	"errors"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	bytes.Buffer
	closed   bool
	writeErr error
}

func (m *memWriter) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.Buffer.Write(p)
}

func (m *memWriter) Close() error  { m.closed = true; return nil }
func (m *memWriter) URI() fyne.URI { return storage.NewFileURI("/tmp/canvas-editor-1.png") }

func TestWriteFile(t *testing.T) {
	w := &memWriter{}
	require.NoError(t, writeFile(w, []byte("png")))
	assert.Equal(t, "png", w.String())
	assert.True(t, w.closed)

	bad := &memWriter{writeErr: errors.New("disk full")}
	err := writeFile(bad, []byte("png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canvas-editor-1.png")
	assert.True(t, bad.closed)
}
