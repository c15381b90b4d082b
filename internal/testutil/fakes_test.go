package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditsink/internal/logevent"
)

func TestFakeBundle_RecordsCallOrder(t *testing.T) {
	b := NewFakeBundle()

	shape, err := b.Builder.BuildShape("Logs", nil)
	require.NoError(t, err)
	require.NoError(t, b.Creator.CreateTable("main", "Logs", shape, nil))
	require.NoError(t, shape.Close())
	require.NoError(t, b.Writer.WriteEvent(&logevent.Event{}))

	assert.Equal(t, []string{"build", "create", "release", "write"}, b.Recorder.Calls())
	assert.Equal(t, 1, b.Shape.Closed())
	assert.Len(t, b.Writer.Events(), 1)
}

func TestFakeWriter_ReturnsConfiguredError(t *testing.T) {
	boom := errors.New("boom")
	w := &FakeWriter{Err: boom}

	err := w.WriteEvent(&logevent.Event{})
	assert.Same(t, boom, err)
	assert.Len(t, w.Events(), 1)
}
