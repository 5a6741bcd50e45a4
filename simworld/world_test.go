package simworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatspace/worldline/frame"
	"github.com/flatspace/worldline/object"
)

func TestWorldAddObjectAndState(t *testing.T) {
	w := New(1e-8, true)
	o := object.New("a", "alpha")
	w.AddObject(o, frame.State{Tau: 1})

	st, err := w.State("a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.Tau)

	_, err = w.State("missing")
	assert.Equal(t, ErrUnknownObject, err)
}

func TestWorldActiveCompleteBookkeeping(t *testing.T) {
	w := New(1e-8, true)
	o := object.New("a", "alpha")
	w.AddObject(o, frame.State{})

	w.MarkActive("k1", "a")
	assert.True(t, w.IsActive("k1"))

	w.MarkComplete("k1")
	assert.False(t, w.IsActive("k1"), "expected k1 no longer active after completion")
	assert.True(t, w.IsComplete("k1"))
}
