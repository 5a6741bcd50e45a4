package object

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMotionRejectsOverlap(t *testing.T) {
	o := New("a", "alpha")
	require.NoError(t, o.AddMotion(Inertial{Start: 0, End: 5}))
	assert.Equal(t, ErrInvalidMotion, o.AddMotion(Inertial{Start: 3, End: 8}))
}

func TestAddMotionAcceptsAdjacentSegments(t *testing.T) {
	o := New("a", "alpha")
	require.NoError(t, o.AddMotion(Inertial{Start: 0, End: 5}))
	require.NoError(t, o.AddMotion(Inertial{Start: 5, End: 10}))
	assert.Len(t, o.Motions(), 2)
}

func TestAddMotionOrdersByStart(t *testing.T) {
	o := New("a", "alpha")
	_ = o.AddMotion(Inertial{Start: 5, End: 10})
	_ = o.AddMotion(Inertial{Start: 0, End: 5})
	ms := o.Motions()
	require.Len(t, ms, 2)
	assert.Equal(t, 0.0, ms[0].TauStart())
	assert.Equal(t, 5.0, ms[1].TauStart())
}

func TestAddActionRejectsBackwardsInterval(t *testing.T) {
	o := New("a", "alpha")
	require.NoError(t, o.AddAction(Marker{Name: "x", Tau: 5}))
	bad := DetectCollision{Name: "x", Start: 5, Until: 1}
	assert.Equal(t, ErrInvalidAction, o.AddAction(bad))
}

func TestActionsOrderedByStartThenEndThenKey(t *testing.T) {
	o := New("a", "alpha")
	_ = o.AddAction(Marker{Name: "b", Tau: 1})
	_ = o.AddAction(Marker{Name: "a", Tau: 1})
	_ = o.AddAction(DetectCollision{Name: "z", Start: 0, Until: math.Inf(1)})
	as := o.Actions()
	require.Len(t, as, 3)
	assert.Equal(t, 0.0, as[0].TauStart(), "expected earliest-start action first")
	assert.LessOrEqual(t, as[1].Key(), as[2].Key(), "expected stable key tiebreak among equal (start,end)")
}
