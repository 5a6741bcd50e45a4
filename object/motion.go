package object

import (
	"errors"
	"math"

	"github.com/flatspace/worldline/frame"
	"github.com/flatspace/worldline/kinematics"
	"github.com/flatspace/worldline/vector"
)

// ErrInvalidMotion is returned when a Motion would overlap an existing one.
var ErrInvalidMotion = errors.New("object: invalid motion")

// Motion is the contract of spec.md §4.2: each variant knows how to advance
// an object either by proper time or by world-frame coordinate time, within
// a frame that is co-moving with the object at this motion's TauStart.
type Motion interface {
	TauStart() float64
	TauEnd() float64

	// MoveUntilProperTime returns the object's State, expressed in
	// coMovingFrame, at proper time tauTo. The contract guarantees the
	// returned Tau equals tauTo exactly.
	MoveUntilProperTime(coMovingFrame frame.Frame, tauNow, tauTo float64) (frame.State, error)

	// MoveUntilCoordinateTime returns the State, expressed in
	// coMovingFrame, corresponding to world-frame coordinate time t, or to
	// this motion's TauEnd if that is reached first.
	MoveUntilCoordinateTime(coMovingFrame frame.Frame, t float64) (frame.State, error)
}

// Inertial is motion at whatever velocity the previous segment left the
// object with: in its own co-moving frame the object simply sits at rest.
type Inertial struct {
	Start, End float64
}

func (m Inertial) TauStart() float64 { return m.Start }
func (m Inertial) TauEnd() float64   { return m.End }

func (m Inertial) MoveUntilProperTime(_ frame.Frame, tauNow, tauTo float64) (frame.State, error) {
	return frame.State{R: vector.NewVector4(tauTo-tauNow, vector.Zero3), V: vector.Zero3, Tau: tauTo}, nil
}

func (m Inertial) MoveUntilCoordinateTime(coMovingFrame frame.Frame, t float64) (frame.State, error) {
	gamma, err := kinematics.Gamma(coMovingFrame.V)
	if err != nil {
		return frame.State{}, err
	}
	dt := t - coMovingFrame.R.T
	dTau := dt / gamma
	if !math.IsInf(m.End, 1) {
		if max := m.End - m.Start; dTau > max {
			dTau = max
		}
	}
	return frame.State{R: vector.NewVector4(dTau, vector.Zero3), V: vector.Zero3, Tau: m.Start + dTau}, nil
}

// AbruptVelocityChange instantaneously switches the object's velocity to V,
// expressed in the previous co-moving frame. TauEnd == TauStart always.
type AbruptVelocityChange struct {
	Start float64
	V     vector.Vector3
}

func (m AbruptVelocityChange) TauStart() float64 { return m.Start }
func (m AbruptVelocityChange) TauEnd() float64    { return m.Start }

func (m AbruptVelocityChange) MoveUntilProperTime(_ frame.Frame, _, _ float64) (frame.State, error) {
	return frame.State{R: vector.NewVector4(0, vector.Zero3), V: m.V, Tau: m.Start}, nil
}

func (m AbruptVelocityChange) MoveUntilCoordinateTime(_ frame.Frame, _ float64) (frame.State, error) {
	return frame.State{R: vector.NewVector4(0, vector.Zero3), V: m.V, Tau: m.Start}, nil
}

// LongitudinalAcceleration is constant proper acceleration A, in the
// momentarily co-moving frame at Start, producing a hyperbolic worldline.
type LongitudinalAcceleration struct {
	Start, End float64
	A          vector.Vector3
}

func (m LongitudinalAcceleration) TauStart() float64 { return m.Start }
func (m LongitudinalAcceleration) TauEnd() float64    { return m.End }

func (m LongitudinalAcceleration) MoveUntilProperTime(_ frame.Frame, tauNow, tauTo float64) (frame.State, error) {
	local := kinematics.RelativisticAcceleration(m.A, tauTo-tauNow)
	return frame.State{R: local.R, V: local.V, Tau: tauTo}, nil
}

func (m LongitudinalAcceleration) MoveUntilCoordinateTime(coMovingFrame frame.Frame, t float64) (frame.State, error) {
	dt := t - coMovingFrame.R.T
	dTau, err := kinematics.RelativisticCoordAccelerationBoosted(m.A, coMovingFrame.V, dt)
	if err != nil {
		return frame.State{}, err
	}
	if !math.IsInf(m.End, 1) {
		if max := m.End - m.Start; dTau > max {
			dTau = max
		}
	}
	local := kinematics.RelativisticAcceleration(m.A, dTau)
	return frame.State{R: local.R, V: local.V, Tau: m.Start + dTau}, nil
}
