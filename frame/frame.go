// Package frame holds the Frame and State value types of spec.md §3 and the
// frame-to-frame State transform of §4.1.
package frame

import (
	"github.com/flatspace/worldline/kinematics"
	"github.com/flatspace/worldline/vector"
)

// Frame is the origin 4-position and velocity of a coordinate system
// relative to the world origin frame. Invariant: |V| < 1.
type Frame struct {
	R vector.Vector4
	V vector.Vector3
}

// Origin is the distinguished world frame: r = 0, v = 0.
var Origin = Frame{}

// IsOrigin reports whether f is (numerically) the world origin frame.
func (f Frame) IsOrigin() bool {
	return f == Origin
}

// State is an object's spacetime position, velocity, and proper time,
// expressed in some frame.
type State = kinematics.State

// Transform re-expresses s (given in frame from) in frame to, routing
// through the world origin frame per spec.md §4.1. Proper time is
// preserved verbatim. Returns s unchanged if from == to.
func Transform(s State, from, to Frame) (State, error) {
	if from == to {
		return s, nil
	}

	worldR := s.R
	worldV := s.V
	if !from.IsOrigin() {
		boosted, err := kinematics.LorentzTransformInv(from.V, worldR)
		if err != nil {
			return State{}, err
		}
		worldR = boosted.Add(from.R)
		v, err := kinematics.ObservedAddedVelocity(from.V, worldV)
		if err != nil {
			return State{}, err
		}
		worldV = v
	}

	toR := worldR
	toV := worldV
	if !to.IsOrigin() {
		translated := worldR.Sub(to.R)
		boosted, err := kinematics.LorentzTransform(to.V, translated)
		if err != nil {
			return State{}, err
		}
		toR = boosted
		v, err := kinematics.TransformedAddedVelocity(to.V, worldV)
		if err != nil {
			return State{}, err
		}
		toV = v
	}

	return State{R: toR, V: toV, Tau: s.Tau}, nil
}
