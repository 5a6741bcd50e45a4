// Package kinematics is the closed-form relativistic math kernel spec.md §6
// treats as an external collaborator: Lorentz boosts, relativistic velocity
// addition, and the hyperbolic-motion formulas for constant proper
// acceleration. Every function here is pure and takes c = 1.
package kinematics

import (
	"errors"
	"math"

	"github.com/flatspace/worldline/vector"
)

// ErrLightspeedFrame is returned whenever a frame or object velocity would
// be at or beyond the speed of light.
var ErrLightspeedFrame = errors.New("kinematics: velocity at or beyond lightspeed")

// State is the position, velocity, and proper time of an object expressed
// in some frame. Defined here (rather than in package frame) because the
// hyperbolic-motion formulas return it directly.
type State struct {
	R   vector.Vector4
	V   vector.Vector3
	Tau float64
}

// Gamma is the Lorentz factor 1/sqrt(1-v^2) for a 3-velocity v.
func Gamma(v vector.Vector3) (float64, error) {
	speed2 := v.Dot(v)
	if speed2 >= 1 {
		return 0, ErrLightspeedFrame
	}
	return 1 / math.Sqrt(1-speed2), nil
}

// addVelocities is the general 3D relativistic velocity addition: the
// velocity, in the parent frame, of an object moving at u within a frame
// that itself moves at v relative to the parent. Einstein addition formula,
// decomposed into components parallel and perpendicular to v.
func addVelocities(v, u vector.Vector3) (vector.Vector3, error) {
	speed2 := v.Dot(v)
	if speed2 >= 1 {
		return vector.Zero3, ErrLightspeedFrame
	}
	if speed2 == 0 {
		return u, nil
	}
	gammaV, err := Gamma(v)
	if err != nil {
		return vector.Zero3, err
	}
	vu := v.Dot(u)
	denom := 1 + vu
	coeff := gammaV / (gammaV + 1)
	result := u.Scale(1 / gammaV).Add(v).Add(v.Scale(coeff * vu))
	return result.Scale(1 / denom), nil
}

// ObservedAddedVelocity returns the parent-frame velocity of an object that
// moves at uPrime within a frame moving at vFrame relative to the parent.
func ObservedAddedVelocity(vFrame, uPrime vector.Vector3) (vector.Vector3, error) {
	return addVelocities(vFrame, uPrime)
}

// TransformedAddedVelocity is the inverse of ObservedAddedVelocity: given an
// object's parent-frame velocity u, returns its velocity as observed within
// a frame moving at vFrame relative to the parent.
func TransformedAddedVelocity(vFrame, u vector.Vector3) (vector.Vector3, error) {
	return addVelocities(vFrame.Neg(), u)
}

// LorentzTransform boosts a 4-vector from a frame at rest into a frame
// moving at velocity v relative to it (v expressed in the rest frame).
func LorentzTransform(v vector.Vector3, r4 vector.Vector4) (vector.Vector4, error) {
	speed2 := v.Dot(v)
	if speed2 >= 1 {
		return vector.Vector4{}, ErrLightspeedFrame
	}
	r := r4.Spatial()
	if speed2 == 0 {
		return r4, nil
	}
	gamma, err := Gamma(v)
	if err != nil {
		return vector.Vector4{}, err
	}
	vr := v.Dot(r)
	tPrime := gamma * (r4.T - vr)
	rPrime := r.Add(v.Scale((gamma - 1) * vr / speed2)).Sub(v.Scale(gamma * r4.T))
	return vector.NewVector4(tPrime, rPrime), nil
}

// LorentzTransformInv is the inverse boost: substitute -v for v.
func LorentzTransformInv(v vector.Vector3, r4 vector.Vector4) (vector.Vector4, error) {
	return LorentzTransform(v.Neg(), r4)
}

// RelativisticAcceleration returns the State, in the frame momentarily
// co-moving with the object at proper time 0, of an object undergoing
// constant proper acceleration a0 (magnitude alpha, direction n), evaluated
// at proper time tau.
func RelativisticAcceleration(a0 vector.Vector3, tau float64) State {
	alpha := a0.Norm()
	if alpha == 0 {
		return State{R: vector.NewVector4(tau, vector.Zero3), V: vector.Zero3, Tau: tau}
	}
	n := a0.Unit()
	pos := n.Scale((math.Cosh(alpha*tau) - 1) / alpha)
	t := math.Sinh(alpha*tau) / alpha
	v := n.Scale(math.Tanh(alpha * tau))
	return State{R: vector.NewVector4(t, pos), V: v, Tau: tau}
}

// RelativisticCoordAcceleration is the coordinate-time inverse of
// RelativisticAcceleration for a segment that started at rest: given
// elapsed coordinate time t (in the co-moving-at-start frame), returns the
// State whose time component is exactly t.
func RelativisticCoordAcceleration(a0 vector.Vector3, t float64) State {
	alpha := a0.Norm()
	if alpha == 0 {
		return State{R: vector.NewVector4(t, vector.Zero3), V: vector.Zero3, Tau: t}
	}
	n := a0.Unit()
	at := alpha * t
	tau := math.Asinh(at) / alpha
	pos := n.Scale((math.Sqrt(1+at*at) - 1) / alpha)
	v := n.Scale(at / math.Sqrt(1+at*at))
	return State{R: vector.NewVector4(t, pos), V: v, Tau: tau}
}

// RelativisticCoordAccelerationBoosted is the general case of
// RelativisticCoordAcceleration for a segment that began in a frame already
// moving at v (relative to the world frame) instead of starting at rest.
// It solves the transcendental equation of spec.md §6 for the proper time
// tau corresponding to world-frame coordinate time t.
func RelativisticCoordAccelerationBoosted(a0, v vector.Vector3, t float64) (float64, error) {
	alpha := a0.Norm()
	if alpha == 0 {
		gamma, err := Gamma(v)
		if err != nil {
			return 0, err
		}
		return t / gamma, nil
	}
	n := a0.Unit()
	speed2 := v.Dot(v)
	if speed2 >= 1 {
		return 0, ErrLightspeedFrame
	}
	gamma, err := Gamma(v)
	if err != nil {
		return 0, err
	}
	w := v.Dot(n)
	if w == 1 || w == -1 {
		// degenerate: frame velocity exactly collinear at lightspeed component,
		// cannot happen for |v|<1 but guard division by (1-w^2) anyway.
		return 0, ErrLightspeedFrame
	}
	at := alpha * t / gamma
	y := at*at + 2*at*w + 1
	if y < 0 {
		y = 0
	}
	x := (-w*math.Sqrt(y) + w + at) / (1 - w*w)
	return math.Asinh(x) / alpha, nil
}

// Separation classifies the spacetime interval between two events.
type Separation int

const (
	Spacelike Separation = iota
	Lightlike
	Timelike
)

// ClassifySeparation returns the Separation of r2 relative to r1, treating
// |interval| <= eps^2 as Lightlike.
func ClassifySeparation(r1, r2 vector.Vector4, eps float64) Separation {
	dt := r2.T - r1.T
	dr := r2.Spatial().Sub(r1.Spatial())
	s2 := dt*dt - dr.Dot(dr)
	if math.Abs(s2) <= eps*eps {
		return Lightlike
	}
	if s2 > 0 {
		return Timelike
	}
	return Spacelike
}
