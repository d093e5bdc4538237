package musclearm

import (
	"errors"
	"math"

	"zappem.net/pub/math/geom"
)

// ErrNoSolution is returned when a wrist target cannot be reached.
var ErrNoSolution = errors.New("no inverse kinematics solution")

// Wrist returns the tip of the lower segment.
func (p Params) Wrist() Point {
	return p.elbow().Add(p.local(p.Lengths[1]))
}

// wrap folds degrees into (-180, 180].
func wrap(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// Inverse returns the joint angles, as (shoulder, elbow) pairs, that
// place the wrist at target for the current segment lengths. A
// reachable target normally has two solutions, one on either side of
// the shoulder-wrist line; they coincide at full stretch.
//
// With u = -shoulder and v = elbow + shoulder the wrist is
//
//	W = L1.(cos u, sin u) + L2.(cos v, sin v)
//
// which is the classic two link problem in absolute angles.
func (p Params) Inverse(target Point) ([][2]float64, error) {
	l1, l2 := p.Lengths[0], p.Lengths[1]
	if geom.Zeroish(l1) || geom.Zeroish(l2) {
		return nil, ErrNoSolution
	}
	r2 := target.X*target.X + target.Y*target.Y
	c := (r2 - l1*l1 - l2*l2) / (2 * l1 * l2)
	if c*c > 1 {
		if !geom.Zeroish(c*c - 1) {
			return nil, ErrNoSolution
		}
		c = math.Copysign(1, c)
	}
	d := math.Acos(c)

	var ans [][2]float64
	for i, dd := range []float64{d, -d} {
		if i == 1 && geom.Zeroish(d) {
			break
		}
		u := math.Atan2(target.Y, target.X) - math.Atan2(l2*math.Sin(dd), l1+l2*math.Cos(dd))
		uDeg := u * 180 / math.Pi
		dDeg := dd * 180 / math.Pi
		ans = append(ans, [2]float64{wrap(-uDeg), wrap(2*uDeg + dDeg)})
	}
	return ans, nil
}

// Closest picks the solution nearest to ref, weighing both joints
// equally.
func Closest(ref [2]float64, cjs [][2]float64) (int, error) {
	best := -1
	var bestA2 float64
	for i, js := range cjs {
		var a2 float64
		for j, a := range js {
			d := wrap(a - ref[j])
			a2 += d * d
		}
		if best == -1 || bestA2 > a2 {
			best = i
			bestA2 = a2
		}
	}
	if best != -1 {
		return best, nil
	}
	return best, ErrNoSolution
}

// Reach moves the wrist to target through Configure, choosing the
// joint solution closest to the current pose.
func (a *Arm) Reach(target Point) error {
	if a.closed {
		return ErrClosed
	}
	js, err := a.p.Inverse(target)
	if err != nil {
		return err
	}
	n, err := Closest(a.p.Angles, js)
	if err != nil {
		return err
	}
	return a.Configure(Set(JointAngles, js[n]))
}

// Pace is one step of a joint space path: the fraction of the path
// completed and the joint angles to adopt there.
type Pace struct {
	Frac float64
	J    [2]float64
}

// Joined interpolates the joint angles linearly from was to target
// over steps equal increments. The result has steps+1 paces, the
// first at was and the last at target.
func Joined(was, target [2]float64, steps int) []Pace {
	if steps < 1 {
		steps = 1
	}
	paces := make([]Pace, 0, steps+1)
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		paces = append(paces, Pace{
			Frac: f,
			J: [2]float64{
				was[0] + f*(target[0]-was[0]),
				was[1] + f*(target[1]-was[1]),
			},
		})
	}
	return paces
}
