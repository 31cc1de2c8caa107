package env

import (
	"math"
	"math/rand"

	"github.com/skylooop/stoix/tensor"
)

const (
	cartPoleGravity        = 9.81
	cartPoleMassCart       = 1.0
	cartPoleMassPole       = 0.1
	cartPolePoleLength     = 0.5
	cartPoleTotalMass      = cartPoleMassCart + cartPoleMassPole
	cartPolePoleMassLength = cartPoleMassPole * cartPolePoleLength
	cartPoleForceMax       = 10.0
	cartPoleTau            = 0.02

	cartPoleXThreshold     = 2.4
	cartPoleThetaThreshold = 12.0 * math.Pi / 180.0
	cartPoleMaxSteps       = 500
)

// CartPole is the classic pole-balancing control task with two actions.
type CartPole struct{}

type cartPoleState struct {
	x        float64
	xDot     float64
	theta    float64
	thetaDot float64
	steps    int
}

func NewCartPole() *CartPole {
	return &CartPole{}
}

func (c *CartPole) ObservationDim() int { return 4 }
func (c *CartPole) ActionDim() int      { return 2 }

func (c *CartPole) observe(s *cartPoleState) TimeStep {
	obs := tensor.NewFromSlice([]float32{
		float32(s.x), float32(s.xDot), float32(s.theta), float32(s.thetaDot),
	})
	return TimeStep{Observation: obs}
}

func (c *CartPole) Reset(rng *rand.Rand) (State, TimeStep) {
	s := &cartPoleState{
		x:        rng.Float64()*0.1 - 0.05,
		xDot:     rng.Float64()*0.1 - 0.05,
		theta:    rng.Float64()*0.1 - 0.05,
		thetaDot: rng.Float64()*0.1 - 0.05,
	}
	return s, c.observe(s)
}

func (c *CartPole) Step(state State, action int) (State, TimeStep) {
	s := state.(*cartPoleState)

	force := cartPoleForceMax
	if action == 0 {
		force = -cartPoleForceMax
	}

	cosTheta := math.Cos(s.theta)
	sinTheta := math.Sin(s.theta)

	temp := (force + cartPolePoleMassLength*s.thetaDot*s.thetaDot*sinTheta) / cartPoleTotalMass
	thetaAcc := (cartPoleGravity*sinTheta - cosTheta*temp) /
		(cartPolePoleLength * (4.0/3.0 - cartPoleMassPole*cosTheta*cosTheta/cartPoleTotalMass))
	xAcc := temp - cartPolePoleMassLength*thetaAcc*cosTheta/cartPoleTotalMass

	next := &cartPoleState{
		x:        s.x + cartPoleTau*s.xDot,
		xDot:     s.xDot + cartPoleTau*xAcc,
		theta:    s.theta + cartPoleTau*s.thetaDot,
		thetaDot: s.thetaDot + cartPoleTau*thetaAcc,
		steps:    s.steps + 1,
	}

	fell := next.x < -cartPoleXThreshold || next.x > cartPoleXThreshold ||
		next.theta < -cartPoleThetaThreshold || next.theta > cartPoleThetaThreshold
	done := fell || next.steps >= cartPoleMaxSteps

	ts := c.observe(next)
	ts.Reward = 1.0
	if fell {
		ts.Reward = 0.0
	}
	ts.Last = done
	return next, ts
}
