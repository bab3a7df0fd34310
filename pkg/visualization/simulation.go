package visualization

import (
	"math"
	"math/rand/v2"
)

// Simulation integrates one cluster's nodes under link, charge, collision
// and centering forces. Its energy (alpha) decays toward alphaTarget every
// step; once below AlphaMin the simulation suspends until Restart.
type Simulation struct {
	cluster *Cluster
	cfg     Config

	alpha       float64
	alphaTarget float64
	stopped     bool

	rng *rand.Rand
}

func newSimulation(c *Cluster, cfg Config) *Simulation {
	return &Simulation{
		cluster: c,
		cfg:     cfg,
		alpha:   1,
		rng:     rand.New(rand.NewPCG(uint64(c.ID), 0x5eed)),
	}
}

// Alpha is the current energy.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// Active reports whether Step will move anything.
func (s *Simulation) Active() bool {
	return !s.stopped
}

// Restart re-energizes the simulation to alpha and resumes stepping.
func (s *Simulation) Restart(alpha float64) {
	s.alpha = math.Max(0, math.Min(1, alpha))
	s.stopped = false
}

// SetAlphaTarget sets the level alpha decays toward. A positive target keeps
// the simulation warm, as during a drag.
func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = math.Max(0, math.Min(1, target))
}

// Stop suspends stepping without touching alpha.
func (s *Simulation) Stop() {
	s.stopped = true
}

// Step advances one tick. It returns false, doing nothing, when suspended.
func (s *Simulation) Step() bool {
	if s.stopped {
		return false
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	nodes := s.cluster.Nodes
	s.applyLinks(s.cluster.Links)
	s.applyCharge(nodes)
	s.applyCollide(nodes)
	s.applyCentering(nodes, s.cluster.Anchor)

	keep := 1 - s.cfg.VelocityDecay
	for _, n := range nodes {
		if n.fixed != nil {
			n.Pos = *n.fixed
			n.Vel.X, n.Vel.Y = 0, 0
			continue
		}
		n.Vel.X *= keep
		n.Vel.Y *= keep
		n.Pos.X += n.Vel.X
		n.Pos.Y += n.Vel.Y
	}

	if s.alpha < s.cfg.AlphaMin {
		s.stopped = true
	}
	return true
}

// jiggle breaks exact coincidence with a negligible displacement.
func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}
