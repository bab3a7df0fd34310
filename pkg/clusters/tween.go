package clusters

import (
	"time"

	"github.com/dd0wney/scout/pkg/visualization"
)

// Tween interpolates one float (an opacity or a radius) over time. The start
// value is captured when the delay elapses, so chained tweens compose.
type Tween struct {
	target *float64
	from   float64
	to     float64
	start  time.Time
	dur    time.Duration
	begun  bool
	done   func()

	clusterID   int
	node        *visualization.Node
	placeholder *Placeholder

	cancelled bool
	finished  bool
}

// Cancel stops the tween where it is; its completion callback never runs.
func (t *Tween) Cancel() {
	t.cancelled = true
}

// Finished reports whether the tween reached its end value.
func (t *Tween) Finished() bool {
	return t.finished
}

// OnDone registers fn to run on the tick that completes the tween.
func (t *Tween) OnDone(fn func()) *Tween {
	t.done = fn
	return t
}

// advance moves the tween to now and reports whether it is still running.
func (t *Tween) advance(now time.Time) bool {
	if t.cancelled {
		return false
	}
	if now.Before(t.start) {
		return true
	}
	if !t.begun {
		t.from = *t.target
		t.begun = true
	}
	p := 1.0
	if t.dur > 0 {
		p = float64(now.Sub(t.start)) / float64(t.dur)
	}
	if p >= 1 {
		*t.target = t.to
		t.finished = true
		if t.done != nil {
			t.done()
		}
		return false
	}
	*t.target = t.from + (t.to-t.from)*easeCubicInOut(p)
	return true
}

func easeCubicInOut(p float64) float64 {
	p *= 2
	if p <= 1 {
		return p * p * p / 2
	}
	p -= 2
	return (p*p*p + 2) / 2
}

func (m *Manager) schedule(t *Tween, delay time.Duration) *Tween {
	t.start = m.now().Add(delay)
	m.tweens = append(m.tweens, t)
	return t
}

// FadeNode animates a node's opacity.
func (m *Manager) FadeNode(c *visualization.Cluster, n *visualization.Node, to float64, delay, dur time.Duration) *Tween {
	return m.schedule(&Tween{target: &n.Visual.Opacity, to: to, dur: dur, clusterID: c.ID, node: n}, delay)
}

// FadeLink animates a link's opacity.
func (m *Manager) FadeLink(c *visualization.Cluster, l *visualization.Link, to float64, delay, dur time.Duration) *Tween {
	return m.schedule(&Tween{target: &l.Opacity, to: to, dur: dur, clusterID: c.ID, node: l.Target}, delay)
}

// FadePlaceholder animates a placeholder's opacity.
func (m *Manager) FadePlaceholder(p *Placeholder, to float64, delay, dur time.Duration) *Tween {
	return m.schedule(&Tween{target: &p.Opacity, to: to, dur: dur, placeholder: p}, delay)
}

// GrowPlaceholder animates a placeholder's radius.
func (m *Manager) GrowPlaceholder(p *Placeholder, to float64, dur time.Duration) *Tween {
	return m.schedule(&Tween{target: &p.Radius, to: to, dur: dur, placeholder: p}, 0)
}

// Animating reports whether any tween is pending or running.
func (m *Manager) Animating() bool {
	return len(m.tweens) > 0
}

func (m *Manager) advanceTweens(now time.Time) bool {
	if len(m.tweens) == 0 {
		return false
	}
	// Completion callbacks may schedule or drop tweens; iterate a snapshot.
	current := m.tweens
	m.tweens = nil
	m.advancing = current
	var running []*Tween
	for _, t := range current {
		if t.advance(now) {
			running = append(running, t)
		}
	}
	m.advancing = nil
	m.tweens = append(running, m.tweens...)
	return true
}

func (m *Manager) dropTweens(match func(*Tween) bool) {
	for _, t := range m.advancing {
		if match(t) {
			t.cancelled = true
		}
	}
	kept := m.tweens[:0]
	for _, t := range m.tweens {
		if match(t) {
			t.cancelled = true
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(m.tweens); i++ {
		m.tweens[i] = nil
	}
	m.tweens = kept
}
