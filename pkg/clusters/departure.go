package clusters

import (
	"time"

	"github.com/dd0wney/scout/pkg/visualization"
)

// departure is a node already removed from its cluster that stays drawn,
// together with its former link, until its fade completes.
type departure struct {
	clusterID int
	node      NodeFrame
	link      *LinkFrame
	// fade runs from 1 to 0 and scales the captured opacities.
	fade float64
}

// FadeOutNode removes a node from its cluster right away and keeps drawing
// the node and its incident link in the cluster's frames while they fade to
// nothing over dur. The simulation and hit testing no longer see the node.
func (m *Manager) FadeOutNode(clusterID, nodeID int, dur time.Duration) (*visualization.Node, *Tween, error) {
	c, n, err := m.Lookup(clusterID, nodeID)
	if err != nil {
		return nil, nil, err
	}
	d := &departure{clusterID: clusterID, node: nodeFrame(n), fade: 1}
	for _, l := range c.Links {
		if l.Target == n || l.Source == n {
			lf := linkFrame(l)
			d.link = &lf
			break
		}
	}
	if _, err := m.RemoveNode(clusterID, nodeID); err != nil {
		return nil, nil, err
	}
	m.departures = append(m.departures, d)
	t := m.schedule(&Tween{target: &d.fade, to: 0, dur: dur, clusterID: clusterID}, 0)
	t.OnDone(func() { m.dropDeparture(d) })
	return n, t, nil
}

// Departing reports how many faded-out nodes are still drawn.
func (m *Manager) Departing() int {
	return len(m.departures)
}

func (m *Manager) dropDeparture(d *departure) {
	for i, x := range m.departures {
		if x == d {
			m.departures = append(m.departures[:i], m.departures[i+1:]...)
			m.dirty = true
			return
		}
	}
}

func (m *Manager) dropDepartures(match func(*departure) bool) {
	kept := m.departures[:0]
	for _, d := range m.departures {
		if !match(d) {
			kept = append(kept, d)
		}
	}
	for i := len(kept); i < len(m.departures); i++ {
		m.departures[i] = nil
	}
	m.departures = kept
}

// appendDepartures adds the fading nodes of cf's cluster after its live ones.
func (m *Manager) appendDepartures(cf *ClusterFrame) {
	for _, d := range m.departures {
		if d.clusterID != cf.ID {
			continue
		}
		nf := d.node
		nf.Opacity *= d.fade
		nf.Departing = true
		nf.Selected = false
		nf.Emphasized = false
		cf.Nodes = append(cf.Nodes, nf)
		if d.link != nil {
			lf := *d.link
			lf.Opacity *= d.fade
			cf.Links = append(cf.Links, lf)
		}
	}
}
