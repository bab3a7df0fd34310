package clusters

import "github.com/dd0wney/scout/pkg/visualization"

// Frame is a renderer's view of the canvas after one tick. It is a deep
// copy; renderers may hold on to it.
type Frame struct {
	Seq           uint64             `json:"seq"`
	ActiveCluster int                `json:"active_cluster"`
	Width         float64            `json:"width"`
	Height        float64            `json:"height"`
	Clusters      []ClusterFrame     `json:"clusters"`
	Placeholders  []PlaceholderFrame `json:"placeholders,omitempty"`
}

// ClusterFrame is one cluster in a frame.
type ClusterFrame struct {
	ID      int         `json:"id"`
	AnchorX float64     `json:"anchor_x"`
	AnchorY float64     `json:"anchor_y"`
	CenterX float64     `json:"centroid_x"`
	CenterY float64     `json:"centroid_y"`
	Radius  float64     `json:"radius"`
	Alpha   float64     `json:"alpha"`
	Nodes   []NodeFrame `json:"nodes"`
	Links   []LinkFrame `json:"links"`
}

// NodeFrame is one node in a frame.
type NodeFrame struct {
	ID         int     `json:"id"`
	JobID      int64   `json:"job_id,omitempty"`
	Title      string  `json:"title"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	R          float64 `json:"r"`
	Score      float64 `json:"score"`
	Center     bool    `json:"center,omitempty"`
	Pinned     bool    `json:"pinned,omitempty"`
	Opacity    float64 `json:"opacity"`
	Matching   bool    `json:"matching,omitempty"`
	Selected   bool    `json:"selected,omitempty"`
	Emphasized bool    `json:"emphasized,omitempty"`
	// Departing marks a node already removed from the cluster that is
	// still fading out.
	Departing bool `json:"departing,omitempty"`
}

// LinkFrame is one link in a frame, by local node ids.
type LinkFrame struct {
	Source  int     `json:"source"`
	Target  int     `json:"target"`
	Weight  float64 `json:"weight"`
	Opacity float64 `json:"opacity"`
}

// PlaceholderFrame is one placeholder in a frame.
type PlaceholderFrame struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	R       float64 `json:"r"`
	Title   string  `json:"title"`
	Opacity float64 `json:"opacity"`
}

// Node finds a node frame by cluster and local id.
func (f *Frame) Node(clusterID, nodeID int) (NodeFrame, bool) {
	for _, c := range f.Clusters {
		if c.ID != clusterID {
			continue
		}
		for _, n := range c.Nodes {
			if n.ID == nodeID && !n.Departing {
				return n, true
			}
		}
	}
	return NodeFrame{}, false
}

// Snapshot builds a frame of the current state without advancing anything.
func (m *Manager) Snapshot() Frame {
	f := Frame{
		Seq:           m.seq,
		ActiveCluster: m.active,
		Width:         m.viewport.X,
		Height:        m.viewport.Y,
		Clusters:      make([]ClusterFrame, 0, len(m.clusters)),
	}
	for _, c := range m.clusters {
		cf := clusterFrame(c)
		m.appendDepartures(&cf)
		f.Clusters = append(f.Clusters, cf)
	}
	for _, p := range m.placeholders {
		f.Placeholders = append(f.Placeholders, PlaceholderFrame{
			X: p.Pos.X, Y: p.Pos.Y, R: p.Radius, Title: p.Title, Opacity: p.Opacity,
		})
	}
	return f
}

func clusterFrame(c *visualization.Cluster) ClusterFrame {
	cf := ClusterFrame{
		ID:      c.ID,
		AnchorX: c.Anchor.X,
		AnchorY: c.Anchor.Y,
		CenterX: c.Bounds.Centroid.X,
		CenterY: c.Bounds.Centroid.Y,
		Radius:  c.Bounds.Radius,
		Alpha:   c.Simulation().Alpha(),
		Nodes:   make([]NodeFrame, 0, len(c.Nodes)),
		Links:   make([]LinkFrame, 0, len(c.Links)),
	}
	for _, n := range c.Nodes {
		cf.Nodes = append(cf.Nodes, nodeFrame(n))
	}
	for _, l := range c.Links {
		cf.Links = append(cf.Links, linkFrame(l))
	}
	return cf
}

func nodeFrame(n *visualization.Node) NodeFrame {
	jobID, _ := n.Job.ExternalID()
	return NodeFrame{
		ID:         n.ID,
		JobID:      jobID,
		Title:      n.Job.Title,
		X:          n.Pos.X,
		Y:          n.Pos.Y,
		R:          n.Radius(),
		Score:      n.Job.Score,
		Center:     n.IsCenter(),
		Pinned:     n.Pinned(),
		Opacity:    n.Visual.Opacity,
		Matching:   n.Visual.Matching,
		Selected:   n.Visual.Selected,
		Emphasized: n.Visual.Emphasized,
	}
}

func linkFrame(l *visualization.Link) LinkFrame {
	return LinkFrame{
		Source:  l.Source.ID,
		Target:  l.Target.ID,
		Weight:  l.Weight,
		Opacity: l.Opacity,
	}
}
