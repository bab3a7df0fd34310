package clusters

import "gonum.org/v1/gonum/spatial/r2"

// Placeholder is the circle and label that stands in for a node while its
// replacement cluster is being fetched.
type Placeholder struct {
	ID      int
	Pos     r2.Vec
	Radius  float64
	Title   string
	Opacity float64
}

// AddPlaceholder shows a placeholder at pos.
func (m *Manager) AddPlaceholder(pos r2.Vec, radius float64, title string) *Placeholder {
	m.nextPlaceholder++
	p := &Placeholder{ID: m.nextPlaceholder, Pos: pos, Radius: radius, Title: title, Opacity: 1}
	m.placeholders = append(m.placeholders, p)
	m.dirty = true
	return p
}

// RemovePlaceholder drops a placeholder and its tweens. Removing one twice
// is harmless.
func (m *Manager) RemovePlaceholder(p *Placeholder) {
	if p == nil {
		return
	}
	for i, x := range m.placeholders {
		if x == p {
			m.placeholders = append(m.placeholders[:i], m.placeholders[i+1:]...)
			m.dropTweens(func(t *Tween) bool { return t.placeholder == p })
			m.dirty = true
			return
		}
	}
}

// Placeholders returns the placeholders currently shown.
func (m *Manager) Placeholders() []*Placeholder {
	out := make([]*Placeholder, len(m.placeholders))
	copy(out, m.placeholders)
	return out
}
