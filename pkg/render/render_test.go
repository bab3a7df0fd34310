package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/clusters"
)

func plainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{s, s, s, s, s, s, s, s, s}
}

func TestViewportRoundTrip(t *testing.T) {
	vp := NewViewport(80, 24)
	w, h := vp.CanvasSize()
	assert.Equal(t, 800.0, w)
	assert.Equal(t, 480.0, h)

	col, row := vp.ToCell(r2.Vec{X: 405, Y: 250})
	assert.Equal(t, 40, col)
	assert.Equal(t, 12, row)
	assert.Equal(t, r2.Vec{X: 405, Y: 250}, vp.ToCanvas(40, 12))
}

func TestViewportZoomClamps(t *testing.T) {
	tests := []struct {
		name    string
		factors []float64
		want    float64
	}{
		{"in", []float64{1.2}, 1.2},
		{"max", []float64{10, 10}, MaxZoom},
		{"min", []float64{0.1, 0.1}, MinZoom},
		{"back", []float64{2, 0.5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := NewViewport(80, 24)
			for _, f := range tt.factors {
				vp.ZoomBy(f)
			}
			assert.InDelta(t, tt.want, vp.Zoom, 1e-9)
		})
	}
}

func TestViewportZoomKeepsAnchor(t *testing.T) {
	vp := NewViewport(80, 24)
	before := vp.ToCanvas(10, 5)
	vp.ZoomAt(2, 10, 5)
	after := vp.ToCanvas(10, 5)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	vp.Pan(3, -2)
	col, row := vp.ToCell(before)
	assert.Equal(t, 13, col)
	assert.Equal(t, 3, row)

	vp.Reset()
	assert.Equal(t, 1.0, vp.Zoom)
	assert.Equal(t, r2.Vec{}, vp.Offset)
}

func starFrame() clusters.Frame {
	return clusters.Frame{
		Clusters: []clusters.ClusterFrame{{
			ID: 1,
			Nodes: []clusters.NodeFrame{
				{ID: 0, Title: "Platform Engineer", X: 205, Y: 210, R: 4, Center: true, Opacity: 1},
				{ID: 1, Title: "SRE", X: 405, Y: 210, R: 4, Opacity: 1},
				{ID: 2, Title: "Hidden", X: 205, Y: 410, R: 4, Opacity: 0},
			},
			Links: []clusters.LinkFrame{
				{Source: 0, Target: 1, Opacity: 1},
				{Source: 0, Target: 2, Opacity: 0},
			},
		}},
	}
}

func TestDraw(t *testing.T) {
	c := Draw(starFrame(), NewViewport(60, 24))

	assert.Equal(t, '◉', c.At(20, 10))
	assert.Equal(t, '●', c.At(40, 10))
	assert.Equal(t, '·', c.At(39, 10), "visible links are drawn")
	assert.Equal(t, ' ', c.At(20, 15), "invisible links are skipped")
	assert.Equal(t, ' ', c.At(20, 20), "invisible nodes are skipped")
	assert.Equal(t, 'P', c.At(22, 10), "centers are labelled")
	assert.Equal(t, ' ', c.At(99, 99))
}

func TestDrawMarks(t *testing.T) {
	f := starFrame()
	f.Clusters[0].Nodes[1].Selected = true
	f.Placeholders = []clusters.PlaceholderFrame{{X: 505, Y: 410, R: 4, Opacity: 1}}

	c := Draw(f, NewViewport(60, 24))
	assert.Equal(t, '░', c.At(50, 20))
	assert.Equal(t, 'S', c.At(42, 10), "selected nodes are labelled")

	f.Clusters[0].Nodes[1].Opacity = 0.3
	c = Draw(f, NewViewport(60, 24))
	assert.Equal(t, '○', c.At(40, 10))
}

func TestRenderPlain(t *testing.T) {
	out := Render(starFrame(), NewViewport(60, 24), plainStyles())
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 24)
	for _, l := range lines {
		assert.Equal(t, 60, len([]rune(l)))
	}
	assert.Contains(t, lines[10], "◉ Platform Engineer")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
