package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/clusters"
)

// Opacity below which an element is drawn faded, and at or below which it
// is not drawn at all.
const (
	fadedOpacity  = 0.5
	hiddenOpacity = 0.05
)

// maxLabel bounds the width of a title drawn next to a node.
const maxLabel = 24

type ink int

const (
	inkBlank ink = iota
	inkLink
	inkFaded
	inkPlaceholder
	inkNode
	inkCenter
	inkMatching
	inkSelected
	inkEmphasized
	inkLabel
)

// Styles colors each kind of glyph.
type Styles struct {
	Link        lipgloss.Style
	Faded       lipgloss.Style
	Placeholder lipgloss.Style
	Node        lipgloss.Style
	Center      lipgloss.Style
	Matching    lipgloss.Style
	Selected    lipgloss.Style
	Emphasized  lipgloss.Style
	Label       lipgloss.Style
}

// DefaultStyles is the brown-and-navy palette of the web map.
func DefaultStyles() Styles {
	return Styles{
		Link:        lipgloss.NewStyle().Foreground(lipgloss.Color("#B08A6E")),
		Faded:       lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("#1C3A5B")).Faint(true),
		Node:        lipgloss.NewStyle().Foreground(lipgloss.Color("#8B4513")),
		Center:      lipgloss.NewStyle().Foreground(lipgloss.Color("#1C3A5B")).Bold(true),
		Matching:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		Selected:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00BFFF")).Bold(true),
		Emphasized:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF7F")).Bold(true),
		Label:       lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")),
	}
}

func (s Styles) style(k ink) (lipgloss.Style, bool) {
	switch k {
	case inkLink:
		return s.Link, true
	case inkFaded:
		return s.Faded, true
	case inkPlaceholder:
		return s.Placeholder, true
	case inkNode:
		return s.Node, true
	case inkCenter:
		return s.Center, true
	case inkMatching:
		return s.Matching, true
	case inkSelected:
		return s.Selected, true
	case inkEmphasized:
		return s.Emphasized, true
	case inkLabel:
		return s.Label, true
	default:
		return lipgloss.Style{}, false
	}
}

type cell struct {
	r rune
	k ink
}

// Canvas is a grid of glyphs.
type Canvas struct {
	vp    Viewport
	cells [][]cell
}

// NewCanvas creates a blank canvas the size of vp.
func NewCanvas(vp Viewport) *Canvas {
	cells := make([][]cell, vp.Rows)
	for i := range cells {
		cells[i] = make([]cell, vp.Cols)
		for j := range cells[i] {
			cells[i][j] = cell{r: ' '}
		}
	}
	return &Canvas{vp: vp, cells: cells}
}

func (c *Canvas) set(col, row int, r rune, k ink) {
	if !c.vp.Visible(col, row) {
		return
	}
	// Links never overwrite anything already drawn.
	if k == inkLink && c.cells[row][col].k != inkBlank {
		return
	}
	c.cells[row][col] = cell{r: r, k: k}
}

// At returns the glyph in a cell, or a space outside the canvas.
func (c *Canvas) At(col, row int) rune {
	if !c.vp.Visible(col, row) {
		return ' '
	}
	return c.cells[row][col].r
}

// line draws a segment between two cells.
func (c *Canvas) line(x0, y0, x1, y1 int, r rune, k ink) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for steps := 0; steps <= dx-dy; steps++ {
		c.set(x0, y0, r, k)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// disk fills the cells whose centers fall inside a circle given in canvas
// units; a circle smaller than a cell still takes its own cell.
func (c *Canvas) disk(center r2.Vec, radius float64, r rune, k ink) {
	col, row := c.vp.ToCell(center)
	c.set(col, row, r, k)

	rc := int(math.Ceil(radius * c.vp.Zoom / c.vp.CellWidth))
	rr := int(math.Ceil(radius * c.vp.Zoom / c.vp.CellHeight))
	for dr := -rr; dr <= rr; dr++ {
		for dc := -rc; dc <= rc; dc++ {
			p := c.vp.ToCanvas(col+dc, row+dr)
			if r2.Norm(r2.Sub(p, center)) <= radius {
				c.set(col+dc, row+dr, r, k)
			}
		}
	}
}

func (c *Canvas) text(col, row int, s string, k ink) {
	for _, r := range s {
		c.set(col, row, r, k)
		col++
	}
}

// String renders the canvas with styles, one line per row.
func (c *Canvas) String(styles Styles) string {
	var b strings.Builder
	for i, row := range c.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && row[j].k == row[start].k {
				continue
			}
			run := make([]rune, 0, j-start)
			for _, x := range row[start:j] {
				run = append(run, x.r)
			}
			if st, ok := styles.style(row[start].k); ok {
				b.WriteString(st.Render(string(run)))
			} else {
				b.WriteString(string(run))
			}
			start = j
		}
	}
	return b.String()
}

// Draw rasterizes a frame: links first, then placeholders, then nodes in
// cluster order so later clusters sit on top, then center labels.
func Draw(f clusters.Frame, vp Viewport) *Canvas {
	c := NewCanvas(vp)

	for _, cf := range f.Clusters {
		pos := make(map[int]clusters.NodeFrame, len(cf.Nodes))
		for _, n := range cf.Nodes {
			pos[n.ID] = n
		}
		for _, l := range cf.Links {
			if l.Opacity <= hiddenOpacity {
				continue
			}
			s, okS := pos[l.Source]
			t, okT := pos[l.Target]
			if !okS || !okT {
				continue
			}
			x0, y0 := vp.ToCell(r2.Vec{X: s.X, Y: s.Y})
			x1, y1 := vp.ToCell(r2.Vec{X: t.X, Y: t.Y})
			k := inkLink
			if l.Opacity < fadedOpacity {
				k = inkFaded
			}
			c.line(x0, y0, x1, y1, '·', k)
		}
	}

	for _, p := range f.Placeholders {
		if p.Opacity <= hiddenOpacity {
			continue
		}
		c.disk(r2.Vec{X: p.X, Y: p.Y}, p.R, '░', inkPlaceholder)
	}

	for _, cf := range f.Clusters {
		for _, n := range cf.Nodes {
			if n.Opacity <= hiddenOpacity {
				continue
			}
			r, k := glyph(n)
			c.disk(r2.Vec{X: n.X, Y: n.Y}, n.R, r, k)
		}
	}

	for _, cf := range f.Clusters {
		for _, n := range cf.Nodes {
			if n.Opacity <= hiddenOpacity || !(n.Center || n.Selected || n.Emphasized) {
				continue
			}
			col, row := vp.ToCell(r2.Vec{X: n.X + n.R, Y: n.Y})
			c.text(col+1, row, " "+truncate(n.Title, maxLabel), inkLabel)
		}
	}
	return c
}

// Render draws a frame and styles it.
func Render(f clusters.Frame, vp Viewport, styles Styles) string {
	return Draw(f, vp).String(styles)
}

func glyph(n clusters.NodeFrame) (rune, ink) {
	r := '●'
	if n.Center {
		r = '◉'
	}
	switch {
	case n.Opacity < fadedOpacity:
		return '○', inkFaded
	case n.Selected:
		return r, inkSelected
	case n.Emphasized:
		return r, inkEmphasized
	case n.Matching:
		return r, inkMatching
	case n.Center:
		return r, inkCenter
	default:
		return r, inkNode
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
