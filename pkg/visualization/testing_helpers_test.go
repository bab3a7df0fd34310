package visualization

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/jobs"
)

func testMapData(related int) *jobs.MapData {
	md := &jobs.MapData{
		Center: &jobs.Job{OriginalID: jobs.ID(100), Title: "Center", Description: "hub", Score: 1},
	}
	for i := 0; i < related; i++ {
		md.Related = append(md.Related, jobs.Job{
			ID:          i + 1,
			OriginalID:  jobs.ID(int64(200 + i)),
			Title:       fmt.Sprintf("Related %d", i),
			Description: "leaf",
			Score:       float64(i%10) / 10,
			SalaryMin:   50000,
			SalaryMax:   90000,
		})
	}
	return md
}

func mustCluster(t *testing.T, id, related int, anchor r2.Vec, p Placement) *Cluster {
	t.Helper()
	c, err := NewCluster(id, testMapData(related), anchor, p, DefaultConfig())
	if err != nil {
		t.Fatalf("NewCluster failed: %v", err)
	}
	return c
}

func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
