package visualization

import "math"

const (
	CenterRadius = 100.0

	baseRadius      = 15.0
	scoreRadius     = 15.0
	salaryLogScale  = 8.0
	SalaryRadiusCap = 45.0
)

// NodeRadius sizes a node. Centers are fixed; related nodes grow with score
// and with the log of their average salary in thousands, the salary share
// capped at SalaryRadiusCap.
func NodeRadius(center bool, score, avgSalary float64) float64 {
	if center {
		return CenterRadius
	}
	score = math.Max(0, math.Min(1, score))
	return baseRadius + scoreRadius*score + salaryRadius(avgSalary)
}

func salaryRadius(avgSalary float64) float64 {
	if avgSalary <= 0 || math.IsNaN(avgSalary) {
		return 0
	}
	return math.Min(math.Log(avgSalary/1000+1)*salaryLogScale, SalaryRadiusCap)
}
