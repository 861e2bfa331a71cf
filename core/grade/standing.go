package grade

// Academic standings
const (
	StandingHonors       = "honors"
	StandingGoodStanding = "good_standing"
	StandingProbation    = "probation"
	StandingSuspension   = "suspension"
)

// ClassifyStanding maps a cumulative GPA to a categorical standing.
// Thresholds are inclusive lower bounds, evaluated top-down, first match wins.
// The [2.0,3.0) and [3.0,3.5) bands both resolve to good_standing; the two
// cases are kept distinct so the historical band boundary stays visible.
func ClassifyStanding(gpa float64) string {
	switch {
	case gpa >= 3.5:
		return StandingHonors
	case gpa >= 3.0:
		return StandingGoodStanding
	case gpa >= 2.0:
		return StandingGoodStanding
	case gpa >= 1.5:
		return StandingProbation
	default:
		return StandingSuspension
	}
}
