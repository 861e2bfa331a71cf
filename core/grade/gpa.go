package grade

// Outcome is one completed course's contribution to GPA math.
type Outcome struct {
	Letter      string
	GradePoints float64 // [0, 4]
	Credits     float64 // >= 0
}

// CountsTowardGPA reports whether an outcome enters GPA math at all.
// 'W' (withdrawn) and 'I' (incomplete) are excluded from both the numerator
// and the denominator; 'F' is included in both.
func (o Outcome) CountsTowardGPA() bool {
	return o.Letter != LetterWithdrawn && o.Letter != LetterIncomplete
}

// Summary is a credit-weighted GPA aggregate. The zero value is an empty
// aggregate with GPA 0.
type Summary struct {
	QualityPoints float64
	Credits       float64
}

// Add folds one outcome into the aggregate.
func (s *Summary) Add(o Outcome) {
	if !o.CountsTowardGPA() {
		return
	}
	s.QualityPoints += o.Credits * o.GradePoints
	s.Credits += o.Credits
}

// GPA returns the credit-weighted grade point average at full precision.
// An empty aggregate yields 0, never NaN.
func (s Summary) GPA() float64 {
	if s.Credits <= 0 {
		return 0
	}
	return s.QualityPoints / s.Credits
}

// ComputeGPA folds a set of completed course outcomes into a single aggregate.
// Pure; usable both for a single semester and for the cumulative running total.
func ComputeGPA(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		s.Add(o)
	}
	return s
}
