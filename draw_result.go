package raffle

import "time"

// DrawResult captures a prize at the moment it was selected. The embedded
// Prize is a post-decrement snapshot; ProbabilityAtDraw is the weight the
// prize carried when it was sampled, before redistribution ran.
type DrawResult struct {
	Prize             Prize     `json:"prize"`
	Actor             string    `json:"actor"`
	ProbabilityAtDraw float64   `json:"probability_at_draw"`
	DrawnAt           time.Time `json:"drawn_at"`
}

// MultiDrawResult aggregates a batch of draws together with any failures
type MultiDrawResult struct {
	Results        []*DrawResult `json:"results,omitempty"`         // Successful draw results
	TotalRequested int           `json:"total_requested"`           // Total number of draws requested
	Completed      int           `json:"completed"`                 // Number of draws completed successfully
	Failed         int           `json:"failed"`                    // Number of draws that failed
	PartialSuccess bool          `json:"partial_success"`           // Whether some but not all draws succeeded
	LastError      error         `json:"-"`                         // Last error encountered
}

// IsComplete returns true if every requested draw was accounted for
func (m *MultiDrawResult) IsComplete() bool {
	return m.Completed+m.Failed >= m.TotalRequested
}

// SuccessRate returns the success rate as a percentage
func (m *MultiDrawResult) SuccessRate() float64 {
	if m.TotalRequested == 0 {
		return 0.0
	}
	return float64(m.Completed) / float64(m.TotalRequested) * 100.0
}

// MinProbabilityResult returns the batch entry with the lowest probability at
// draw time; ties resolve to the first encountered. The UI keys its mood
// indicator off this result.
func MinProbabilityResult(results []*DrawResult) *DrawResult {
	var min *DrawResult
	for _, r := range results {
		if r == nil {
			continue
		}
		if min == nil || r.ProbabilityAtDraw < min.ProbabilityAtDraw {
			min = r
		}
	}
	return min
}
