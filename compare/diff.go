package compare

import "go-callgraph-eval/edge"

// Delta lists the edges on which two graphs disagree.
type Delta struct {
	Missing  []edge.Edge // in truth, not reported
	Spurious []edge.Edge // reported, not in truth
}

// Empty reports whether the graphs agree.
func (d Delta) Empty() bool {
	return len(d.Missing) == 0 && len(d.Spurious) == 0
}

// Diff compares candidate with truth edge by edge.
func Diff(candidate, truth edge.Set) Delta {
	return Delta{
		Missing:  truth.Minus(candidate),
		Spurious: candidate.Minus(truth),
	}
}

// Diff returns the disagreement for the given variant of the result.
func (r Result) Diff(withNatives bool) Delta {
	if withNatives {
		return Diff(r.Candidate, r.Truth)
	}
	return Diff(r.Candidate.WithoutNatives(), r.Truth.WithoutNatives())
}

// Total accumulates scores over many comparisons and reports micro-averaged
// precision and recall.
type Total struct {
	Matched   int
	Candidate int
	Truth     int
}

// Add folds s into the total.
func (t *Total) Add(s Score) {
	t.Matched += s.Matched
	t.Candidate += s.Candidate
	t.Truth += s.Truth
}

// Score returns the aggregate precision and recall.
func (t Total) Score() Score {
	return Score{
		Precision: percent(t.Matched, t.Candidate),
		Recall:    percent(t.Matched, t.Truth),
		Matched:   t.Matched,
		Candidate: t.Candidate,
		Truth:     t.Truth,
	}
}
