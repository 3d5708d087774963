package main

import (
	"go-callgraph-eval/compare"
)

// Input is a call-graph text, either a file on disk or an in-memory member
// of a txtar bundle.
type Input struct {
	Path    string // file path, or archive#member for bundled inputs
	Data    []byte
	Bundled bool // Data holds the text; Path is only a label
}

// Case is one candidate/truth pair discovered in a suite directory.
type Case struct {
	Group     string // suite directory, relative to the suite root
	Name      string // shared base name of the pair
	Source    string // analysed source file; only set when a generator is configured
	Candidate Input  // empty when the candidate is produced by the generator
	Truth     Input
}

// ID returns a stable identifier of the case within the suite.
func (c Case) ID() string {
	return c.Group + "/" + c.Name
}

// CaseResult is the outcome of evaluating a single case.
type CaseResult struct {
	Case   Case
	Result compare.Result
	Passed bool
	Err    error // comparison aborted; Result is empty
}

// Summary tallies a suite run.
type Summary struct {
	Passed int
	Failed int

	WithNatives    compare.Total
	WithoutNatives compare.Total
}

// Add folds r into the summary. Errored cases count as failed and add no
// edges to the totals.
func (s *Summary) Add(r CaseResult) {
	if r.Passed {
		s.Passed++
	} else {
		s.Failed++
	}
	if r.Err == nil {
		s.WithNatives.Add(r.Result.WithNatives)
		s.WithoutNatives.Add(r.Result.WithoutNatives)
	}
}

// OK reports whether every case passed.
func (s Summary) OK() bool { return s.Failed == 0 }
