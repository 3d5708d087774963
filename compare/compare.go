// Package compare scores a candidate call graph against a ground-truth call
// graph using precision and recall over normalized edge sets.
package compare

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go-callgraph-eval/edge"
)

// maxLineSize bounds a single edge line. Function names in minified sources
// can be long.
const maxLineSize = 1 << 20

// Score holds precision and recall as percentages in [0,100] together with
// the counts they were computed from.
type Score struct {
	Precision float64
	Recall    float64
	Matched   int
	Candidate int
	Truth     int
}

// Perfect reports whether both precision and recall are 100.
func (s Score) Perfect() bool {
	return s.Precision == 100 && s.Recall == 100
}

func (s Score) String() string {
	return fmt.Sprintf("precision %.2f%% recall %.2f%%", s.Precision, s.Recall)
}

// Result is the outcome of comparing one candidate graph to its truth.
type Result struct {
	WithNatives    Score
	WithoutNatives Score

	Candidate edge.Set
	Truth     edge.Set
}

// Files compares the call graph in candidatePath against the one in
// truthPath. A missing file yields an error matching fs.ErrNotExist; a
// malformed line yields an *edge.ParseError and no score.
func Files(candidatePath, truthPath string) (Result, error) {
	candidate, err := LoadFile(candidatePath)
	if err != nil {
		return Result{}, err
	}
	truth, err := LoadFile(truthPath)
	if err != nil {
		return Result{}, err
	}
	return Sets(candidate, truth), nil
}

// Readers is like Files but reads both graphs from r.
func Readers(candidate, truth io.Reader) (Result, error) {
	c, err := Load(candidate, "")
	if err != nil {
		return Result{}, fmt.Errorf("candidate: %w", err)
	}
	t, err := Load(truth, "")
	if err != nil {
		return Result{}, fmt.Errorf("truth: %w", err)
	}
	return Sets(c, t), nil
}

// Sets scores already parsed edge sets.
func Sets(candidate, truth edge.Set) Result {
	return Result{
		WithNatives:    score(candidate, truth),
		WithoutNatives: score(candidate.WithoutNatives(), truth.WithoutNatives()),
		Candidate:      candidate,
		Truth:          truth,
	}
}

// LoadFile parses every non-blank line of the file at path.
func LoadFile(path string) (edge.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open call graph: %w", err)
	}
	defer f.Close()
	return Load(f, path)
}

// Load parses every non-blank line of r. source names r in parse errors.
func Load(r io.Reader, source string) (edge.Set, error) {
	set := make(edge.Set)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := edge.Parse(line)
		if err != nil {
			var perr *edge.ParseError
			if errors.As(err, &perr) {
				perr.Path = source
				perr.Line = lineNo
			}
			return nil, err
		}
		set.Add(e)
	}
	if err := sc.Err(); err != nil {
		if source != "" {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		return nil, fmt.Errorf("read call graph: %w", err)
	}
	return set, nil
}

// score computes precision and recall of candidate against truth. An empty
// side scores 100 by definition.
func score(candidate, truth edge.Set) Score {
	s := Score{
		Matched:   candidate.IntersectLen(truth),
		Candidate: candidate.Len(),
		Truth:     truth.Len(),
	}
	s.Precision = percent(s.Matched, s.Candidate)
	s.Recall = percent(s.Matched, s.Truth)
	return s
}

func percent(n, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(100*n) / float64(total)
}
