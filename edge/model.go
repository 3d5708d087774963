// Package edge parses call-graph dump lines into comparable edge values.
package edge

import (
	"fmt"
	"sort"
	"strconv"
)

// Kind tells a resolved call apart from a call into an opaque target.
type Kind uint8

const (
	// Resolved is a call whose callee is a concrete site.
	Resolved Kind = iota
	// Native is a call into a native or otherwise unanalysed target.
	Native
)

func (k Kind) String() string {
	if k == Native {
		return "native"
	}
	return "resolved"
}

// Site identifies a function by name, file and line.
type Site struct {
	Name string
	File string
	Line int
}

// String returns the canonical file:name:line form.
func (s Site) String() string {
	return s.File + ":" + s.Name + ":" + strconv.Itoa(s.Line)
}

func (s Site) less(o Site) bool {
	if s.File != o.File {
		return s.File < o.File
	}
	if s.Name != o.Name {
		return s.Name < o.Name
	}
	return s.Line < o.Line
}

// Edge is a single caller -> callee relationship. Callee is the zero Site
// when Kind is Native.
//
// Edge is comparable and is used directly as a map key.
type Edge struct {
	Kind   Kind
	Caller Site
	Callee Site
}

// NewResolved returns a resolved edge between two sites.
func NewResolved(caller, callee Site) Edge {
	return Edge{Kind: Resolved, Caller: caller, Callee: callee}
}

// NewNative returns an edge from caller into a native target.
func NewNative(caller Site) Edge {
	return Edge{Kind: Native, Caller: caller}
}

// IsNative reports whether the callee is a native target.
func (e Edge) IsNative() bool { return e.Kind == Native }

// String returns the canonical form of the edge.
func (e Edge) String() string {
	if e.Kind == Native {
		return e.Caller.String() + " -> Native"
	}
	return fmt.Sprintf("%s -> %s", e.Caller, e.Callee)
}

// Less orders edges by caller, then kind, then callee.
func (e Edge) Less(o Edge) bool {
	if e.Caller != o.Caller {
		return e.Caller.less(o.Caller)
	}
	if e.Kind != o.Kind {
		return e.Kind < o.Kind
	}
	return e.Callee.less(o.Callee)
}

// Set is an unordered collection of distinct edges.
type Set map[Edge]struct{}

// NewSet builds a set from the given edges. Duplicates collapse.
func NewSet(edges ...Edge) Set {
	s := make(Set, len(edges))
	for _, e := range edges {
		s.Add(e)
	}
	return s
}

// Add inserts e into the set.
func (s Set) Add(e Edge) { s[e] = struct{}{} }

// Contains reports whether e is in the set.
func (s Set) Contains(e Edge) bool {
	_, ok := s[e]
	return ok
}

// Len returns the number of distinct edges.
func (s Set) Len() int { return len(s) }

// WithoutNatives returns a copy of the set with every native edge removed.
func (s Set) WithoutNatives() Set {
	out := make(Set, len(s))
	for e := range s {
		if !e.IsNative() {
			out.Add(e)
		}
	}
	return out
}

// Natives returns the number of native edges in the set.
func (s Set) Natives() int {
	n := 0
	for e := range s {
		if e.IsNative() {
			n++
		}
	}
	return n
}

// IntersectLen returns |s ∩ o|.
func (s Set) IntersectLen(o Set) int {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for e := range small {
		if large.Contains(e) {
			n++
		}
	}
	return n
}

// Minus returns the edges in s that are not in o, sorted.
func (s Set) Minus(o Set) []Edge {
	var out []Edge
	for e := range s {
		if !o.Contains(e) {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out
}

// Sorted returns the edges of the set in a stable order.
func (s Set) Sorted() []Edge {
	out := make([]Edge, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sortEdges(out)
	return out
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].Less(edges[j]) })
}
