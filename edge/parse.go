package edge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// sitePattern matches 'name' (file@line:start-end). Columns are matched but
// not captured.
const sitePattern = `'(.*)' \(([^@]*)@([0-9]+):[0-9]+-[0-9]+\)`

var (
	resolvedRegex = regexp.MustCompile(`^` + sitePattern + ` -> ` + sitePattern + `$`)
	nativeRegex   = regexp.MustCompile(`^` + sitePattern + ` -> '(.*)' \(Native\)$`)
)

// ParseError reports a line that matches neither edge shape.
type ParseError struct {
	Path string // empty when the line did not come from a file
	Line int    // 1-based, 0 when unknown
	Text string
	Err  error // set when a numeric field could not be converted
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	fmt.Fprintf(&b, "malformed call-graph edge %q", e.Text)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse converts one line of call-graph output into an Edge.
//
// The resolved shape is tried before the native one, so a resolved callee
// whose name happens to contain "Native" is never misread as a native call.
func Parse(line string) (Edge, error) {
	text := strings.TrimSpace(line)

	if m := resolvedRegex.FindStringSubmatch(text); m != nil {
		caller, err := site(m[1], m[2], m[3])
		if err != nil {
			return Edge{}, &ParseError{Text: text, Err: err}
		}
		callee, err := site(m[4], m[5], m[6])
		if err != nil {
			return Edge{}, &ParseError{Text: text, Err: err}
		}
		return NewResolved(caller, callee), nil
	}

	if m := nativeRegex.FindStringSubmatch(text); m != nil {
		caller, err := site(m[1], m[2], m[3])
		if err != nil {
			return Edge{}, &ParseError{Text: text, Err: err}
		}
		return NewNative(caller), nil
	}

	return Edge{}, &ParseError{Text: text}
}

// MustParse is like Parse but panics on malformed input.
func MustParse(line string) Edge {
	e, err := Parse(line)
	if err != nil {
		panic(err)
	}
	return e
}

func site(name, file, line string) (Site, error) {
	n, err := strconv.Atoi(line)
	if err != nil {
		return Site{}, fmt.Errorf("line number: %w", err)
	}
	return Site{Name: name, File: file, Line: n}, nil
}
