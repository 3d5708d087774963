package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const sourcePlaceholder = "{source}"

// Generator runs an external call-graph tool and captures its stdout.
type Generator struct {
	argv    []string
	timeout time.Duration
}

// NewGenerator returns a Generator for the argv template. Every {source}
// placeholder is replaced by the analysed file; without a placeholder the
// file is appended as the last argument.
func NewGenerator(argv []string, timeout time.Duration) *Generator {
	return &Generator{argv: argv, timeout: timeout}
}

// Args expands the template for source.
func (g *Generator) Args(source string) []string {
	args := make([]string, 0, len(g.argv)+1)
	found := false
	for _, a := range g.argv {
		if strings.Contains(a, sourcePlaceholder) {
			found = true
			a = strings.ReplaceAll(a, sourcePlaceholder, source)
		}
		args = append(args, a)
	}
	if !found {
		args = append(args, source)
	}
	return args
}

// Run executes the tool for source from the source's directory.
func (g *Generator) Run(ctx context.Context, source string) ([]byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, err
	}
	args := g.Args(abs)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = filepath.Dir(abs)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("generator timed out after %s on %s", g.timeout, source)
		}
		return nil, fmt.Errorf("generator failed on %s: %w: %s", source, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
