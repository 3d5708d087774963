package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/txtar"

	"go-callgraph-eval/compare"
	"go-callgraph-eval/edge"
)

const bundleExt = ".txtar"

// Collector discovers the cases of a regression suite and evaluates them.
type Collector struct {
	Root string

	cfg *Config
	log *slog.Logger
	gen *Generator

	Cases   []Case
	Results []CaseResult
}

// NewCollector creates a Collector for the suite rooted at root.
func NewCollector(root string, cfg *Config, log *slog.Logger) *Collector {
	c := &Collector{Root: root, cfg: cfg, log: log}
	if len(cfg.Generator) > 0 {
		c.gen = NewGenerator(cfg.Generator, cfg.GeneratorTimeout)
	}
	return c
}

// Groups returns the configured suite directories, keeping only those with
// the given prefix when only is non-empty.
func (c *Collector) Groups(only string) []string {
	only = strings.Trim(filepath.ToSlash(only), "/")
	var groups []string
	for _, d := range c.cfg.Directories {
		d = strings.Trim(filepath.ToSlash(d), "/")
		if only == "" || d == only || strings.HasPrefix(d, only+"/") {
			groups = append(groups, d)
		}
	}
	return groups
}

// CollectCases walks every selected suite directory and pairs files into cases.
func (c *Collector) CollectCases(only string) error {
	groups := c.Groups(only)
	if len(groups) == 0 {
		return fmt.Errorf("no suite directory matches %q", only)
	}
	for _, g := range groups {
		cases, err := c.collectGroup(g)
		if err != nil {
			return err
		}
		c.log.Debug("collected cases", "group", g, "count", len(cases))
		c.Cases = append(c.Cases, cases...)
	}
	return nil
}

func (c *Collector) collectGroup(group string) ([]Case, error) {
	dir := filepath.Join(c.Root, filepath.FromSlash(group))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list suite directory: %w", err)
	}

	ext := c.cfg.Extensions
	sources := make(map[string]string)
	candidates := make(map[string]string)
	truths := make(map[string]string)
	var bundles []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(dir, name)
		switch {
		case strings.HasSuffix(name, bundleExt):
			bundles = append(bundles, path)
		case strings.HasSuffix(name, ext.Truth):
			truths[strings.TrimSuffix(name, ext.Truth)] = path
		case strings.HasSuffix(name, ext.Candidate):
			candidates[strings.TrimSuffix(name, ext.Candidate)] = path
		case strings.HasSuffix(name, ext.Source):
			sources[strings.TrimSuffix(name, ext.Source)] = path
		}
	}

	var cases []Case
	for _, name := range sortedKeys(truths) {
		cs := Case{Group: group, Name: name, Truth: Input{Path: truths[name]}}
		if c.gen != nil {
			src, ok := sources[name]
			if !ok {
				continue
			}
			cs.Source = src
		} else {
			cand, ok := candidates[name]
			if !ok {
				continue
			}
			cs.Candidate = Input{Path: cand}
		}
		cases = append(cases, cs)
	}

	for _, path := range bundles {
		bundled, err := c.bundleCases(group, path)
		if err != nil {
			return nil, err
		}
		cases = append(cases, bundled...)
	}
	return cases, nil
}

// bundleCases expands a txtar archive holding <name><candidate> and
// <name><truth> members into cases.
func (c *Collector) bundleCases(group, path string) ([]Case, error) {
	ar, err := txtar.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	ext := c.cfg.Extensions
	candidates := make(map[string]txtar.File)
	truths := make(map[string]txtar.File)
	for _, f := range ar.Files {
		switch {
		case strings.HasSuffix(f.Name, ext.Truth):
			truths[strings.TrimSuffix(f.Name, ext.Truth)] = f
		case strings.HasSuffix(f.Name, ext.Candidate):
			candidates[strings.TrimSuffix(f.Name, ext.Candidate)] = f
		}
	}

	var cases []Case
	for _, name := range sortedKeys(truths) {
		cand, ok := candidates[name]
		if !ok {
			c.log.Warn("bundle member has no candidate", "bundle", path, "case", name)
			continue
		}
		truth := truths[name]
		cases = append(cases, Case{
			Group:     group,
			Name:      name,
			Candidate: Input{Path: path + "#" + cand.Name, Data: cand.Data, Bundled: true},
			Truth:     Input{Path: path + "#" + truth.Name, Data: truth.Data, Bundled: true},
		})
	}
	return cases, nil
}

// Evaluate scores every collected case in order, calling report after each.
func (c *Collector) Evaluate(ctx context.Context, report func(CaseResult)) Summary {
	var sum Summary
	for _, cs := range c.Cases {
		r := c.evaluate(ctx, cs)
		if r.Err != nil {
			c.log.Error("case aborted", "case", cs.ID(), "error", r.Err)
		} else {
			c.log.Debug("case scored", "case", cs.ID(),
				"with_natives", r.Result.WithNatives.String(),
				"without_natives", r.Result.WithoutNatives.String())
		}
		c.Results = append(c.Results, r)
		sum.Add(r)
		if report != nil {
			report(r)
		}
	}
	return sum
}

func (c *Collector) evaluate(ctx context.Context, cs Case) CaseResult {
	r := CaseResult{Case: cs}

	var candidate edge.Set
	var err error
	if cs.Source != "" {
		candidate, err = c.generate(ctx, cs)
	} else {
		candidate, err = load(cs.Candidate)
	}
	if err != nil {
		r.Err = err
		return r
	}
	truth, err := load(cs.Truth)
	if err != nil {
		r.Err = err
		return r
	}

	r.Result = compare.Sets(candidate, truth)
	r.Passed = passed(r.Result, c.cfg.PassOn)
	return r
}

func (c *Collector) generate(ctx context.Context, cs Case) (edge.Set, error) {
	out, err := c.gen.Run(ctx, cs.Source)
	if err != nil {
		return nil, err
	}
	return compare.Load(bytes.NewReader(out), cs.Source)
}

func load(in Input) (edge.Set, error) {
	if !in.Bundled {
		return compare.LoadFile(in.Path)
	}
	return compare.Load(bytes.NewReader(in.Data), in.Path)
}

func passed(r compare.Result, on PassCriterion) bool {
	if on == PassWithoutNatives {
		return r.WithoutNatives.Perfect()
	}
	return r.WithNatives.Perfect() && r.WithoutNatives.Perfect()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
