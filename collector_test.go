package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"go-callgraph-eval/edge"
)

const (
	fgLine = `'f' (a.js@1:0-1) -> 'g' (a.js@2:0-1)`
	fhLine = `'f' (a.js@1:0-1) -> 'h' (Native)`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newSuite lays out a small regression suite:
//
//	basics/match       passes both variants
//	basics/natives     passes only without natives
//	basics/orphan      truth without candidate, skipped
//	classes/bundle     txtar archive with one passing case
//	import-export/es6  one failing case
func newSuite(t *testing.T) (string, *Config) {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "basics", "match.out"), fgLine+"\n"+fhLine+"\n")
	writeFile(t, filepath.Join(root, "basics", "match.truth"), fhLine+"\n"+fgLine+"\n"+fgLine+"\n")
	writeFile(t, filepath.Join(root, "basics", "natives.out"), fgLine+"\n"+fhLine+"\n")
	writeFile(t, filepath.Join(root, "basics", "natives.truth"), fgLine+"\n")
	writeFile(t, filepath.Join(root, "basics", "orphan.truth"), fgLine+"\n")
	writeFile(t, filepath.Join(root, "basics", "match.js"), "function f() { g(); }\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "basics", "nested"), 0o755))

	bundle := txtar.Format(&txtar.Archive{
		Comment: []byte("bundled class cases\n"),
		Files: []txtar.File{
			{Name: "ctor.out", Data: []byte(fgLine + "\n")},
			{Name: "ctor.truth", Data: []byte(fgLine + "\n")},
			{Name: "lonely.truth", Data: []byte(fgLine + "\n")},
		},
	})
	writeFile(t, filepath.Join(root, "classes", "bundle.txtar"), string(bundle))

	writeFile(t, filepath.Join(root, "import-export", "es6", "imp.out"), `'main' (m.js@1:0-9) -> 'x' (lib.js@3:0-4)`+"\n")
	writeFile(t, filepath.Join(root, "import-export", "es6", "imp.truth"), `'main' (m.js@1:0-9) -> 'x' (lib.js@4:0-4)`+"\n")

	cfg := DefaultConfig()
	cfg.Directories = []string{"basics", "classes", "import-export/es6"}
	return root, cfg
}

func caseIDs(cases []Case) []string {
	ids := make([]string, 0, len(cases))
	for _, c := range cases {
		ids = append(ids, c.ID())
	}
	return ids
}

func TestCollectCases(t *testing.T) {
	root, cfg := newSuite(t)
	c := NewCollector(root, cfg, discardLogger())

	require.NoError(t, c.CollectCases(""))
	assert.Equal(t, []string{
		"basics/match",
		"basics/natives",
		"classes/ctor",
		"import-export/es6/imp",
	}, caseIDs(c.Cases))

	ctor := c.Cases[2]
	assert.Equal(t, filepath.Join(root, "classes", "bundle.txtar")+"#ctor.out", ctor.Candidate.Path)
	assert.True(t, ctor.Candidate.Bundled)
	assert.False(t, c.Cases[0].Candidate.Bundled)
}

func TestCollectCasesOnly(t *testing.T) {
	root, cfg := newSuite(t)
	c := NewCollector(root, cfg, discardLogger())

	require.NoError(t, c.CollectCases("import-export"))
	assert.Equal(t, []string{"import-export/es6/imp"}, caseIDs(c.Cases))

	err := NewCollector(root, cfg, discardLogger()).CollectCases("nothing")
	assert.Error(t, err)
}

func TestGroups(t *testing.T) {
	c := NewCollector(t.TempDir(), DefaultConfig(), discardLogger())

	assert.Len(t, c.Groups(""), 6)
	assert.Equal(t, []string{
		"import-export/define",
		"import-export/es6",
		"import-export/module.exports",
	}, c.Groups("import-export"))
	assert.Equal(t, []string{"classes"}, c.Groups("classes/"))
	assert.Empty(t, c.Groups("class"))
}

func TestCollectMissingDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Directories = []string{"absent"}
	err := NewCollector(t.TempDir(), cfg, discardLogger()).CollectCases("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEvaluate(t *testing.T) {
	root, cfg := newSuite(t)
	c := NewCollector(root, cfg, discardLogger())
	require.NoError(t, c.CollectCases(""))

	var reported []string
	sum := c.Evaluate(context.Background(), func(r CaseResult) {
		reported = append(reported, r.Case.ID())
	})

	assert.Equal(t, caseIDs(c.Cases), reported)
	require.Len(t, c.Results, 4)
	assert.True(t, c.Results[0].Passed)
	assert.False(t, c.Results[1].Passed)
	assert.True(t, c.Results[2].Passed)
	assert.False(t, c.Results[3].Passed)

	assert.Equal(t, 2, sum.Passed)
	assert.Equal(t, 2, sum.Failed)
	assert.False(t, sum.OK())

	// match: 2/2, natives: 1 of 2 candidates, ctor: 1/1, imp: 0/1
	assert.Equal(t, 4, sum.WithNatives.Matched)
	assert.Equal(t, 6, sum.WithNatives.Candidate)
	assert.Equal(t, 5, sum.WithNatives.Truth)
}

func TestEvaluatePassOnWithoutNatives(t *testing.T) {
	root, cfg := newSuite(t)
	cfg.PassOn = PassWithoutNatives
	c := NewCollector(root, cfg, discardLogger())
	require.NoError(t, c.CollectCases("basics"))

	sum := c.Evaluate(context.Background(), nil)
	assert.Equal(t, 2, sum.Passed)
	assert.True(t, sum.OK())
}

func TestEvaluateMalformedCase(t *testing.T) {
	root, cfg := newSuite(t)
	writeFile(t, filepath.Join(root, "basics", "match.out"), "not an edge at all\n")
	c := NewCollector(root, cfg, discardLogger())
	require.NoError(t, c.CollectCases("basics"))

	sum := c.Evaluate(context.Background(), nil)

	r := c.Results[0]
	require.Error(t, r.Err)
	var perr *edge.ParseError
	assert.True(t, errors.As(r.Err, &perr))
	assert.False(t, r.Passed)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, 1, sum.WithNatives.Truth, "errored case adds nothing to the totals")
}

func TestEvaluateWithGenerator(t *testing.T) {
	root := t.TempDir()
	// The "generator" echoes the source back, so each source holds its own graph.
	writeFile(t, filepath.Join(root, "basics", "ok.js"), fgLine+"\n")
	writeFile(t, filepath.Join(root, "basics", "ok.truth"), fgLine+"\n")
	writeFile(t, filepath.Join(root, "basics", "bad.js"), "garbage\n")
	writeFile(t, filepath.Join(root, "basics", "bad.truth"), fgLine+"\n")
	writeFile(t, filepath.Join(root, "basics", "skipped.out"), fgLine+"\n")
	writeFile(t, filepath.Join(root, "basics", "skipped.truth"), fgLine+"\n")

	cfg := DefaultConfig()
	cfg.Directories = []string{"basics"}
	cfg.Generator = []string{"cat", "{source}"}
	cfg.GeneratorTimeout = 10 * time.Second

	c := NewCollector(root, cfg, discardLogger())
	require.NoError(t, c.CollectCases(""))
	assert.Equal(t, []string{"basics/bad", "basics/ok"}, caseIDs(c.Cases))

	sum := c.Evaluate(context.Background(), nil)
	assert.Error(t, c.Results[0].Err)
	assert.True(t, c.Results[1].Passed)
	assert.Equal(t, 1, sum.Passed)
	assert.Equal(t, 1, sum.Failed)
}
