package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"go-callgraph-eval/compare"
)

// errSuiteFailed is returned once failing cases have already been reported.
var errSuiteFailed = errors.New("regression suite failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errSuiteFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

type rootOptions struct {
	verbose bool
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "callgraph-eval",
		Short:         "Score generated call graphs against hand-written ground truth",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.log = newLogger(cmd.ErrOrStderr(), opts.verbose)
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.AddCommand(newScoreCmd(opts), newSuiteCmd(opts))
	return cmd
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	var (
		showDiff bool
		strict   bool
		passOn   string
	)
	cmd := &cobra.Command{
		Use:   "score <candidate> <truth>",
		Short: "Compare one call-graph dump with its ground truth",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			on := PassCriterion(passOn)
			if on != PassBoth && on != PassWithoutNatives {
				return fmt.Errorf("unknown --pass-on %q", passOn)
			}
			res, err := compare.Files(args[0], args[1])
			if err != nil {
				return err
			}
			root.log.Debug("scored", "candidate", args[0], "truth", args[1],
				"with_natives", res.WithNatives.String(), "without_natives", res.WithoutNatives.String())
			rep := NewReporter(cmd.OutOrStdout(), showDiff)
			rep.Scores(res)
			if showDiff {
				rep.Diff(res.Diff(true))
			}
			if strict && !passed(res, on) {
				return fmt.Errorf("%s does not match %s", args[0], args[1])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showDiff, "diff", false, "List missing and spurious edges")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero unless the graphs match")
	cmd.Flags().StringVar(&passOn, "pass-on", string(PassBoth), "Variants that must match with --strict (both, without-natives)")
	return cmd
}

type suiteOptions struct {
	configPath string
	only       string
	showDiff   bool
	neo4jURI   string
	neo4jUser  string
	neo4jPass  string
	clean      bool
}

func newSuiteCmd(root *rootOptions) *cobra.Command {
	opts := &suiteOptions{}
	cmd := &cobra.Command{
		Use:   "suite [root]",
		Short: "Run every regression case under a suite directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runSuite(cmd, root.log, dir, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Suite configuration file (YAML)")
	f.StringVar(&opts.only, "only", "", "Only run suite directories with this prefix (e.g. import-export)")
	f.BoolVar(&opts.showDiff, "diff", false, "List missing and spurious edges of failing cases")
	f.StringVar(&opts.neo4jURI, "neo4j-uri", "", "Neo4j bolt URI")
	f.StringVar(&opts.neo4jUser, "neo4j-user", "", "Neo4j username")
	f.StringVar(&opts.neo4jPass, "neo4j-pass", "", "Neo4j password; enables export of compared edges")
	f.BoolVar(&opts.clean, "clean", false, "Clean previously exported evaluation data before loading")
	return cmd
}

func runSuite(cmd *cobra.Command, log *slog.Logger, dir string, opts *suiteOptions) error {
	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.neo4jURI != "" {
		cfg.Neo4j.URI = opts.neo4jURI
	}
	if opts.neo4jUser != "" {
		cfg.Neo4j.User = opts.neo4jUser
	}
	if opts.neo4jPass != "" {
		cfg.Neo4j.Password = opts.neo4jPass
	}
	if opts.clean {
		cfg.Neo4j.Clean = true
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	log.Debug("suite", "root", root, "pass_on", cfg.PassOn, "generator", cfg.Generator)

	collector := NewCollector(root, cfg, log)
	if err := collector.CollectCases(opts.only); err != nil {
		return err
	}
	log.Debug("collected suite", "cases", len(collector.Cases))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var loader *Neo4jLoader
	if cfg.Neo4j.Enabled() {
		loader, err = NewNeo4jLoader(ctx, cfg.Neo4j, log)
		if err != nil {
			return err
		}
		defer loader.Close()
		if cfg.Neo4j.Clean {
			if err := loader.CleanGraph(); err != nil {
				return err
			}
		}
		if err := loader.CreateIndexes(); err != nil {
			return err
		}
	}

	rep := NewReporter(cmd.OutOrStdout(), opts.showDiff)
	rep.Banner()
	group := ""
	summary := collector.Evaluate(ctx, func(r CaseResult) {
		if r.Case.Group != group {
			group = r.Case.Group
			rep.Group(group)
		}
		rep.Case(r)
	})
	rep.Summary(summary)

	if loader != nil {
		for _, r := range collector.Results {
			if r.Err != nil {
				continue
			}
			if err := loader.LoadComparison(r.Case.ID(), r.Result); err != nil {
				return err
			}
		}
		log.Info("comparisons exported to neo4j", "uri", cfg.Neo4j.URI, "cases", len(collector.Results))
	}

	if !summary.OK() {
		return errSuiteFailed
	}
	return nil
}
