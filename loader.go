package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"go-callgraph-eval/compare"
	"go-callgraph-eval/edge"
)

// Edge statuses stored on EVAL_CALL relationships.
const (
	statusMatched  = "matched"
	statusMissing  = "missing"
	statusSpurious = "spurious"
)

// Neo4jLoader exports compared call graphs into a Neo4j database using
// batch UNWIND queries.
type Neo4jLoader struct {
	driver neo4j.DriverWithContext
	ctx    context.Context
	log    *slog.Logger
}

// NewNeo4jLoader connects to Neo4j and returns a ready-to-use loader.
func NewNeo4jLoader(ctx context.Context, cfg Neo4jConfig, log *slog.Logger) (*Neo4jLoader, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j unreachable at %s: %w", cfg.URI, err)
	}
	return &Neo4jLoader{driver: driver, ctx: ctx, log: log}, nil
}

// Close releases the underlying Neo4j driver resources.
func (l *Neo4jLoader) Close() {
	l.driver.Close(l.ctx)
}

func (l *Neo4jLoader) runCypher(cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(l.ctx, l.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

// CleanGraph removes all previously exported evaluation data.
func (l *Neo4jLoader) CleanGraph() error {
	l.log.Info("cleaning existing evaluation graph")
	queries := []string{
		"MATCH ()-[r:EVAL_CALL]->() DELETE r",
		"MATCH (n:CGSite) DETACH DELETE n",
		"MATCH (n:CGNative) DETACH DELETE n",
	}
	for _, q := range queries {
		if err := l.runCypher(q, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes ensures the required Neo4j indexes exist.
func (l *Neo4jLoader) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX cg_site_key IF NOT EXISTS FOR (n:CGSite) ON (n.key)",
		"CREATE INDEX cg_native_case IF NOT EXISTS FOR (n:CGNative) ON (n.case)",
	}
	for _, q := range indexes {
		if err := l.runCypher(q, nil); err != nil {
			return err
		}
	}
	return nil
}

// LoadComparison upserts every edge of a case, tagged matched, missing or
// spurious. Native callees share one CGNative node per case.
func (l *Neo4jLoader) LoadComparison(caseID string, res compare.Result) error {
	resolved, natives := edgeRows(caseID, res)
	l.log.Info("loading call edges", "case", caseID, "count", len(resolved)+len(natives))

	if len(resolved) > 0 {
		err := l.runCypher(
			`UNWIND $batch AS row
			 MERGE (caller:CGSite {key: row.caller_key})
			 SET caller.name = row.caller_name, caller.file = row.caller_file, caller.line = row.caller_line
			 MERGE (callee:CGSite {key: row.callee_key})
			 SET callee.name = row.callee_name, callee.file = row.callee_file, callee.line = row.callee_line
			 MERGE (caller)-[r:EVAL_CALL {case: row.case}]->(callee)
			 SET r.status = row.status`,
			map[string]any{"batch": resolved},
		)
		if err != nil {
			return fmt.Errorf("load resolved edges of %s: %w", caseID, err)
		}
	}
	if len(natives) > 0 {
		err := l.runCypher(
			`UNWIND $batch AS row
			 MERGE (caller:CGSite {key: row.caller_key})
			 SET caller.name = row.caller_name, caller.file = row.caller_file, caller.line = row.caller_line
			 MERGE (n:CGNative {case: row.case})
			 MERGE (caller)-[r:EVAL_CALL {case: row.case}]->(n)
			 SET r.status = row.status`,
			map[string]any{"batch": natives},
		)
		if err != nil {
			return fmt.Errorf("load native edges of %s: %w", caseID, err)
		}
	}
	return nil
}

// edgeRows flattens the union of candidate and truth edges into query
// parameters, split by callee kind.
func edgeRows(caseID string, res compare.Result) (resolved, natives []map[string]any) {
	add := func(e edge.Edge, status string) {
		row := map[string]any{
			"case":        caseID,
			"status":      status,
			"caller_key":  e.Caller.String(),
			"caller_name": e.Caller.Name,
			"caller_file": e.Caller.File,
			"caller_line": e.Caller.Line,
		}
		if e.IsNative() {
			natives = append(natives, row)
			return
		}
		row["callee_key"] = e.Callee.String()
		row["callee_name"] = e.Callee.Name
		row["callee_file"] = e.Callee.File
		row["callee_line"] = e.Callee.Line
		resolved = append(resolved, row)
	}

	for _, e := range res.Candidate.Sorted() {
		if res.Truth.Contains(e) {
			add(e, statusMatched)
		} else {
			add(e, statusSpurious)
		}
	}
	for _, e := range res.Truth.Minus(res.Candidate) {
		add(e, statusMissing)
	}
	return resolved, natives
}
