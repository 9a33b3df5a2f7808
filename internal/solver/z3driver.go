package solver

import (
	"fmt"

	"github.com/aclements/go-z3/z3"
)

// Z3Driver backs solver.Driver with Z3's fixedpoint (Spacer/PDR) engine,
// the same registerRelation/addRule/query triple spec.md §6 names almost
// verbatim after Z3's own Z3_fixedpoint_* C API. Rules and queries arrive as
// SMT-LIB2 text built by the chc package; this driver only owns the Z3
// context, the fixedpoint object, and the response cache.
type Z3Driver struct {
	ctx       *z3.Context
	fp        *z3.Fixedpoint
	cache     *ResponseCache
	relSorts  map[string][]string
	unhandled []string
}

// NewZ3Driver creates a driver with a fresh Z3 context. cache may be nil,
// in which case every query is solved (no persisted state, per spec.md §6).
func NewZ3Driver(cache *ResponseCache) *Z3Driver {
	cfg := z3.NewContextConfig()
	ctx := z3.NewContext(cfg)
	return &Z3Driver{
		ctx:      ctx,
		fp:       ctx.NewFixedpoint(),
		cache:    cache,
		relSorts: make(map[string][]string),
	}
}

func (d *Z3Driver) RegisterRelation(name string, argSorts []string) error {
	if _, exists := d.relSorts[name]; exists {
		return fmt.Errorf("relation %q already registered", name)
	}
	sorts := make([]z3.Sort, len(argSorts))
	for i, s := range argSorts {
		sort, err := d.sortByName(s)
		if err != nil {
			return fmt.Errorf("relation %q: %w", name, err)
		}
		sorts[i] = sort
	}
	rel := d.ctx.FuncDecl(name, sorts, d.ctx.BoolSort())
	d.fp.RegisterRelation(rel)
	d.relSorts[name] = argSorts
	return nil
}

func (d *Z3Driver) sortByName(name string) (z3.Sort, error) {
	switch name {
	case "Int", "Address", "Error":
		return d.ctx.IntSort(), nil
	case "Bool":
		return d.ctx.BoolSort(), nil
	default:
		return nil, fmt.Errorf("unsupported sort %q", name)
	}
}

func (d *Z3Driver) AddRule(expr string, name string) error {
	asts, err := d.ctx.ParseSMTLIB2String(expr)
	if err != nil {
		return fmt.Errorf("rule %q: %w", name, err)
	}
	for _, ast := range asts {
		d.fp.AddRule(ast.(z3.Bool), name)
	}
	return nil
}

func (d *Z3Driver) Query(expr string) (Result, *CexGraph, error) {
	if d.cache != nil {
		if cached, ok := d.cache.Lookup(expr); ok {
			return cached.Result, cached.Graph, nil
		}
	}

	asts, err := d.ctx.ParseSMTLIB2String(expr)
	if err != nil || len(asts) == 0 {
		d.unhandled = append(d.unhandled, expr)
		return Unknown, nil, fmt.Errorf("unparseable query: %w", err)
	}

	verdict := d.fp.Query(asts[0].(z3.Bool))
	result, graph := d.classify(verdict)

	if d.cache != nil {
		d.cache.Store(expr, CachedResponse{Result: result, Graph: graph})
	}
	return result, graph, nil
}

func (d *Z3Driver) classify(verdict z3.LBool) (Result, *CexGraph) {
	switch verdict {
	case z3.False:
		return Unsat, nil
	case z3.True:
		return Sat, buildCexGraph(d.fp.Answer())
	default:
		return Unknown, nil
	}
}

// buildCexGraph walks the fixedpoint engine's answer expression (a nested
// conjunction of predicate applications Z3 built while discharging the
// query) into the flat id->node/edge shape solver.CexGraph exposes, so the
// chc package's reconstructor never touches a Z3 type directly.
func buildCexGraph(answer z3.AST) *CexGraph {
	graph := &CexGraph{Nodes: make(map[int]CexNode), Edges: make(map[int][]int)}
	nextID := 0
	var visit func(node z3.AST) int
	visit = func(node z3.AST) int {
		id := nextID
		nextID++
		decl := node.App().Decl()
		args := node.App().Args()
		argStrings := make([]string, len(args))
		var children []int
		for i, arg := range args {
			argStrings[i] = arg.String()
			if arg.Kind() == z3.AppAST {
				children = append(children, visit(arg))
			}
		}
		graph.Nodes[id] = CexNode{ID: id, Predicate: decl.Name(), Args: argStrings}
		graph.Edges[id] = children
		return id
	}
	graph.Root = visit(answer)
	return graph
}

func (d *Z3Driver) Push() { d.fp.Push() }
func (d *Z3Driver) Pop()  { d.fp.Pop() }

func (d *Z3Driver) Reset() {
	d.fp = d.ctx.NewFixedpoint()
	d.relSorts = make(map[string][]string)
	d.unhandled = nil
}

func (d *Z3Driver) UnhandledQueries() []string {
	return d.unhandled
}
