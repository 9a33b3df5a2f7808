package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanso/internal/errors"
	"kanso/internal/ir"
	"kanso/internal/solver"
)

type fakeDriver struct {
	relations map[string][]string
	rules     []string
	queries   []string
	result    solver.Result
	graph     *solver.CexGraph
	unhandled []string
}

func newFakeDriver(result solver.Result) *fakeDriver {
	return &fakeDriver{relations: make(map[string][]string), result: result}
}

func (f *fakeDriver) RegisterRelation(name string, argSorts []string) error {
	f.relations[name] = argSorts
	return nil
}

func (f *fakeDriver) AddRule(expr string, name string) error {
	f.rules = append(f.rules, expr)
	return nil
}

func (f *fakeDriver) Query(expr string) (solver.Result, *solver.CexGraph, error) {
	f.queries = append(f.queries, expr)
	return f.result, f.graph, nil
}

func (f *fakeDriver) Push()  {}
func (f *fakeDriver) Pop()   {}
func (f *fakeDriver) Reset() {}

func (f *fakeDriver) UnhandledQueries() []string { return f.unhandled }

func externalJumpReturnProgram() *ir.Program {
	entry := &ir.BasicBlock{Label: "entry"}
	ret := &ir.BasicBlock{Label: "ret"}
	entry.Terminator = &ir.JumpTerminator{Target: ret}
	ret.Terminator = &ir.ReturnTerminator{}

	fn := &ir.Function{Name: "run", External: true, Entry: entry, Blocks: []*ir.BasicBlock{entry, ret}}
	return &ir.Program{Contract: "Token", Functions: []*ir.Function{fn}}
}

func TestAnalyzeRegistersRelationsAndRulesWithNoFindingsOnUnsat(t *testing.T) {
	driver := newFakeDriver(solver.Unsat)
	analyzer := NewAnalyzer(driver, map[string]bool{})

	findings, err := analyzer.Analyze(externalJumpReturnProgram())

	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.NotEmpty(t, driver.relations)
	assert.NotEmpty(t, driver.rules)
}

func assertRevertProgram() *ir.Program {
	entry := &ir.BasicBlock{Label: "entry"}
	entry.Terminator = &ir.RevertInstruction{Reason: "assert"}

	fn := &ir.Function{Name: "checked", Entry: entry, Blocks: []*ir.BasicBlock{entry}}
	return &ir.Program{Contract: "Token", Functions: []*ir.Function{fn}}
}

func TestAnalyzeProducesFindingWhenTargetQuerySat(t *testing.T) {
	driver := newFakeDriver(solver.Sat)
	driver.graph = &solver.CexGraph{
		Root:  0,
		Nodes: map[int]solver.CexNode{0: {ID: 0, Predicate: "block_checked"}},
	}
	analyzer := NewAnalyzer(driver, map[string]bool{})

	findings, err := analyzer.Analyze(assertRevertProgram())

	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, errors.VerificationAssert, findings[0].ErrorID)
	assert.Equal(t, "Token::checked", findings[0].Scope)
	assert.Contains(t, findings[0].Trace.String(), "Assert")
}

func TestUnhandledQueriesPassesThroughToDriver(t *testing.T) {
	driver := newFakeDriver(solver.Unknown)
	driver.unhandled = []string{"(assert some-weird-query)"}
	analyzer := NewAnalyzer(driver, map[string]bool{})

	assert.Equal(t, driver.unhandled, analyzer.UnhandledQueries())
}

func TestRegisterIsIdempotentAcrossRepeatedPredicates(t *testing.T) {
	driver := newFakeDriver(solver.Unsat)
	analyzer := NewAnalyzer(driver, map[string]bool{})

	program := externalJumpReturnProgram()
	_, err := analyzer.Analyze(program)
	require.NoError(t, err)

	relationCountAfterFirst := len(driver.relations)

	// Re-running register with the same predicates already declared must not
	// re-register anything (the driver only ever sees each relation once).
	err = analyzer.register(program, nil)
	require.NoError(t, err)
	assert.Equal(t, relationCountAfterFirst, len(driver.relations))
}
