package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanso/internal/parser"
	"kanso/internal/semantic"
)

func buildTestProgram(t *testing.T, source string) *Program {
	t.Helper()

	contract, parseErrors, scanErrors := parser.ParseSource("test.ka", source)
	require.Empty(t, scanErrors)
	require.Empty(t, parseErrors)

	analyzer := semantic.NewAnalyzer()
	errs := analyzer.Analyze(contract)
	require.Empty(t, errs, "semantic errors: %v", errs)

	program := BuildProgram(contract, analyzer.GetContext())
	require.NotNil(t, program)
	return program
}

func TestBuildIfStatementBranchesAndMerges(t *testing.T) {
	source := `
contract IfTest {
    ext fn pick(x: U256) -> U256 {
        let mut result: U256 = 0;
        if (x > 0) {
            result = 1;
        } else {
            result = 2;
        }
        result
    }
}`

	program := buildTestProgram(t, source)
	output := PrintProgram(program)

	assert.Contains(t, output, "BRANCH")
	assert.Contains(t, output, "JUMP")
}

func TestBuildWhileStatementHasHeaderAndExit(t *testing.T) {
	source := `
contract WhileTest {
    ext fn sumTo(n: U256) -> U256 {
        let mut total: U256 = 0;
        let mut i: U256 = 0;
        while (i < n) {
            total = total + i;
            i = i + 1;
        }
        total
    }
}`

	program := buildTestProgram(t, source)
	require.Len(t, program.Functions, 1)

	fn := program.Functions[0]
	assert.Greater(t, len(fn.Blocks), 2, "while lowers into at least header/body/exit blocks")
	assert.Contains(t, PrintProgram(program), "BRANCH")
}

func TestBuildIfStatementWithoutElseFallsThroughToMerge(t *testing.T) {
	source := `
contract IfNoElseTest {
    ext fn guard(x: U256) -> U256 {
        let mut result: U256 = 0;
        if (x > 0) {
            result = 1;
        }
        result
    }
}`

	program := buildTestProgram(t, source)
	output := PrintProgram(program)
	assert.Contains(t, output, "BRANCH")
}
