package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kanso/internal/ast"
)

func TestVerificationTargetNameKnownIDs(t *testing.T) {
	assert.Equal(t, "Assert", VerificationTargetName(VerificationAssert))
	assert.Equal(t, "Overflow", VerificationTargetName(VerificationOverflow))
	assert.Equal(t, "Underflow", VerificationTargetName(VerificationUnderflow))
	assert.Equal(t, "DivByZero", VerificationTargetName(VerificationDivByZero))
	assert.Equal(t, "PopEmptyArray", VerificationTargetName(VerificationPopEmptyArray))
}

func TestVerificationTargetNameUnknownID(t *testing.T) {
	assert.Equal(t, "Target(9999)", VerificationTargetName(9999))
}

func TestVerificationWarningFormatsMessageWithTargetName(t *testing.T) {
	w := VerificationWarning(VerificationOverflow, ast.Position{Line: 3, Column: 5}, "addition may overflow")

	assert.Equal(t, Warning, w.Level)
	assert.Equal(t, "V4984", w.Code)
	assert.Equal(t, "Overflow: addition may overflow", w.Message)
}
