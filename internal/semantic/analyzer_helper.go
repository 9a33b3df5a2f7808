package semantic

import (
	"kanso/internal/builtins"
	"math/big"
)

// getTypeMaxValue returns the maximum value for a given numeric type
func (a *Analyzer) getTypeMaxValue(typeName string) *big.Int {
	_, max, ok := builtins.Bounds(typeName)
	if !ok {
		return nil
	}
	n := new(big.Int)
	n.SetString(max, 10)
	return n
}

// getTypeMinValue returns the minimum value for a given numeric type, negative
// for signed types, zero for unsigned ones.
func (a *Analyzer) getTypeMinValue(typeName string) *big.Int {
	min, _, ok := builtins.Bounds(typeName)
	if !ok {
		return nil
	}
	n := new(big.Int)
	n.SetString(min, 10)
	return n
}
