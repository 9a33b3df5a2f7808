package builtins

import "math/big"

// unsignedMax returns 2^width - 1 as a decimal string.
func unsignedMax(width int) string {
	max := new(big.Int).Lsh(big.NewInt(1), uint(width))
	max.Sub(max, big.NewInt(1))
	return max.String()
}

// signedMax returns 2^(width-1) - 1 as a decimal string.
func signedMax(width int) string {
	max := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	max.Sub(max, big.NewInt(1))
	return max.String()
}

// signedMin returns -2^(width-1) as a decimal string.
func signedMin(width int) string {
	min := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	min.Neg(min)
	return min.String()
}
