// Package gf2 provides dense matrices over GF(2) and a Gaussian elimination
// solver. Rows are packed into 64-bit words, so addition is XOR and
// multiplication is AND.
package gf2
