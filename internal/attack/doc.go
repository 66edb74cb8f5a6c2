// Package attack recovers the keystream relation between unlock codes that
// were encrypted under one (key, nonce) pair.
//
// Counter mode turns a (key, nonce) pair into a fixed keystream K, so an
// artifact observed at block offset o carries C_o = K xor S_o, where S_o is
// the register block the LFSR emitted at that offset. Two such artifacts
// give
//
//	C_i xor C_j = S_i xor S_j = (B^i + B^j) X
//
// with B the GF(2) matrix advancing the register by one block and X the
// register at offset 0. The key never appears. Stacking these equations and
// reducing them yields X, or at least every linear function of X the
// observations determine.
//
// A future artifact is then
//
//	C_t = C_0 xor (B^o0 + B^t) X
//
// which is computable whenever (B^o0 + B^t) annihilates the kernel of the
// system. Recover never guesses: a prediction outside the determined
// subspace fails with ErrInsufficientData.
package attack
