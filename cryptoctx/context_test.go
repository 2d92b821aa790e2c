// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cryptoctx

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// testModulus is a fixed, large odd integer used as a deterministic M in
// tests, per spec §8's instruction to "fix a deterministic context by
// seeding M to a known ... modulus in test mode" rather than pay for real
// strong-RSA generation in every test.
var testModulus, _ = new(big.Int).SetString(
	"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"+
		"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFD", 16)

func testParams(t *testing.T, domain string) Params {
	t.Helper()
	p := DefaultParams(domain)
	p.FixedModulus = testModulus
	return p
}

func TestNewRejectsEmptyDomain(t *testing.T) {
	_, err := New(testParams(t, ""))
	require.ErrorIs(t, err, ErrDomainEmpty)
}

func TestNewRejectsSmallBitLength(t *testing.T) {
	params := testParams(t, "unit-test")
	params.BitLength = 512
	_, err := New(params)
	require.ErrorIs(t, err, ErrBitLengthTooSmall)
}

func TestNewDeterministicContext(t *testing.T) {
	ctx, err := New(testParams(t, "unit-test"))
	require.NoError(t, err)
	require.Equal(t, testModulus, ctx.M)
	require.Equal(t, big.NewInt(4), ctx.G)
	require.Equal(t, DefaultMaxDepth, ctx.MaxDepth)
	require.Equal(t, uint64(DefaultMaxOps), ctx.MaxOps)
}

func TestPowModComposesExponents(t *testing.T) {
	ctx, err := New(testParams(t, "unit-test"))
	require.NoError(t, err)

	base := big.NewInt(7)
	a := big.NewInt(13)
	b := big.NewInt(17)

	step1, err := ctx.PowMod(base, a)
	require.NoError(t, err)
	step2, err := ctx.PowMod(step1, b)
	require.NoError(t, err)

	direct, err := ctx.PowMod(base, new(big.Int).Mul(a, b))
	require.NoError(t, err)

	require.Equal(t, 0, step2.Cmp(direct))
}

func TestPowModRejectsOversizedExponent(t *testing.T) {
	ctx, err := New(testParams(t, "unit-test"))
	require.NoError(t, err)

	huge := new(big.Int).Lsh(big.NewInt(1), uint(5*ctx.M.BitLen()))
	_, err = ctx.PowMod(big.NewInt(2), huge)
	require.ErrorIs(t, err, ErrExponentTooLarge)
}

func TestHashDepthIsDeterministicAndDiffersPerDepth(t *testing.T) {
	ctx, err := New(testParams(t, "unit-test"))
	require.NoError(t, err)

	h0a := ctx.HashDepth(0)
	h0b := ctx.HashDepth(0)
	h1 := ctx.HashDepth(1)

	require.Equal(t, 0, h0a.Cmp(h0b))
	require.NotEqual(t, 0, h0a.Cmp(h1))
}

func TestHashToPrimeRejectsOversizedAgentID(t *testing.T) {
	ctx, err := New(testParams(t, "unit-test"))
	require.NoError(t, err)

	oversized := make([]byte, MaxAgentIDBytes+1)
	_, err = ctx.HashToPrime(string(oversized))
	require.ErrorIs(t, err, ErrInputTooLong)
}

func TestHashToPrimeIsDeterministicAndDomainSeparated(t *testing.T) {
	ctx1, err := New(testParams(t, "domain-one"))
	require.NoError(t, err)
	ctx2, err := New(testParams(t, "domain-two"))
	require.NoError(t, err)

	p1a, err := ctx1.HashToPrime("agent-A")
	require.NoError(t, err)
	p1b, err := ctx1.HashToPrime("agent-A")
	require.NoError(t, err)
	require.Equal(t, 0, p1a.Cmp(p1b), "hash_to_prime must be deterministic")
	require.True(t, p1a.ProbablyPrime(32))
	require.GreaterOrEqual(t, p1a.BitLen(), 256)

	p2a, err := ctx2.HashToPrime("agent-A")
	require.NoError(t, err)
	require.NotEqual(t, 0, p1a.Cmp(p2a), "domains must not collide")
}
