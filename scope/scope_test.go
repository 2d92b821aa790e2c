// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scope

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/pathtrace/accumulator"
	"github.com/luxfi/pathtrace/cryptoctx"
	"github.com/luxfi/pathtrace/registry"
)

var testModulus, _ = new(big.Int).SetString(
	"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"+
		"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFD", 16)

func newTestContext(t *testing.T) *cryptoctx.Context {
	t.Helper()
	params := cryptoctx.DefaultParams("unit-test")
	params.FixedModulus = testModulus
	ctx, err := cryptoctx.New(params)
	require.NoError(t, err)
	return ctx
}

// S3: parallel ordering sensitivity.
func TestParallelMergeOrderingSensitivity(t *testing.T) {
	ctx := newTestContext(t)
	reg := registry.New(ctx)
	ps := NewParallelScope(ctx, reg, nil)

	baseT := big.NewInt(2)
	baseDepth := 3

	forward, err := ps.Merge(baseT, baseDepth, []string{"X", "Y", "Z"})
	require.NoError(t, err)
	backward, err := ps.Merge(baseT, baseDepth, []string{"Z", "Y", "X"})
	require.NoError(t, err)

	require.NotEqual(t, 0, forward.T.Cmp(backward.T))
	require.Equal(t, baseDepth+1, forward.Depth)
	require.Equal(t, baseDepth+1, backward.Depth)
	require.Equal(t, uint64(6), forward.Ops)
}

func TestParallelMergeEmptyBranchesIsIdentity(t *testing.T) {
	ctx := newTestContext(t)
	reg := registry.New(ctx)
	ps := NewParallelScope(ctx, reg, nil)

	baseT := big.NewInt(17)
	result, err := ps.Merge(baseT, 4, nil)
	require.NoError(t, err)
	require.Equal(t, 0, baseT.Cmp(result.T))
	require.Equal(t, 4, result.Depth)
	require.Equal(t, uint64(0), result.Ops)
}

func TestParallelMergeIsDeterministic(t *testing.T) {
	ctx := newTestContext(t)
	reg := registry.New(ctx)
	ps := NewParallelScope(ctx, reg, nil)

	run := func() *big.Int {
		r, err := ps.Merge(big.NewInt(2), 0, []string{"A", "B", "C"})
		require.NoError(t, err)
		return r.T
	}
	require.Equal(t, 0, run().Cmp(run()))
}

// S4: swarm injection.
func TestSwarmInjection(t *testing.T) {
	ctx := newTestContext(t)
	reg := registry.New(ctx)

	parent := accumulator.New(ctx, reg, nil)
	_, err := parent.Update("parent-step", nil) // d_g = 1 before injection
	require.NoError(t, err)
	before := parent.State()

	swarm := NewSwarmScope("swarm-1", ctx, reg, nil, nil)
	require.NoError(t, swarm.TrackSubTask("s1"))
	require.NoError(t, swarm.TrackSubTask("s2"))

	sealed, err := swarm.SealAndExport()
	require.NoError(t, err)
	require.Equal(t, 2, sealed.Complexity)

	tGPrime, err := InjectSwarm(parent, ctx, sealed)
	require.NoError(t, err)

	after := parent.State()
	require.Equal(t, before.Depth+1, after.Depth)
	require.Equal(t, before.OpCount+2, after.OpCount)

	termIdentity, err := ctx.PowMod(before.T, sealed.SwarmPrime)
	require.NoError(t, err)
	exponent := new(big.Int).Add(sealed.WorkProof, big.NewInt(int64(before.Depth)))
	exponent.Add(exponent, big.NewInt(int64(sealed.Complexity)))
	termPerturbation, err := ctx.PowMod(ctx.G, exponent)
	require.NoError(t, err)
	expected := new(big.Int).Mod(new(big.Int).Mul(termIdentity, termPerturbation), ctx.M)

	require.Equal(t, 0, expected.Cmp(tGPrime))
	require.Equal(t, 0, expected.Cmp(after.T))
}
