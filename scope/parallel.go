// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scope

import (
	"fmt"
	"math/big"

	"github.com/luxfi/log"

	"github.com/luxfi/pathtrace/accumulator"
	"github.com/luxfi/pathtrace/cryptoctx"
	"github.com/luxfi/pathtrace/registry"
)

// ParallelScope merges an ordered list of parallel branch results into a
// single T via a cascaded, positionally-bound fold (spec §4.4). Unlike a
// textbook RSA accumulator's order-independent T^(p0*p1*...*pn-1), this
// deliberately makes the result depend on the order of branchIDs: distinct
// positions bind distinct primes even for identical agent names, and the
// fold is left-to-right rather than a single combined exponent.
type ParallelScope struct {
	ctx *cryptoctx.Context
	reg *registry.PrimeRegistry
	log log.Logger
}

// NewParallelScope creates a ParallelScope sharing ctx and reg with the rest
// of the tracking tree.
func NewParallelScope(ctx *cryptoctx.Context, reg *registry.PrimeRegistry, logger log.Logger) *ParallelScope {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &ParallelScope{ctx: ctx, reg: reg, log: logger}
}

// MergeResult is the output of Merge: the folded T, the depth it lands at
// (baseDepth+1, a single step for any non-empty branch list; an empty list
// leaves T and depth at the base values), and the exact number of modular
// exponentiations performed.
type MergeResult struct {
	T     *big.Int
	Depth int
	Ops   uint64
}

// Merge folds branchIDs, in order, on top of (baseT, baseDepth):
//
//	T_0     = base_t
//	T_(i+1) = (T_i^p_i * G^hash_depth(base_depth+1)) mod M
//
// where p_i is the prime bound to the positional identity "branchIDs[i]#i".
// Reordering branchIDs changes which prime binds to which position, and
// therefore (with overwhelming probability) the final T.
func (p *ParallelScope) Merge(baseT *big.Int, baseDepth int, branchIDs []string) (*MergeResult, error) {
	if len(branchIDs) == 0 {
		return &MergeResult{T: new(big.Int).Set(baseT), Depth: baseDepth, Ops: 0}, nil
	}

	depthHash := p.ctx.HashDepth(baseDepth + 1)
	t := new(big.Int).Set(baseT)
	var ops uint64

	for i, name := range branchIDs {
		if ops+2 > p.ctx.MaxOps {
			return nil, accumulator.ErrOpsLimit
		}
		positional := fmt.Sprintf("%s#%d", name, i)
		prime, err := p.reg.Register(positional)
		if err != nil {
			return nil, err
		}

		pathTerm, err := p.ctx.PowMod(t, prime)
		if err != nil {
			return nil, err
		}
		depthTerm, err := p.ctx.PowMod(p.ctx.G, depthHash)
		if err != nil {
			return nil, err
		}
		t = new(big.Int).Mod(new(big.Int).Mul(pathTerm, depthTerm), p.ctx.M)
		ops += 2
	}

	p.log.Debug("parallel scope merged", "branches", len(branchIDs), "ops", ops)
	return &MergeResult{T: t, Depth: baseDepth + 1, Ops: ops}, nil
}
