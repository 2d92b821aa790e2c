// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scope implements the two nested-tracking primitives of spec §4.4:
// SwarmScope, a hierarchical sub-accumulator whose result is injected into a
// parent, and ParallelScope, a positionally-bound fan-out merge that
// deliberately breaks the commutativity an RSA accumulator would otherwise
// have.
package scope

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/luxfi/log"

	"github.com/luxfi/pathtrace/accumulator"
	"github.com/luxfi/pathtrace/cryptoctx"
	"github.com/luxfi/pathtrace/registry"
	"github.com/luxfi/pathtrace/snapshot"
)

// SwarmScope owns its own Accumulator, seeded at T=2, depth=0, under the
// parent's domain, and tracks a sub-swarm's steps independently until it is
// sealed and injected into a parent.
type SwarmScope struct {
	name string
	reg  *registry.PrimeRegistry
	acc  *accumulator.Accumulator
	log  log.Logger
}

// NewSwarmScope creates a SwarmScope named name, sharing ctx, reg, and sink
// with the rest of the tracking tree.
func NewSwarmScope(name string, ctx *cryptoctx.Context, reg *registry.PrimeRegistry, sink snapshot.Sink, logger log.Logger) *SwarmScope {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &SwarmScope{
		name: name,
		reg:  reg,
		acc:  accumulator.New(ctx, reg, sink, accumulator.WithLogger(logger)),
		log:  logger,
	}
}

// TrackSubTask delegates one sub-agent step to the swarm's own accumulator.
func (s *SwarmScope) TrackSubTask(subAgentName string) error {
	_, err := s.acc.Update(subAgentName, nil)
	return err
}

// SealedSwarm is the exported result of SwarmScope.SealAndExport, ready to
// be folded into a parent accumulator by InjectSwarm.
type SealedSwarm struct {
	SwarmPrime *big.Int
	WorkProof  *big.Int
	Complexity int
	Ops        uint64
}

// SealAndExport returns the swarm's public proof: its registered prime, a
// work-proof commitment over (name, local T, local depth), its complexity
// (local depth), and its total op cost (spec §4.4).
func (s *SwarmScope) SealAndExport() (*SealedSwarm, error) {
	swarmPrime, err := s.reg.Register(s.name)
	if err != nil {
		return nil, err
	}
	st := s.acc.State()

	payload := fmt.Sprintf("%s:%s:%d", s.name, st.T.String(), st.Depth)
	sum := sha256.Sum256([]byte(payload))
	workProof := new(big.Int).SetBytes(sum[:])

	s.log.Debug("swarm sealed", "swarm", s.name, "depth", st.Depth, "ops", st.OpCount)
	return &SealedSwarm{
		SwarmPrime: swarmPrime,
		WorkProof:  workProof,
		Complexity: st.Depth,
		Ops:        st.OpCount,
	}, nil
}

// InjectSwarm folds a sealed swarm result into a parent accumulator (spec
// §4.4):
//
//	term_identity     = T_g^swarm_prime              mod M
//	term_perturbation = G^(work_proof + d_g + complexity) mod M
//	T_g'              = term_identity * term_perturbation mod M
//	d_g'              = d_g + 1
//
// The parent's op_count increments by 2. The transition is applied through
// Accumulator.ApplyExternalTransition, which commits it atomically.
func InjectSwarm(parent *accumulator.Accumulator, ctx *cryptoctx.Context, sealed *SealedSwarm) (*big.Int, error) {
	parentState := parent.State()

	termIdentity, err := ctx.PowMod(parentState.T, sealed.SwarmPrime)
	if err != nil {
		return nil, err
	}

	exponent := new(big.Int).Add(sealed.WorkProof, big.NewInt(int64(parentState.Depth)))
	exponent.Add(exponent, big.NewInt(int64(sealed.Complexity)))
	termPerturbation, err := ctx.PowMod(ctx.G, exponent)
	if err != nil {
		return nil, err
	}

	tNext := new(big.Int).Mod(new(big.Int).Mul(termIdentity, termPerturbation), ctx.M)
	if err := parent.ApplyExternalTransition(tNext, 2, "swarm-injection"); err != nil {
		return nil, err
	}
	return tNext, nil
}
