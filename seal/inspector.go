// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package seal

import (
	"math"
	"math/big"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/pathtrace/cryptoctx"
	"github.com/luxfi/pathtrace/metrics"
	"github.com/luxfi/pathtrace/registry"
)

// DefaultMaxClockDrift is the timestamp-drift tolerance (spec §4.5/§5: 300s).
const DefaultMaxClockDrift = 300 * time.Second

// DefaultMaxVerifyOps bounds the work a single verify_path call will do
// (spec §5: verification budget of 5000 modular exponentiations).
const DefaultMaxVerifyOps = 5000

// Inspector replays a witness list against a CryptoContext/PrimeRegistry to
// reconstruct T and checks it against a target (spec §4.5 Phase 2). It
// never mutates the registry: witnesses naming an agent no producer has
// ever registered fail with ErrUnknownAgent rather than silently minting a
// new prime (see registry.PrimeRegistry.Lookup).
type Inspector struct {
	ctx           *cryptoctx.Context
	reg           *registry.PrimeRegistry
	maxClockDrift time.Duration
	maxVerifyOps  uint64
	nowFn         func() time.Time

	log     log.Logger
	metrics *metrics.Recorder
}

// InspectorOption configures an Inspector at construction.
type InspectorOption func(*Inspector)

// WithClockDrift overrides DefaultMaxClockDrift.
func WithClockDrift(d time.Duration) InspectorOption {
	return func(i *Inspector) { i.maxClockDrift = d }
}

// WithVerifyBudget overrides DefaultMaxVerifyOps.
func WithVerifyBudget(ops uint64) InspectorOption {
	return func(i *Inspector) { i.maxVerifyOps = ops }
}

// WithInspectorLogger overrides the default no-op logger.
func WithInspectorLogger(l log.Logger) InspectorOption {
	return func(i *Inspector) {
		if l != nil {
			i.log = l
		}
	}
}

// WithInspectorMetrics overrides the default no-op metrics recorder.
func WithInspectorMetrics(m *metrics.Recorder) InspectorOption {
	return func(i *Inspector) {
		if m != nil {
			i.metrics = m
		}
	}
}

// NewInspector returns an Inspector bound to ctx and reg.
func NewInspector(ctx *cryptoctx.Context, reg *registry.PrimeRegistry, opts ...InspectorOption) *Inspector {
	i := &Inspector{
		ctx:           ctx,
		reg:           reg,
		maxClockDrift: DefaultMaxClockDrift,
		maxVerifyOps:  DefaultMaxVerifyOps,
		nowFn:         time.Now,
		log:           log.NewNoOpLogger(),
		metrics:       metrics.Noop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// VerifyPath replays witnesses from the canonical start state (T=2, depth=0)
// and checks the result against targetT, enforcing clock drift, the
// verification budget, and exact op-count conservation along the way (spec
// §4.5 Phase 2). A successful verification returns (true, "Verification
// Passed", nil). A failed drift, registry, budget, or op-count check
// short-circuits with a reason string and its corresponding sentinel error;
// a replayed T that differs from targetT returns (false, "Verification
// Failed", nil).
func (i *Inspector) VerifyPath(targetT *big.Int, witnesses []string, header Header) (bool, string, error) {
	if i.maxClockDrift > 0 {
		now := i.nowFn()
		drift := math.Abs(float64(now.Unix()) - header.Timestamp)
		if drift > i.maxClockDrift.Seconds() {
			i.metrics.IncVerifyFailure()
			return false, "TimestampDrift", ErrTimestampDrift
		}
	}

	t := big.NewInt(2)
	depth := 0
	var ops uint64

	for _, agentID := range witnesses {
		prime, ok := i.reg.Lookup(agentID)
		if !ok {
			i.metrics.IncVerifyFailure()
			return false, "UnknownAgent", ErrUnknownAgent
		}

		pathTerm, err := i.ctx.PowMod(t, prime)
		if err != nil {
			return false, "", err
		}
		depthTerm, err := i.ctx.PowMod(i.ctx.G, i.ctx.HashDepth(depth))
		if err != nil {
			return false, "", err
		}
		t = new(big.Int).Mod(new(big.Int).Mul(pathTerm, depthTerm), i.ctx.M)
		depth++
		ops += 2

		if ops > i.maxVerifyOps {
			i.metrics.IncVerifyFailure()
			return false, "VerificationOverBudget", ErrVerificationOverBudget
		}
	}

	if ops != header.Ops {
		i.metrics.IncVerifyFailure()
		return false, "OpsIntegrity", ErrOpsIntegrity
	}

	if t.Cmp(targetT) != 0 {
		i.metrics.IncVerifyFailure()
		return false, "Verification Failed", nil
	}

	i.log.Debug("path verified", "witnesses", len(witnesses), "ops", ops)
	return true, "Verification Passed", nil
}
