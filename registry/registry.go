// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry maintains the deterministic, domain-separated agent_id
// -> prime map described in spec §3/§4.2, behind a global sliding-window
// rate limiter.
package registry

import (
	"sync"

	"github.com/luxfi/log"
	"math/big"

	"github.com/luxfi/pathtrace/cryptoctx"
	"github.com/luxfi/pathtrace/metrics"
)

// PrimeRegistry is a deterministic, append-only agent_id -> prime map.
// Eviction is never performed (spec §3: "would break replay"). Safe for
// concurrent use.
type PrimeRegistry struct {
	ctx *cryptoctx.Context

	mu      sync.RWMutex
	cache   map[string]*big.Int
	reverse map[string]string // prime.String() -> agent_id

	limiter *slidingWindowLimiter
	log     log.Logger
	metrics *metrics.Recorder
}

// Option configures a PrimeRegistry at construction.
type Option func(*PrimeRegistry)

// WithLogger overrides the default no-op logger.
func WithLogger(l log.Logger) Option {
	return func(r *PrimeRegistry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics overrides the default no-op metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *PrimeRegistry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// New returns an empty PrimeRegistry bound to ctx.
func New(ctx *cryptoctx.Context, opts ...Option) *PrimeRegistry {
	r := &PrimeRegistry{
		ctx:     ctx,
		cache:   make(map[string]*big.Int),
		reverse: make(map[string]string),
		limiter: newSlidingWindowLimiter(DefaultWindow, MaxRequestsPerWindow),
		log:     log.NewNoOpLogger(),
		metrics: metrics.Noop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register returns the prime bound to id, deriving and caching it on first
// use. It is the sole mutating entry point; GetPrime is its alias (spec
// §4.2: "get_prime(id) is an alias of register_agent(id)").
func (r *PrimeRegistry) Register(id string) (*big.Int, error) {
	r.mu.RLock()
	if p, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return p, nil
	}
	r.mu.RUnlock()

	if !r.limiter.allow() {
		r.metrics.IncRateLimited()
		r.log.Warn("prime registration rate limited", "agent_id", id)
		return nil, ErrRateLimited
	}

	p, err := r.ctx.HashToPrime(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another writer may have won the race between the RUnlock above and
	// this Lock; the cache is append-only and deterministic, so reusing the
	// existing entry is always correct.
	if existing, ok := r.cache[id]; ok {
		return existing, nil
	}
	r.cache[id] = p
	r.reverse[p.String()] = id
	r.log.Debug("registered agent prime", "agent_id", id)
	return p, nil
}

// GetPrime is an alias of Register (spec §4.2).
func (r *PrimeRegistry) GetPrime(id string) (*big.Int, error) {
	return r.Register(id)
}

// Lookup returns the prime already bound to id without registering a new
// one and without consuming rate-limit budget. Verifiers (package seal) use
// this so a replayed witness list cannot silently mint new identities —
// only ids some producer has genuinely registered can verify (this
// resolves spec §9's own internal tension between PrimeRegistry.get_prime
// being lazy and TraceInspector needing to fail UnknownAgent).
func (r *PrimeRegistry) Lookup(id string) (*big.Int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.cache[id]
	return p, ok
}

// AgentFor returns the agent_id bound to prime, if any (supplemented from
// the original source's reverse_registry; see SPEC_FULL.md §3).
func (r *PrimeRegistry) AgentFor(prime *big.Int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.reverse[prime.String()]
	return id, ok
}

// Len returns the number of distinct agent ids registered so far.
func (r *PrimeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
