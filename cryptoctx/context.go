// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package cryptoctx owns the hidden-order group in which a Trace lives: the
// strong-RSA modulus M, the fixed generator G, and the three pure modular
// primitives (pow_mod, hash_depth, hash_to_prime) that every other package in
// this module builds on. It is the sole place that touches math/big for
// arithmetic in the group.
package cryptoctx

import (
	"crypto/sha256"
	"fmt"
	"math/big"
)

// DefaultBitLength is the modulus size spec §3 calls out as the default.
const DefaultBitLength = 2048

// DefaultMaxDepth is the per-segment depth cap before a fold is forced.
const DefaultMaxDepth = 10

// DefaultMaxOps is the DoS circuit breaker on modular exponentiations per
// accumulator lifetime.
const DefaultMaxOps = 1_000_000

// generatorValue is G = 4 = 2^2, a quadratic residue in the group of units
// mod a strong-RSA modulus (spec §3, normative per spec §9 item 4 over the
// original source's G = 3).
var generatorValue = big.NewInt(4)

// Params configures a Context. Zero-value fields fall back to the package
// defaults in DefaultParams, mirroring config.DefaultParams/MainnetParams in
// the teacher's config package.
type Params struct {
	// BitLength is the modulus size in bits. Zero uses DefaultBitLength.
	BitLength int
	// MaxDepth is the per-segment depth cap. Zero uses DefaultMaxDepth.
	MaxDepth int
	// MaxOps is the lifetime modular-exponentiation budget. Zero uses
	// DefaultMaxOps.
	MaxOps uint64
	// Domain is the application-instance tag used to prevent cross-
	// application hash-to-prime collisions. Required.
	Domain string
	// FixedModulus, when non-nil, skips strong-RSA modulus generation and
	// uses this value instead. Intended for deterministic test contexts
	// (spec §8: "tests fix a deterministic context by seeding M to a known
	// 2048-bit strong-RSA modulus in test mode"). Production callers MUST
	// leave this nil so a fresh modulus is generated and its factors
	// destroyed.
	FixedModulus *big.Int
}

// DefaultParams returns Params populated with the package defaults, except
// Domain which callers must always set explicitly (it is the one field with
// no safe default — reusing a domain tag across unrelated applications
// defeats domain separation).
func DefaultParams(domain string) Params {
	return Params{
		BitLength: DefaultBitLength,
		MaxDepth:  DefaultMaxDepth,
		MaxOps:    DefaultMaxOps,
		Domain:    domain,
	}
}

// Context is the immutable, per-application cryptographic context described
// in spec §3/§4.1. Once constructed it exposes no way to recover the prime
// factors of M: New discards them before returning.
type Context struct {
	M        *big.Int
	G        *big.Int
	MaxDepth int
	Domain   string
	MaxOps   uint64
}

// New generates a fresh strong-RSA modulus (unless params.FixedModulus is
// set), verifies the chosen generator is safe to use against it, and
// returns an immutable Context. The prime factors used during generation are
// local to safeModulus and never escape this call.
func New(params Params) (*Context, error) {
	bitLength := params.BitLength
	if bitLength == 0 {
		bitLength = DefaultBitLength
	}
	if bitLength < DefaultBitLength {
		return nil, ErrBitLengthTooSmall
	}
	maxDepth := params.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxDepth < 0 {
		return nil, ErrMaxDepthInvalid
	}
	maxOps := params.MaxOps
	if maxOps == 0 {
		maxOps = DefaultMaxOps
	}
	if params.Domain == "" {
		return nil, ErrDomainEmpty
	}

	m := params.FixedModulus
	if m == nil {
		var err error
		m, err = safeModulus(bitLength)
		if err != nil {
			return nil, fmt.Errorf("cryptoctx: generating safe modulus: %w", err)
		}
	}
	if m.Bit(0) == 0 {
		return nil, ErrModulusNotOdd
	}

	g := new(big.Int).Set(generatorValue)
	if err := verifyGenerator(g, m); err != nil {
		return nil, err
	}

	return &Context{
		M:        m,
		G:        g,
		MaxDepth: maxDepth,
		Domain:   params.Domain,
		MaxOps:   maxOps,
	}, nil
}

// verifyGenerator checks the spec §9 item 3 precondition: G must be a
// nontrivial quadratic residue candidate coprime to M. With the prime
// factors of M already destroyed, the only checks available post-
// construction are that gcd(G, M) == 1 and that G is itself a perfect
// square (G = 4 = 2^2 always is; this guards against a future change of
// generatorValue to something that is not).
func verifyGenerator(g, m *big.Int) error {
	gcd := new(big.Int).GCD(nil, nil, g, m)
	if gcd.Cmp(big.NewInt(1)) != 0 {
		return ErrGeneratorUnsafe
	}
	sqrt := new(big.Int).Sqrt(g)
	if new(big.Int).Mul(sqrt, sqrt).Cmp(g) != 0 {
		return ErrGeneratorUnsafe
	}
	return nil
}

// PowMod is the ONLY path for modular arithmetic in the core (spec §4.1).
// It rejects exponents more than 4x the modulus bit length to thwart
// exponent-blowup attacks — a caller that needs a larger exponent is
// either misusing the API or under attack.
func (c *Context) PowMod(base, exp *big.Int) (*big.Int, error) {
	if exp.BitLen() > 4*c.M.BitLen() {
		return nil, ErrExponentTooLarge
	}
	b := new(big.Int).Mod(base, c.M)
	return new(big.Int).Exp(b, exp, c.M), nil
}

// HashDepth computes SHA256(decimal(depth)) as a big integer, used to
// destroy low-bit structure in the depth-term exponent (spec §4.1, and the
// normative reading of spec §9 item 4 over the original's bare d+1).
func (c *Context) HashDepth(depth int) *big.Int {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d", depth)))
	return new(big.Int).SetBytes(sum[:])
}

// HashToPrime derives a deterministic probable prime from agentID, bound to
// this Context's Domain so the same agentID produces different primes under
// different Domains (spec §3 domain isolation). Pure and memoisable: callers
// that need memoisation own the cache (see package registry).
func (c *Context) HashToPrime(agentID string) (*big.Int, error) {
	if len(agentID) > MaxAgentIDBytes {
		return nil, ErrInputTooLong
	}
	return hashToPrime(c.Domain, agentID)
}
