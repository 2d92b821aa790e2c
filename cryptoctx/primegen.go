// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cryptoctx

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"math/big"
)

// millerRabinRounds is chosen so that ProbablyPrime's false-positive rate is
// at most 4^-millerRabinRounds. Spec §3 requires confidence >= 2^-64; 4^-32 =
// 2^-64 exactly, so 32 rounds is the minimum that satisfies the bound (Go's
// ProbablyPrime additionally runs a Baillie-PSW test before the Miller-Rabin
// rounds, so actual confidence is comfortably higher).
const millerRabinRounds = 32

// hashToPrimeMaxIterations bounds the deterministic nonce search in
// hashToPrime. Primes have a density of roughly 1 in 177 among 256-bit
// integers, so this bound is astronomically unlikely to be hit; it exists
// only so a broken primality test can't spin forever.
const hashToPrimeMaxIterations = 1 << 20

var errPrimeSearchExhausted = errors.New("cryptoctx: hash-to-prime search exceeded iteration bound")

// hashToPrime implements spec §4.1's hash_to_prime: h = SHA256(domain ||
// agentID), then iterate a deterministic nonce h, h+1, h+2, ..., set the
// lowest bit, and return the first probable prime that is >= 256 bits.
func hashToPrime(domain, agentID string) (*big.Int, error) {
	sum := sha256.Sum256([]byte(domain + agentID))
	base := new(big.Int).SetBytes(sum[:])

	candidate := new(big.Int)
	for i := 0; i < hashToPrimeMaxIterations; i++ {
		candidate.Add(base, big.NewInt(int64(i)))
		candidate.SetBit(candidate, 0, 1) // force odd
		if candidate.BitLen() >= 256 && candidate.ProbablyPrime(millerRabinRounds) {
			return new(big.Int).Set(candidate), nil
		}
	}
	return nil, errPrimeSearchExhausted
}

// safeModulus generates M = p*q where p = 2p'+1 and q = 2q'+1 are distinct
// safe primes, each contributing bitLength/2 bits to M, and returns only M.
// p, q, p', and q' never leave this function (trapdoor destruction, spec
// §3).
func safeModulus(bitLength int) (*big.Int, error) {
	factorBits := bitLength / 2

	p, err := genSafePrime(factorBits)
	if err != nil {
		return nil, err
	}
	for {
		q, err := genSafePrime(factorBits)
		if err != nil {
			return nil, err
		}
		if q.Cmp(p) == 0 {
			continue // astronomically unlikely, but M = p^2 would not be a
			// valid strong-RSA modulus
		}
		return new(big.Int).Mul(p, q), nil
	}
}

// genSafePrime returns a prime p = 2p'+1 of approximately bits bits, where
// p' is itself prime.
func genSafePrime(bits int) (*big.Int, error) {
	two := big.NewInt(2)
	one := big.NewInt(1)
	for {
		pPrime, err := rand.Prime(rand.Reader, bits-1)
		if err != nil {
			return nil, err
		}
		p := new(big.Int).Mul(pPrime, two)
		p.Add(p, one)
		if p.ProbablyPrime(millerRabinRounds) {
			return p, nil
		}
	}
}
