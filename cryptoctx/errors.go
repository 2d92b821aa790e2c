// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cryptoctx

import "errors"

// Construction-time errors.
var (
	ErrBitLengthTooSmall = errors.New("cryptoctx: bit length must be at least 2048")
	ErrMaxDepthInvalid   = errors.New("cryptoctx: max depth must be positive")
	ErrMaxOpsInvalid     = errors.New("cryptoctx: max ops must be positive")
	ErrDomainEmpty       = errors.New("cryptoctx: domain tag must not be empty")
	ErrGeneratorUnsafe   = errors.New("cryptoctx: generator is not a valid quadratic-residue candidate for this modulus")
	ErrModulusNotOdd     = errors.New("cryptoctx: modulus must be odd")
)

// Per-call errors.
var (
	ErrInputTooLong     = errors.New("cryptoctx: agent id exceeds 256 bytes")
	ErrExponentTooLarge = errors.New("cryptoctx: exponent exceeds 4x modulus bit length")
)

// MaxAgentIDBytes is the hard cap on hash_to_prime input length (spec §4.1).
const MaxAgentIDBytes = 256
