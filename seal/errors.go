// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package seal

import "errors"

var (
	// ErrSealMismatch is returned when an envelope's integrity_seal does not
	// match the seal recomputed from its own header and body.
	ErrSealMismatch = errors.New("seal: integrity seal does not match recomputed value")

	// ErrTimestampDrift is returned when an envelope's timestamp is further
	// than the configured clock-drift tolerance from the verifier's clock.
	ErrTimestampDrift = errors.New("seal: envelope timestamp outside allowed clock drift")

	// ErrUnknownAgent is returned when a witness list names an agent id the
	// registry has no prime for.
	ErrUnknownAgent = errors.New("seal: witness list names an unregistered agent")

	// ErrVerificationOverBudget is returned when replaying a witness list
	// would exceed the verifier's modular-exponentiation budget.
	ErrVerificationOverBudget = errors.New("seal: verification exceeded the modular-exponentiation budget")

	// ErrOpsIntegrity is returned when the verifier's replayed op count does
	// not exactly match the envelope's claimed op count.
	ErrOpsIntegrity = errors.New("seal: replayed op count does not match envelope ops")
)
