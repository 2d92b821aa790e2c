// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accumulator

import "errors"

var (
	// ErrStaleState is the FFI-boundary replay/rollback guard: the caller's
	// expected_prev_t did not match the accumulator's current T (spec §4.3).
	ErrStaleState = errors.New("accumulator: expected_prev_t does not match current state")

	// ErrOpsLimit is returned when applying an update would push op_count
	// past the context's MaxOps.
	ErrOpsLimit = errors.New("accumulator: update would exceed MAX_OPS")

	// ErrChainIntegrity is returned if a fold's computed prev_hash does not
	// chain to the accumulator's last_snapshot_hash (spec §4.3 step 3).
	ErrChainIntegrity = errors.New("accumulator: snapshot prev_hash does not chain to last_snapshot_hash")
)
