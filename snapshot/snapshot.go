// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snapshot defines the wire format of a folded accumulator segment
// (spec §3/§6) and the external-sink contract an Accumulator emits blocks
// to. Persisting those blocks is explicitly out of this core's scope (spec
// §1); this package only defines the contract a sink must satisfy.
package snapshot

import (
	"context"
	"strings"
)

// GenesisHash is the prev_hash value of the first block in a chain (spec
// §3: "0"×64 — 64 hex characters).
var GenesisHash = strings.Repeat("0", 64)

// Block is the JSON-serializable snapshot block format of spec §6.
type Block struct {
	SegmentID       uint64  `json:"segment_id"`
	FinalT          string  `json:"final_t"`
	DepthAtSnapshot int     `json:"depth_at_snapshot"`
	SnapshotHash    string  `json:"snapshot_hash"`
	PrevHash        string  `json:"prev_hash"`
	Timestamp       float64 `json:"timestamp"`
}

// Sink is the external collaborator a folded Block is emitted to. Spec §5:
// emission is the only potentially blocking step in a fold and MUST be
// performed inside the commit window, so last_snapshot_hash only advances
// once the sink accepts the block.
type Sink interface {
	Emit(ctx context.Context, block Block) error
}
