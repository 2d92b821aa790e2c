// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package seal produces and verifies the tamper-evident envelope described
// in spec §4.5/§6: a Sealer commits a trace's current T, a hashed payload,
// canonical metrics, a nonce, a timestamp, and an op count into a single
// SHA256 anchor; an Inspector separately replays a witness list to
// reconstruct T and check it against a target.
package seal

import "math/big"

// Version is the envelope format version spec §6 fixes.
const Version = "v4.0-hardened"

// Header is the envelope header (spec §6).
type Header struct {
	TraceT        string  `json:"trace_t"`
	IntegritySeal string  `json:"integrity_seal"`
	Nonce         string  `json:"nonce"`
	Timestamp     float64 `json:"timestamp"`
	Ops           uint64  `json:"ops"`
}

// Body is the envelope body (spec §6).
type Body struct {
	Payload any            `json:"payload"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

// Envelope is the full sealed unit (spec §6).
type Envelope struct {
	Version string `json:"version"`
	Header  Header `json:"header"`
	Body    Body   `json:"body"`
}

// Meta mirrors the AgentState.meta fields spec §4.5 commits into a seal.
type Meta struct {
	TraceT       *big.Int
	Depth        int
	SegmentID    uint64
	PathLog      []string
	TotalOpCount uint64
}

// AgentState is the sealing input spec §4.5 describes: a task_id, an opaque
// payload, the meta fields above, a nonce, and a timestamp.
type AgentState struct {
	TaskID    string
	Payload   any
	Meta      Meta
	Nonce     string
	Timestamp float64
}
