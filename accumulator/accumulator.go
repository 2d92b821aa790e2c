// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package accumulator implements the core update/fold state machine of
// spec §4.3: a single-writer (T, depth, segment_id, op_count,
// last_snapshot_hash, history) tuple that advances one agent at a time and
// folds into a chained snapshot when it hits the context's depth cap.
package accumulator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/pathtrace/cryptoctx"
	"github.com/luxfi/pathtrace/metrics"
	"github.com/luxfi/pathtrace/registry"
	"github.com/luxfi/pathtrace/snapshot"
)

// initialT is the trace's starting value (spec §3).
var initialT = big.NewInt(2)

// HistoryEntry is one append-only audit record. History is advisory, NOT
// part of the integrity contract (spec §3).
type HistoryEntry struct {
	Depth    int
	AgentID  string
	TAfter   *big.Int
	Folded   bool
	OpCount  uint64
}

// State is a point-in-time snapshot of an Accumulator's observable fields.
type State struct {
	T                *big.Int
	Depth            int
	SegmentID        uint64
	OpCount          uint64
	LastSnapshotHash string
	History          []HistoryEntry
}

// Summary renders the short human-readable form the original source's
// AgentState.summary() produced (supplemented per SPEC_FULL.md §3): purely
// informational, never fed back into any integrity computation.
func (s State) Summary() string {
	tStr := s.T.String()
	if len(tStr) > 10 {
		tStr = tStr[:10]
	}
	return fmt.Sprintf("[State] Depth: %d | Ops: %d | T: %s...", s.Depth, s.OpCount, tStr)
}

// Accumulator is a single-writer, many-reader algebraic state machine. It is
// NOT safe to drive from multiple writers concurrently (spec §5); its own
// mutex only protects readers (State, Summary) racing a single writer.
type Accumulator struct {
	ctx *cryptoctx.Context
	reg *registry.PrimeRegistry
	sink snapshot.Sink

	mu    sync.Mutex
	state State

	log     log.Logger
	metrics *metrics.Recorder
}

// Option configures an Accumulator at construction.
type Option func(*Accumulator)

// WithLogger overrides the default no-op logger.
func WithLogger(l log.Logger) Option {
	return func(a *Accumulator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMetrics overrides the default no-op metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(a *Accumulator) {
		if m != nil {
			a.metrics = m
		}
	}
}

// New returns an Accumulator seeded at T=2, depth=0, segment_id=0,
// op_count=0, last_snapshot_hash=genesis (spec §3). sink may be nil, in
// which case folds never call out (useful for tests that don't care about
// the emitted block).
func New(ctx *cryptoctx.Context, reg *registry.PrimeRegistry, sink snapshot.Sink, opts ...Option) *Accumulator {
	a := &Accumulator{
		ctx: ctx,
		reg: reg,
		sink: sink,
		state: State{
			T:                new(big.Int).Set(initialT),
			Depth:            0,
			SegmentID:        0,
			OpCount:          0,
			LastSnapshotHash: snapshot.GenesisHash,
		},
		log:     log.NewNoOpLogger(),
		metrics: metrics.Noop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns a copy of the current observable state. T is a defensive
// copy; History is a new slice holding copies of the entries (their TAfter
// pointers are shared, since entries are never modified once appended).
func (a *Accumulator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	history := make([]HistoryEntry, len(a.state.History))
	copy(history, a.state.History)
	return State{
		T:                new(big.Int).Set(a.state.T),
		Depth:            a.state.Depth,
		SegmentID:        a.state.SegmentID,
		OpCount:          a.state.OpCount,
		LastSnapshotHash: a.state.LastSnapshotHash,
		History:          history,
	}
}

// Update advances the accumulator by one agent step, folding first if the
// depth cap has been reached, and returns the new T. expectedPrevT, if
// non-nil, asserts the current T before anything is applied (spec §4.3
// replay/rollback guard); a mismatch fails with ErrStaleState and leaves
// the accumulator untouched.
func (a *Accumulator) Update(agentID string, expectedPrevT *big.Int) (*big.Int, error) {
	t, _, _, err := a.updateWithSnapshot(agentID, expectedPrevT)
	return t, err
}

// UpdateWithSnapshot is the general case of Update: it additionally reports
// whether a fold occurred and, if so, the emitted block. Spec §6 describes
// this operation as also taking segment_id/last_snapshot_hash parameters;
// in this single-language rewrite those fields are accumulator-owned state
// rather than FFI-boundary values threaded through every call (spec §9:
// "String-encoded big integers ... only an FFI artifact ... one language
// owns both" — the same reasoning applies to segment_id/last_snapshot_hash).
// expected_prev_t is the one FFI-era assertion retained, since it is a
// genuine caller-supplied contract, not state the accumulator already owns.
func (a *Accumulator) UpdateWithSnapshot(agentID string, expectedPrevT *big.Int) (*big.Int, bool, *snapshot.Block, error) {
	return a.updateWithSnapshot(agentID, expectedPrevT)
}

func (a *Accumulator) updateWithSnapshot(agentID string, expectedPrevT *big.Int) (*big.Int, bool, *snapshot.Block, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if expectedPrevT != nil && expectedPrevT.Cmp(a.state.T) != 0 {
		return nil, false, nil, ErrStaleState
	}
	if a.state.OpCount+2 > a.ctx.MaxOps {
		return nil, false, nil, ErrOpsLimit
	}

	prime, err := a.reg.Register(agentID)
	if err != nil {
		return nil, false, nil, err
	}

	var (
		folded bool
		block  *snapshot.Block
	)
	if a.state.Depth == a.ctx.MaxDepth {
		b, err := a.fold()
		if err != nil {
			return nil, false, nil, err
		}
		folded = true
		block = b
	}

	pathTerm, err := a.ctx.PowMod(a.state.T, prime)
	if err != nil {
		return nil, folded, block, err
	}
	depthTerm, err := a.ctx.PowMod(a.ctx.G, a.ctx.HashDepth(a.state.Depth))
	if err != nil {
		return nil, folded, block, err
	}
	tNext := new(big.Int).Mod(new(big.Int).Mul(pathTerm, depthTerm), a.ctx.M)

	a.state.T = tNext
	a.state.Depth++
	a.state.OpCount += 2
	a.state.History = append(a.state.History, HistoryEntry{
		Depth:   a.state.Depth - 1,
		AgentID: agentID,
		TAfter:  new(big.Int).Set(tNext),
		Folded:  folded,
		OpCount: a.state.OpCount,
	})
	a.metrics.IncOps(2)
	a.log.Debug("accumulator advanced", "agent_id", agentID, "depth", a.state.Depth, "folded", folded)

	return new(big.Int).Set(tNext), folded, block, nil
}

// fold closes the current segment: it snapshots T, builds and (if a sink is
// configured) emits a chained block, then reseeds T/depth/segment_id. It is
// all-or-nothing: if the sink rejects the block, no field of a.state is
// touched (spec §4.3, §5).
func (a *Accumulator) fold() (*snapshot.Block, error) {
	finalT := a.state.T.String()
	sum := sha256.Sum256([]byte(finalT))
	snapshotHash := hex.EncodeToString(sum[:])

	block := snapshot.Block{
		SegmentID:       a.state.SegmentID,
		FinalT:          finalT,
		DepthAtSnapshot: a.state.Depth,
		SnapshotHash:    snapshotHash,
		PrevHash:        a.state.LastSnapshotHash,
		Timestamp:       float64(time.Now().UnixNano()) / 1e9,
	}
	if block.PrevHash != a.state.LastSnapshotHash {
		return nil, ErrChainIntegrity
	}

	if a.sink != nil {
		if err := a.sink.Emit(context.Background(), block); err != nil {
			return nil, fmt.Errorf("accumulator: snapshot sink rejected block: %w", err)
		}
	}

	newSeed := new(big.Int)
	newSeed.SetString(snapshotHash, 16)
	newSeed.Mod(newSeed, a.ctx.M)

	a.state.T = newSeed
	a.state.Depth = 0
	a.state.SegmentID++
	a.state.LastSnapshotHash = snapshotHash
	a.metrics.IncFold()
	a.log.Debug("accumulator folded", "segment_id", block.SegmentID, "snapshot_hash", snapshotHash)

	return &block, nil
}

// ApplyExternalTransition commits a T value computed outside the normal
// update rule — a ParallelScope cascaded merge or a SwarmScope injection —
// as a single indivisible transition, bumping depth by one and op_count by
// opsCost. It is the one mutation path those packages use, keeping the
// single-writer invariant (spec §5) centralized here rather than exposing
// direct field access.
func (a *Accumulator) ApplyExternalTransition(tNext *big.Int, opsCost uint64, historyLabel string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.OpCount+opsCost > a.ctx.MaxOps {
		return ErrOpsLimit
	}

	a.state.T = new(big.Int).Set(tNext)
	a.state.Depth++
	a.state.OpCount += opsCost
	a.state.History = append(a.state.History, HistoryEntry{
		Depth:   a.state.Depth - 1,
		AgentID: historyLabel,
		TAfter:  new(big.Int).Set(tNext),
		OpCount: a.state.OpCount,
	})
	a.metrics.IncOps(opsCost)
	a.log.Debug("accumulator external transition applied", "label", historyLabel, "depth", a.state.Depth)
	return nil
}
