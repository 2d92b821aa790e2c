// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package seal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// S5: a header timestamp far outside the drift tolerance must be rejected
// before any witness is even replayed.
func TestVerifyPathRejectsTimestampDrift(t *testing.T) {
	_, acc, reg := buildSealedTrace(t, []string{"agent-a", "agent-b"})
	ctx := newTestCtx(t)
	_ = acc

	insp := NewInspector(ctx, reg)
	ok, reason, err := insp.VerifyPath(nil, []string{"agent-a", "agent-b"}, Header{
		Timestamp: 0, // epoch, far outside any real clock's drift window
		Ops:       4,
	})
	require.ErrorIs(t, err, ErrTimestampDrift)
	require.False(t, ok)
	require.Equal(t, "TimestampDrift", reason)
}

func TestVerifyPathRoundTrip(t *testing.T) {
	agentIDs := []string{"agent-a", "agent-b", "agent-c"}
	env, acc, reg := buildSealedTrace(t, agentIDs)
	ctx := newTestCtx(t)
	state := acc.State()

	insp := NewInspector(ctx, reg, withFixedNow(t, time.Unix(int64(env.Header.Timestamp), 0)))
	ok, reason, err := insp.VerifyPath(state.T, agentIDs, env.Header)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Verification Passed", reason)
}

// S9 (ops conservation): a witness list whose replayed op count does not
// match the envelope's claimed ops must fail even if T matches by accident.
func TestVerifyPathRejectsOpsMismatch(t *testing.T) {
	agentIDs := []string{"agent-a", "agent-b"}
	env, acc, reg := buildSealedTrace(t, agentIDs)
	ctx := newTestCtx(t)
	state := acc.State()

	tamperedHeader := env.Header
	tamperedHeader.Ops = env.Header.Ops + 2

	insp := NewInspector(ctx, reg, withFixedNow(t, time.Unix(int64(env.Header.Timestamp), 0)))
	ok, reason, err := insp.VerifyPath(state.T, agentIDs, tamperedHeader)
	require.ErrorIs(t, err, ErrOpsIntegrity)
	require.False(t, ok)
	require.Equal(t, "OpsIntegrity", reason)
}

// An agent id the registry never saw (i.e. no producer ever registered it)
// must fail closed rather than silently minting a new identity mid-replay.
func TestVerifyPathRejectsUnknownAgent(t *testing.T) {
	env, acc, reg := buildSealedTrace(t, []string{"agent-a"})
	ctx := newTestCtx(t)
	state := acc.State()

	insp := NewInspector(ctx, reg, withFixedNow(t, time.Unix(int64(env.Header.Timestamp), 0)))
	ok, reason, err := insp.VerifyPath(state.T, []string{"agent-a", "never-registered"}, env.Header)
	require.ErrorIs(t, err, ErrUnknownAgent)
	require.False(t, ok)
	require.Equal(t, "UnknownAgent", reason)
}

func TestVerifyPathRejectsOverBudget(t *testing.T) {
	agentIDs := []string{"agent-a", "agent-b", "agent-c"}
	env, acc, reg := buildSealedTrace(t, agentIDs)
	ctx := newTestCtx(t)
	state := acc.State()

	insp := NewInspector(ctx, reg,
		withFixedNow(t, time.Unix(int64(env.Header.Timestamp), 0)),
		WithVerifyBudget(2),
	)
	ok, reason, err := insp.VerifyPath(state.T, agentIDs, env.Header)
	require.ErrorIs(t, err, ErrVerificationOverBudget)
	require.False(t, ok)
	require.Equal(t, "VerificationOverBudget", reason)
}

// withFixedNow pins the Inspector's clock to ts for deterministic drift
// checks in tests.
func withFixedNow(t *testing.T, ts time.Time) InspectorOption {
	t.Helper()
	return func(i *Inspector) { i.nowFn = func() time.Time { return ts } }
}
