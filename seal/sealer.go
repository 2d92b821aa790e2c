// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package seal

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/luxfi/log"

	"github.com/luxfi/pathtrace/internal/canon"
	"github.com/luxfi/pathtrace/metrics"
)

// Sealer produces and verifies the integrity_seal half of an Envelope
// (spec §4.5 "Seal" and Phase 1 of "Verify"). It holds no trace state of its
// own; all inputs come from the caller's AgentState / Envelope.
type Sealer struct {
	log     log.Logger
	metrics *metrics.Recorder
}

// Option configures a Sealer at construction.
type Option func(*Sealer)

// WithLogger overrides the default no-op logger.
func WithLogger(l log.Logger) Option {
	return func(s *Sealer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics overrides the default no-op metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Sealer) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewSealer returns a Sealer.
func NewSealer(opts ...Option) *Sealer {
	s := &Sealer{
		log:     log.NewNoOpLogger(),
		metrics: metrics.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seal commits state and extraMetrics into a sealed Envelope (spec §4.5).
func (s *Sealer) Seal(state AgentState, extraMetrics map[string]any) (*Envelope, error) {
	anchor, err := buildAnchor(state.Meta.TraceT.String(), state.Payload, extraMetrics, state.Nonce, state.Timestamp, state.Meta.TotalOpCount)
	if err != nil {
		return nil, fmt.Errorf("seal: building anchor: %w", err)
	}

	return &Envelope{
		Version: Version,
		Header: Header{
			TraceT:        state.Meta.TraceT.String(),
			IntegritySeal: sha256Hex(anchor),
			Nonce:         state.Nonce,
			Timestamp:     state.Timestamp,
			Ops:           state.Meta.TotalOpCount,
		},
		Body: Body{
			Payload: state.Payload,
			Metrics: extraMetrics,
		},
	}, nil
}

// Verify recomputes the envelope's integrity_seal from its own header and
// body and compares it in constant time against the stored value (spec
// §4.5 Phase 1). It does not replay the witness path; see Inspector for
// that.
func (s *Sealer) Verify(env *Envelope) (bool, error) {
	anchor, err := buildAnchor(env.Header.TraceT, env.Body.Payload, env.Body.Metrics, env.Header.Nonce, env.Header.Timestamp, env.Header.Ops)
	if err != nil {
		return false, fmt.Errorf("seal: building anchor: %w", err)
	}

	recomputed := sha256Hex(anchor)
	if subtle.ConstantTimeCompare([]byte(recomputed), []byte(env.Header.IntegritySeal)) != 1 {
		s.metrics.IncVerifyFailure()
		s.log.Warn("envelope seal mismatch")
		return false, ErrSealMismatch
	}
	return true, nil
}

// buildAnchor renders the spec §6 anchor string:
//
//	"<trace_t>|<sha256hex(payload_canonical)>|<metrics_json_or_{}>|<nonce>|<timestamp>|<ops>"
func buildAnchor(traceT string, payload any, extraMetrics map[string]any, nonce string, timestamp float64, ops uint64) (string, error) {
	payloadCanonical, err := canon.Payload(payload)
	if err != nil {
		return "", err
	}
	payloadHash := sha256Hex(payloadCanonical)

	var metricsAny any
	if extraMetrics != nil {
		metricsAny = extraMetrics
	}
	metricsJSON, err := canon.JSON(metricsAny)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		traceT, payloadHash, metricsJSON, nonce, canon.FormatTimestamp(timestamp), ops), nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
