// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exposes the Prometheus counters shared by accumulator,
// registry, and seal: op-count, fold, rate-limit, and verification-failure
// totals. The shape follows the teacher's utils/metrics Averager —
// constructors take a prometheus.Registerer and fold registration errors
// into one returned error via wrappers.Errs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/pathtrace/internal/wrappers"
)

// Recorder records the counters this module exposes. Every method is a no-op
// on a nil *Recorder; Noop() returns a Recorder that counts in memory but is
// registered with nobody.
type Recorder struct {
	ops            prometheus.Counter
	folds          prometheus.Counter
	rateLimited    prometheus.Counter
	verifyFailures prometheus.Counter
}

// New creates a Recorder and registers its collectors against reg. A nil
// reg is treated the same as Noop(): the counters exist and increment, but
// nothing scrapes them.
func New(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		ops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "modexp_ops_total",
			Help:      "Total modular exponentiations performed.",
		}),
		folds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "folds_total",
			Help:      "Total snapshot folds performed.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total prime-registration requests rejected by the rate limiter.",
		}),
		verifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verify_failures_total",
			Help:      "Total failed envelope or path verifications.",
		}),
	}
	if reg == nil {
		return r, nil
	}

	var errs wrappers.Errs
	errs.Add(reg.Register(r.ops))
	errs.Add(reg.Register(r.folds))
	errs.Add(reg.Register(r.rateLimited))
	errs.Add(reg.Register(r.verifyFailures))
	if errs.Errored() {
		return nil, errs.Err()
	}
	return r, nil
}

// Noop returns a Recorder registered with no registry; its counters still
// increment, harmlessly, which keeps call sites unconditional.
func Noop() *Recorder {
	r, _ := New("", nil)
	return r
}

// IncOps adds n to the modular-exponentiation counter.
func (r *Recorder) IncOps(n uint64) {
	if r == nil {
		return
	}
	r.ops.Add(float64(n))
}

// IncFold increments the fold counter.
func (r *Recorder) IncFold() {
	if r == nil {
		return
	}
	r.folds.Inc()
}

// IncRateLimited increments the rate-limit rejection counter.
func (r *Recorder) IncRateLimited() {
	if r == nil {
		return
	}
	r.rateLimited.Inc()
}

// IncVerifyFailure increments the verification-failure counter.
func (r *Recorder) IncVerifyFailure() {
	if r == nil {
		return
	}
	r.verifyFailures.Inc()
}
