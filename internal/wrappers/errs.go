// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wrappers holds small shared helpers with no natural home in a
// single domain package.
package wrappers

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Errs collects zero or more errors encountered while doing a batch of
// independent fallible steps (e.g. registering several Prometheus
// collectors) and folds them into a single error to return to the caller.
type Errs struct {
	mu   sync.RWMutex
	errs []error
}

// Add records err, ignoring nil.
func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

// Errored reports whether any error has been recorded.
func (e *Errs) Errored() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.errs) > 0
}

// Err folds the recorded errors into a single error, or nil if none were
// recorded.
func (e *Errs) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		return errors.New(e.string())
	}
}

func (e *Errs) string() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:", len(e.errs)))
	for _, err := range e.errs {
		sb.WriteString("\n\t* ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}
