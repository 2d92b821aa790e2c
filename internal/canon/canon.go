// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package canon provides the canonical serialization spec §4.5/§6 require
// for seal anchors: sorted-key JSON for mapping payloads and metrics, the
// raw string form of non-mapping payloads, and a stable timestamp format.
// Hashing the rendered strings is left to the caller (package seal).
package canon

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/exp/maps"
)

// JSON renders v as canonical JSON: a map[string]any is rendered with its
// keys sorted (matching the teacher's utils/set use of x/exp/maps for
// deterministic iteration); nil renders as "{}" (spec §4.5: "missing
// metrics serialise as \"{}\""); anything else falls back to
// encoding/json.Marshal.
func JSON(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	if m, ok := v.(map[string]any); ok {
		return mapJSON(m)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canon: marshal: %w", err)
	}
	return string(b), nil
}

func mapJSON(m map[string]any) (string, error) {
	keys := maps.Keys(m)
	sort.Strings(keys)

	buf := make([]byte, 0, 64)
	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return "", fmt.Errorf("canon: marshal key %q: %w", k, err)
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')

		vb, err := json.Marshal(m[k])
		if err != nil {
			return "", fmt.Errorf("canon: marshal value for key %q: %w", k, err)
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return string(buf), nil
}

// Payload renders v the way spec §6 defines payload_canonical: sorted-key
// JSON if v is a mapping, otherwise its raw string form.
func Payload(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	if m, ok := v.(map[string]any); ok {
		return mapJSON(m)
	}
	return fmt.Sprint(v), nil
}

// FormatTimestamp renders a Unix-seconds float deterministically so the
// same value always serializes identically on both the seal and verify
// sides of an anchor string.
func FormatTimestamp(ts float64) string {
	return strconv.FormatFloat(ts, 'f', -1, 64)
}
