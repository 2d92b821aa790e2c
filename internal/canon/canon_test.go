// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package canon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONSortsMapKeys(t *testing.T) {
	m := map[string]any{"zeta": 1, "alpha": 2, "mid": "x"}
	out, err := JSON(m)
	require.NoError(t, err)
	require.Equal(t, `{"alpha":2,"mid":"x","zeta":1}`, out)
}

func TestJSONNilIsEmptyObject(t *testing.T) {
	out, err := JSON(nil)
	require.NoError(t, err)
	require.Equal(t, "{}", out)
}

func TestPayloadMappingVsScalar(t *testing.T) {
	scalar, err := Payload("hello")
	require.NoError(t, err)
	require.Equal(t, "hello", scalar)

	m, err := Payload(map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	require.Equal(t, `{"a":1,"b":2}`, m)
}

func TestFormatTimestampIsStable(t *testing.T) {
	require.Equal(t, FormatTimestamp(1700000000.5), FormatTimestamp(1700000000.5))
	require.NotEqual(t, FormatTimestamp(1.0), FormatTimestamp(2.0))
}
