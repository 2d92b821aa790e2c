// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import "errors"

// ErrRateLimited is returned when a request for a new prime would exceed
// MaxRequestsPerWindow distinct registrations within the sliding window.
var ErrRateLimited = errors.New("registry: exceeded new-prime rate limit")
