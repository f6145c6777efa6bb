// Package hardware defines the memory-mapped collaborator interfaces the
// U2F core depends on: the device secret (CDI) provider, the true-RNG
// entropy source, and the touch/timer/LED sensor block. Each interface has
// one software-simulated backend here, used by tests, the in-process
// harness, and the simulator binary; this module contains no MMIO-backed
// implementation. Small interfaces and no global state.
// Callers construct and own their collaborators.
package hardware

import "errors"

// ErrEntropyUnavailable is returned when a TRNG read cannot currently be
// serviced. On real hardware this should never happen; Word blocks until
// the TRNG status register reports ready, matching the original's
// get_w32_entropy busy-wait.
var ErrEntropyUnavailable = errors.New("hardware: entropy source unavailable")

// CDISize is the length in bytes of the Compound Device Identity.
const CDISize = 32
