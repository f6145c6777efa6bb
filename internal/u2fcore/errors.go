package u2fcore

import "errors"

// Errors surfaced by the core's crypto-bearing operations. Invalid key
// handles and user absence are not modeled as errors: they are ordinary
// results, returned through RegisterResult/AuthResult/bool.
var (
	// ErrCryptoPrimitive wraps a failure from the P-256 keygen or ECDSA
	// sign primitive. The dispatcher surfaces it to the host as
	// STATUS_BAD after the response opcode; no primitive-specific code
	// byte follows, and the rest of the reply frame is zero.
	ErrCryptoPrimitive = errors.New("u2fcore: crypto primitive failure")

	// ErrBadLength names the condition of a host command body whose
	// length doesn't match the expected size. The dispatcher does not
	// return it: it answers such a command with a one-byte STATUS_BAD
	// reply.
	ErrBadLength = errors.New("u2fcore: bad command length")
)
