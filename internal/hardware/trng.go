package hardware

import (
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"
)

// EntropySource is the blocking 32-bit true-RNG word reader (C2). Word
// blocks until a fresh entropy word is ready, mirroring the original's
// busy-wait on the TRNG status register.
type EntropySource interface {
	// Word blocks until one 32-bit entropy word is available and returns it.
	Word() (uint32, error)
}

// SoftwareTRNG is the simulated backend used off real hardware. It draws
// words from crypto/rand, which is an adequate stand-in for a hardware
// TRNG in tests and the simulator; real firmware wires a different
// EntropySource that reads the TK1_MMIO_TRNG_ENTROPY register.
type SoftwareTRNG struct {
	wordsRead uint64
}

// NewSoftwareTRNG returns a ready-to-use simulated entropy source.
func NewSoftwareTRNG() *SoftwareTRNG {
	return &SoftwareTRNG{}
}

// Word implements EntropySource.
func (t *SoftwareTRNG) Word() (uint32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, ErrEntropyUnavailable
	}
	atomic.AddUint64(&t.wordsRead, 1)
	return binary.BigEndian.Uint32(buf[:]), nil
}

// WordsRead reports how many words this source has produced, for tests and
// diagnostics.
func (t *SoftwareTRNG) WordsRead() uint64 {
	return atomic.LoadUint64(&t.wordsRead)
}
