// Package drbg implements the device's deterministic random bit generator
// (C3): Blake2s run in counter mode, seeded from the device's Compound
// Device Identity and periodically reseeded from the true-RNG.
//
// This is a from-scratch reimplementation grounded on device-fido/rng.c
// from the original firmware; it does not attempt byte-for-byte wire
// compatibility with that C implementation, since nothing outside this
// process ever observes the DRBG's internal state.
package drbg

import (
	"encoding/binary"
	"errors"
	"runtime"
	"unsafe"

	"golang.org/x/crypto/blake2s"

	"tkeyfido/internal/hardware"
)

// ReseedTime is the number of 16-byte output blocks generated between
// reseeds of state words 8-15 from the TRNG.
const ReseedTime = 1000

// ErrBadLength is returned by Generate when n is not a multiple of 16.
var ErrBadLength = errors.New("drbg: output length must be a multiple of 16")

// StateWords is the number of 32-bit words in the DRBG state (64 bytes).
const StateWords = 16

// DRBG holds the 16-word state and counter, plus the entropy source used
// to (re)seed words 8-15. It is not safe for concurrent use: the
// dispatcher that owns it runs a single event loop.
type DRBG struct {
	words [StateWords]uint32
	ctr   uint32
	trng  hardware.EntropySource
}

// New seeds a DRBG: words 0-7 from the CDI, words 8-15 from eight TRNG
// words, counter at zero.
func New(cdi [hardware.CDISize]byte, trng hardware.EntropySource) (*DRBG, error) {
	d := &DRBG{trng: trng}
	for i := 0; i < 8; i++ {
		d.words[i] = binary.BigEndian.Uint32(cdi[i*4 : i*4+4])
	}
	for i := 8; i < StateWords; i++ {
		w, err := trng.Word()
		if err != nil {
			return nil, err
		}
		d.words[i] = w
	}
	return d, nil
}

// stateBytes packs the current state words into the 64-byte Blake2s input.
func (d *DRBG) stateBytes() [64]byte {
	var b [64]byte
	for i, w := range d.words {
		binary.BigEndian.PutUint32(b[i*4:i*4+4], w)
	}
	return b
}

// Generate fills out with pseudorandom bytes, RESEED_TIME output blocks
// apart reseeding state words 8-15 from the TRNG. n = len(out) must be a
// multiple of 16; n = 0 is a no-op success.
func (d *DRBG) Generate(out []byte) error {
	if len(out) == 0 {
		return nil
	}
	if len(out)%16 != 0 {
		return ErrBadLength
	}

	for off := 0; off < len(out); off += 16 {
		in := d.stateBytes()
		digest := blake2s.Sum256(in[:])
		wipeWords(in[:])

		for i := 0; i < 4; i++ {
			word := binary.BigEndian.Uint32(digest[i*4 : i*4+4])
			binary.BigEndian.PutUint32(out[off+i*4:off+i*4+4], word)
		}

		for i := 0; i < 8; i++ {
			d.words[i] = binary.BigEndian.Uint32(digest[i*4 : i*4+4])
		}
		wipeWords(digest[:])

		d.ctr++
		d.words[15] += d.ctr

		if d.ctr == ReseedTime {
			for i := 8; i < StateWords; i++ {
				w, err := d.trng.Word()
				if err != nil {
					return err
				}
				d.words[i] = w
			}
			d.ctr = 0
		}
	}

	return nil
}

// Wipe zeroes the DRBG state. Called when the owning process believes the
// DRBG will no longer be used (tests, harness teardown); real firmware
// runs the DRBG for process lifetime and never calls this.
func (d *DRBG) Wipe() {
	for i := range d.words {
		d.words[i] = 0
	}
	d.ctr = 0
}

func wipeWords(data []byte) {
	if len(data) == 0 {
		return
	}
	for i := range data {
		ptr := uintptr(unsafe.Pointer(&data[0])) + uintptr(i)
		*(*byte)(unsafe.Pointer(ptr)) = 0
	}
	runtime.KeepAlive(data)
}
