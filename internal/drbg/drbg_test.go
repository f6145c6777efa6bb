package drbg

import (
	"bytes"
	"testing"

	"tkeyfido/internal/hardware"
)

func newTestDRBG(t *testing.T) *DRBG {
	t.Helper()
	var cdi [hardware.CDISize]byte
	for i := range cdi {
		cdi[i] = byte(i)
	}
	d, err := New(cdi, hardware.NewSoftwareTRNG())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestGenerateZeroLengthIsNoop(t *testing.T) {
	d := newTestDRBG(t)
	if err := d.Generate(nil); err != nil {
		t.Fatalf("Generate(nil): %v", err)
	}
}

func TestGenerateRejectsNonMultipleOf16(t *testing.T) {
	d := newTestDRBG(t)
	out := make([]byte, 17)
	if err := d.Generate(out); err != ErrBadLength {
		t.Fatalf("Generate(17 bytes): got %v, want ErrBadLength", err)
	}
}

func TestGenerateIsStatefulNotRepeating(t *testing.T) {
	d := newTestDRBG(t)

	a := make([]byte, 16)
	b := make([]byte, 16)
	if err := d.Generate(a); err != nil {
		t.Fatalf("Generate a: %v", err)
	}
	if err := d.Generate(b); err != nil {
		t.Fatalf("Generate b: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two consecutive 16-byte draws were identical: %x", a)
	}
}

func TestTwoFreshDRBGsWithSameCDIDiverge(t *testing.T) {
	// Two devices that share a CDI (e.g. same app loaded twice) still
	// produce different streams, because the TRNG half of the seed
	// differs. This guards against a degenerate implementation that
	// ignores the TRNG entirely.
	var cdi [hardware.CDISize]byte
	d1, err := New(cdi, hardware.NewSoftwareTRNG())
	if err != nil {
		t.Fatalf("New d1: %v", err)
	}
	d2, err := New(cdi, hardware.NewSoftwareTRNG())
	if err != nil {
		t.Fatalf("New d2: %v", err)
	}

	out1 := make([]byte, 32)
	out2 := make([]byte, 32)
	if err := d1.Generate(out1); err != nil {
		t.Fatalf("Generate d1: %v", err)
	}
	if err := d2.Generate(out2); err != nil {
		t.Fatalf("Generate d2: %v", err)
	}
	if bytes.Equal(out1, out2) {
		t.Fatalf("two independently-seeded DRBGs produced identical output")
	}
}

func TestReseedAtBoundaryDoesNotError(t *testing.T) {
	d := newTestDRBG(t)
	// Drive the counter across the reseed boundary; each TRNG reseed
	// must succeed (the software TRNG never fails) and generation must
	// keep producing output of the requested length.
	out := make([]byte, 16)
	for i := 0; i < ReseedTime+2; i++ {
		if err := d.Generate(out); err != nil {
			t.Fatalf("Generate iteration %d: %v", i, err)
		}
	}
	if d.ctr >= ReseedTime {
		t.Fatalf("counter did not reset across reseed boundary: ctr=%d", d.ctr)
	}
}

func TestWipeZeroesState(t *testing.T) {
	d := newTestDRBG(t)
	d.Wipe()
	for i, w := range d.words {
		if w != 0 {
			t.Fatalf("word %d not wiped: %#x", i, w)
		}
	}
	if d.ctr != 0 {
		t.Fatalf("counter not wiped: %d", d.ctr)
	}
}
