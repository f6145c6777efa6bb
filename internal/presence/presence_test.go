package presence

import (
	"testing"
	"time"

	"tkeyfido/internal/hardware"
)

func TestWaitTouchedReturnsTrueOnTouch(t *testing.T) {
	timer := hardware.NewSimulatedTouchTimer()
	g := NewWithTimings(timer, 200*time.Millisecond, 10*time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		timer.Touch()
	}()

	if !g.WaitTouched(hardware.LEDBlue) {
		t.Fatal("expected touch to be observed before timeout")
	}
	if timer.TouchLatched() {
		t.Fatal("touch event should have been cleared after being observed")
	}
	if timer.CurrentLED() != hardware.LEDBlack {
		t.Fatalf("LED should be off after WaitTouched returns, got %v", timer.CurrentLED())
	}
}

func TestWaitTouchedTimesOut(t *testing.T) {
	timer := hardware.NewSimulatedTouchTimer()
	g := NewWithTimings(timer, 30*time.Millisecond, 10*time.Millisecond)

	if g.WaitTouched(hardware.LEDGreen) {
		t.Fatal("expected timeout, got touch")
	}
	if timer.CurrentLED() != hardware.LEDBlack {
		t.Fatalf("LED should be off after timeout, got %v", timer.CurrentLED())
	}
}

func TestStrayTouchBeforeArmingIsIgnored(t *testing.T) {
	timer := hardware.NewSimulatedTouchTimer()
	timer.Touch() // latch a touch before the gate is ever armed

	g := NewWithTimings(timer, 30*time.Millisecond, 10*time.Millisecond)
	if g.WaitTouched(hardware.LEDGreen) {
		t.Fatal("a touch latched before arming must not satisfy the wait")
	}
}

func TestBlinkTogglesLED(t *testing.T) {
	timer := hardware.NewSimulatedTouchTimer()
	g := NewWithTimings(timer, 60*time.Millisecond, 10*time.Millisecond)

	g.WaitTouched(hardware.LEDRed)

	history := timer.LEDHistory()
	sawColor := false
	for _, c := range history {
		if c == hardware.LEDRed {
			sawColor = true
			break
		}
	}
	if !sawColor {
		t.Fatal("expected the requested color to appear in the LED history while blinking")
	}
}
