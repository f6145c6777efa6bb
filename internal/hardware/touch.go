package hardware

import (
	"sync"
	"time"
)

// LEDColor is a bitmask over the device's RGB LED, mirroring the
// TK1_MMIO_TK1_LED bit layout: red, green and blue bits can be combined
// (e.g. red|green renders as yellow).
type LEDColor uint8

// LED bit values, matching the original firmware's LED_* constants.
const (
	LEDBlack LEDColor = 0
	LEDRed   LEDColor = 1 << 0
	LEDGreen LEDColor = 1 << 1
	LEDBlue  LEDColor = 1 << 2
)

// LEDYellow is the dispatcher's "ready for a command" color (red|green).
const LEDYellow = LEDRed | LEDGreen

// TouchTimer is the MMIO collaborator behind the touch gate (C4): a
// countdown timer, a latched touch-event bit, and the RGB LED. It
// abstracts the four registers the original firmware bit-bangs directly
// (timer, timer_prescaler, timer_status/ctrl, touch, led).
type TouchTimer interface {
	// ArmTimeout stops any running timer, clears any latched touch event,
	// then starts a fresh countdown of d. This must leave no window in
	// which a touch latched before arming could be observed afterward.
	ArmTimeout(d time.Duration)

	// Running reports whether the countdown timer has not yet elapsed.
	Running() bool

	// TouchLatched reports whether a touch event is currently latched.
	TouchLatched() bool

	// ClearTouch acknowledges and clears the latched touch event.
	ClearTouch()

	// SetLED drives the RGB LED to the given color.
	SetLED(c LEDColor)
}

// SimulatedTouchTimer is the software backend used by tests, the harness,
// and the simulator binary. A real device wires timer/touch/LED MMIO
// registers instead.
type SimulatedTouchTimer struct {
	mu       sync.Mutex
	deadline time.Time
	running  bool
	touched  bool
	led      LEDColor
	ledLog   []LEDColor
}

// NewSimulatedTouchTimer returns a touch/timer/LED simulator with no timer
// armed and no touch latched.
func NewSimulatedTouchTimer() *SimulatedTouchTimer {
	return &SimulatedTouchTimer{}
}

// ArmTimeout implements TouchTimer.
func (s *SimulatedTouchTimer) ArmTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = false
	s.deadline = time.Now().Add(d)
	s.running = true
}

// Running implements TouchTimer.
func (s *SimulatedTouchTimer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	if time.Now().After(s.deadline) {
		s.running = false
		return false
	}
	return true
}

// TouchLatched implements TouchTimer.
func (s *SimulatedTouchTimer) TouchLatched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// ClearTouch implements TouchTimer.
func (s *SimulatedTouchTimer) ClearTouch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = false
}

// SetLED implements TouchTimer.
func (s *SimulatedTouchTimer) SetLED(c LEDColor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.led = c
	s.ledLog = append(s.ledLog, c)
}

// Touch simulates a physical touch event, latching it until cleared.
// Used by tests and the harness to drive scenarios; a touch that arrives
// before ArmTimeout is called is exactly the "stray touch" the gate is
// required to ignore.
func (s *SimulatedTouchTimer) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = true
}

// CurrentLED returns the last color written to the LED.
func (s *SimulatedTouchTimer) CurrentLED() LEDColor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.led
}

// LEDHistory returns every color written to the LED since creation, for
// tests asserting on blink behavior (e.g. that green was never driven
// during a short-circuited authenticate).
func (s *SimulatedTouchTimer) LEDHistory() []LEDColor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LEDColor, len(s.ledLog))
	copy(out, s.ledLog)
	return out
}
