package scenario

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"time"

	"tkeyfido/internal/drbg"
	"tkeyfido/internal/frame"
	"tkeyfido/internal/hardware"
	"tkeyfido/internal/presence"
	"tkeyfido/internal/u2fcore"
)

// Result is what a scenario produced, for the runner's caller to assert
// against.
type Result struct {
	Response frame.Frame
}

// Outcome reports whether a Document's expectations held.
type Outcome struct {
	Document *Document
	Result   Result
	Failures []string
}

// Passed reports whether the scenario's response matched every
// expectation.
func (o Outcome) Passed() bool { return len(o.Failures) == 0 }

// touchTimeout and touchBlink are deliberately short so scenarios that
// rely on no-touch timeouts don't make the test suite slow.
const (
	touchTimeout = 50 * time.Millisecond
	touchBlink   = 2 * time.Millisecond
	touchDelay   = 5 * time.Millisecond
)

// Run executes doc against a freshly constructed device core, with the
// same wiring the firmware simulator uses in production (a CDI-derived
// DRBG and a touch/timer gate), substituting short touch timings so the
// transcript runs quickly.
func Run(doc *Document) (*Result, error) {
	req, err := decodeRequest(doc.Request)
	if err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}

	var secret [32]byte
	for i := range secret {
		secret[i] = byte(i + 1)
	}
	rng, err := drbg.New(secret, hardware.NewSoftwareTRNG())
	if err != nil {
		return nil, fmt.Errorf("init drbg: %w", err)
	}
	timer := hardware.NewSimulatedTouchTimer()
	gate := presence.NewWithTimings(timer, touchTimeout, touchBlink)
	core := u2fcore.New(secret, rng, gate)
	d := u2fcore.NewDispatcher(core, timer, nil)

	if doc.Request.Touch {
		go func() {
			time.Sleep(touchDelay)
			timer.Touch()
		}()
	}

	var out bytes.Buffer
	if err := d.HandleFrame(&out, req); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	rsp, err := frame.ReadFrame(&out)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Result{Response: rsp}, nil
}

// Evaluate runs doc and checks its response against doc.Expect, returning
// a populated Outcome regardless of whether the expectations held; it
// only errors when the scenario itself couldn't be executed.
func Evaluate(doc *Document) (*Outcome, error) {
	result, err := Run(doc)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Document: doc, Result: *result}
	rsp := result.Response

	if rsp.Header.Length != doc.Expect.Length {
		out.Failures = append(out.Failures, fmt.Sprintf("response length = %d, want %d", rsp.Header.Length, doc.Expect.Length))
	}

	if doc.Expect.BodyHex != "" {
		want, err := hex.DecodeString(doc.Expect.BodyHex)
		if err != nil {
			return nil, fmt.Errorf("decode expect.body_hex: %w", err)
		}
		if !bytes.Equal(rsp.Body, want) {
			out.Failures = append(out.Failures, fmt.Sprintf("body = %x, want %x", rsp.Body, want))
		}
	}

	if doc.Expect.BodyPrefixHex != "" {
		want, err := hex.DecodeString(doc.Expect.BodyPrefixHex)
		if err != nil {
			return nil, fmt.Errorf("decode expect.body_prefix_hex: %w", err)
		}
		if len(rsp.Body) < len(want) || !bytes.Equal(rsp.Body[:len(want)], want) {
			out.Failures = append(out.Failures, fmt.Sprintf("body prefix = %x, want prefix %x", rsp.Body, want))
		}
	}

	return out, nil
}

func decodeRequest(r Request) (frame.Frame, error) {
	body, err := hex.DecodeString(r.BodyHex)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("decode body_hex: %w", err)
	}

	var endpoint frame.Endpoint
	switch r.Endpoint {
	case "app":
		endpoint = frame.EndpointApp
	case "firmware":
		endpoint = frame.EndpointFirmware
	default:
		return frame.Frame{}, fmt.Errorf("unknown endpoint %q", r.Endpoint)
	}

	return frame.Frame{
		Header: frame.Header{Endpoint: endpoint, Length: len(body)},
		Body:   body,
	}, nil
}
