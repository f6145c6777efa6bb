package u2fcore

import (
	"encoding/binary"
	"errors"
	"io"

	"tkeyfido/internal/frame"
	"tkeyfido/internal/hardware"
	"tkeyfido/internal/logging"
)

// dispatchState tracks AUTH_SET/AUTH_GO pairing as an explicit two-state
// enum, never a boolean "armed" flag, so a stray AUTH_GO in the wrong
// state has exactly one state to be rejected from.
type dispatchState int

const (
	stateIdle dispatchState = iota
	stateAuthArmed
)

// staging holds the AUTH_SET half of the AUTH_SET / AUTH_GO pair, the Go
// equivalent of the original firmware's flat staging byte array: AUTH_SET
// populates appParam/challParam, AUTH_GO reads the key handle, check_user
// flag and counter from its own frame, and Authenticate is only ever
// called once AUTH_SET has armed the dispatcher. AUTH_GO wipes the staged
// values once it has consumed them.
type staging struct {
	appParam   AppParam
	challParam ChallParam
}

// Dispatcher implements the command dispatcher state machine, wired to a
// Core (C5) and the LED half of the touch/timer hardware (C4) for the
// "ready" colour between commands.
type Dispatcher struct {
	core  *Core
	led   hardware.TouchTimer
	state dispatchState
	pend  staging
	log   *logging.Logger
}

// NewDispatcher constructs a Dispatcher. led is used only for SetLED
// between commands; the touch-gated wait itself lives inside Core. A nil
// logger falls back to a discarding one so the dispatcher is usable
// without a configured log sink.
func NewDispatcher(core *Core, led hardware.TouchTimer, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Discard()
	}
	return &Dispatcher{core: core, led: led, state: stateIdle, log: log.WithComponent("dispatcher")}
}

// Run reads and answers frames from r, writing replies to w, until r
// returns an error (io.EOF on a clean host disconnect). It is the Go
// analogue of the firmware's main loop: single-threaded, one frame in
// flight at a time, blocking on read between commands.
func (d *Dispatcher) Run(r io.Reader, w io.Writer) error {
	for {
		d.led.SetLED(hardware.LEDYellow)

		f, err := frame.ReadFrame(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := d.handle(w, f); err != nil {
			return err
		}
	}
}

// HandleFrame dispatches one already-read frame, writing its reply to w.
// It is the unit a scenario runner or an alternate transport driver calls
// directly, bypassing Run's blocking read loop.
func (d *Dispatcher) HandleFrame(w io.Writer, f frame.Frame) error {
	return d.handle(w, f)
}

// handle dispatches one already-read frame, applying the endpoint
// routing rules and the AUTH_SET/AUTH_GO state table below.
func (d *Dispatcher) handle(w io.Writer, f frame.Frame) error {
	switch f.Header.Endpoint {
	case frame.EndpointFirmware:
		return frame.WriteNOK(w, f.Header)
	case frame.EndpointApp:
		// falls through to command dispatch below
	default:
		return nil
	}

	if len(f.Body) == 0 {
		return d.replyBadLength(w, f.Header)
	}
	opcode := f.Body[0]
	d.log.Debug("command received", "opcode", opcode, "length", f.Header.Length)

	switch opcode {
	case OpGetNameVersionCmd:
		return d.handleNameVersion(w, f)
	case OpRegisterCmd:
		return d.handleRegister(w, f)
	case OpCheckOnlyCmd:
		return d.handleCheckOnly(w, f)
	case OpAuthSetCmd:
		return d.handleAuthSet(w, f)
	case OpAuthGoCmd:
		return d.handleAuthGo(w, f)
	default:
		return d.replyUnknown(w, f.Header)
	}
}

// handleNameVersion always answers with the 13-byte OpGetNameVersionRsp
// body under the same opcode, even for a request with the wrong length:
// the name/version fields are only filled in when the request's length
// is exactly lenNameVersionCmd, left zeroed otherwise. This mirrors the
// original firmware's appreply(hdr, APP_RSP_GET_NAMEVERSION, rsp) call,
// made unconditionally regardless of hdr.len.
func (d *Dispatcher) handleNameVersion(w io.Writer, f frame.Frame) error {
	body := make([]byte, lenNameVersionRsp)
	body[0] = OpGetNameVersionRsp
	if f.Header.Length == lenNameVersionCmd {
		copy(body[1:5], deviceName0[:])
		copy(body[5:9], deviceName1[:])
		binary.LittleEndian.PutUint32(body[9:13], deviceVersion)
	}

	return d.reply(w, f.Header, body)
}

func (d *Dispatcher) handleRegister(w io.Writer, f frame.Frame) error {
	if f.Header.Length != lenAppFrame {
		return d.replyBadLength(w, f.Header)
	}
	var appParam AppParam
	copy(appParam[:], f.Body[1:1+AppParamSize])

	result, err := d.core.Register(appParam)
	if err != nil {
		d.log.Warn("register failed", "error", err)
		return d.replyRegisterError(w, f.Header)
	}
	if !result.Presence {
		return d.replyRegisterAbsent(w, f.Header)
	}

	frameA := make([]byte, lenAppFrame)
	frameA[0] = OpRegisterRsp
	frameA[1] = StatusOK
	frameA[2] = 1 // presence
	copy(frameA[3:3+KeyHandleSize], result.KeyHandle[:])
	if err := d.reply(w, f.Header, frameA); err != nil {
		return err
	}

	frameB := make([]byte, lenAppFrame)
	frameB[0] = OpRegisterRsp
	frameB[1] = StatusOK
	copy(frameB[2:2+PublicKeySize], result.PublicKey[:])
	return d.reply(w, f.Header, frameB)
}

// replyRegisterAbsent answers a Register call that timed out waiting for
// touch: a literal single-byte {0} reply, with no opcode byte and no
// second frame. The status byte and the presence byte are the same zero
// byte. Like the one-byte StatusBad reply of replyBadLength, it carries
// no response opcode; the upstream firmware this protocol is
// modeled on is documented to behave exactly this way on timeout, and
// that edge case is replicated bit-exactly here rather than redesigned.
func (d *Dispatcher) replyRegisterAbsent(w io.Writer, h frame.Header) error {
	return d.reply(w, h, []byte{0x00})
}

func (d *Dispatcher) replyRegisterError(w io.Writer, h frame.Header) error {
	body := make([]byte, lenAppFrame)
	body[0] = OpRegisterRsp
	body[1] = StatusBad
	return d.reply(w, h, body)
}

func (d *Dispatcher) handleCheckOnly(w io.Writer, f frame.Frame) error {
	if f.Header.Length != lenAppFrame {
		return d.replyBadLength(w, f.Header)
	}
	var appParam AppParam
	copy(appParam[:], f.Body[1:1+AppParamSize])
	var kh KeyHandle
	copy(kh[:], f.Body[1+AppParamSize:1+AppParamSize+KeyHandleSize])

	valid := d.core.CheckOnly(appParam, kh)

	body := make([]byte, lenAppFrame)
	body[0] = OpCheckOnlyRsp
	body[1] = StatusOK
	if valid {
		body[2] = 1
	}
	return d.reply(w, f.Header, body)
}

func (d *Dispatcher) handleAuthSet(w io.Writer, f frame.Frame) error {
	if f.Header.Length != lenAppFrame {
		return d.replyBadLength(w, f.Header)
	}
	var st staging
	copy(st.appParam[:], f.Body[1:1+AppParamSize])
	copy(st.challParam[:], f.Body[1+AppParamSize:1+AppParamSize+ChallParamSize])
	d.pend = st
	d.state = stateAuthArmed

	// The opcode table defines no dedicated AUTH_SET response
	// opcode, only the cmd opcode and the state-machine row's "reply OK".
	// The ack echoes the request opcode, consistent with every other
	// reply in this dispatcher carrying its originating command's opcode
	// in byte 0.
	body := make([]byte, lenAppFrame)
	body[0] = OpAuthSetCmd
	body[1] = StatusOK
	return d.reply(w, f.Header, body)
}

func (d *Dispatcher) handleAuthGo(w io.Writer, f frame.Frame) error {
	if d.state != stateAuthArmed {
		// The mandated fix for the source's unenforced AUTH_GO-without-
		// AUTH_SET gap.
		return d.replyBadLength(w, f.Header)
	}
	d.state = stateIdle
	defer func() {
		wipeBytes(d.pend.appParam[:])
		wipeBytes(d.pend.challParam[:])
	}()

	if f.Header.Length != lenAppFrame {
		return d.replyBadLength(w, f.Header)
	}

	var kh KeyHandle
	copy(kh[:], f.Body[1:1+KeyHandleSize])
	checkUser := f.Body[1+KeyHandleSize] != 0
	var counter [CounterSize]byte
	copy(counter[:], f.Body[2+KeyHandleSize:2+KeyHandleSize+CounterSize])

	result, err := d.core.Authenticate(d.pend.appParam, d.pend.challParam, kh, checkUser, counter)
	if err != nil {
		body := make([]byte, lenAppFrame)
		body[0] = OpAuthRsp
		body[1] = StatusBad
		return d.reply(w, f.Header, body)
	}

	body := make([]byte, lenAppFrame)
	body[0] = OpAuthRsp
	body[1] = StatusOK
	if result.Valid {
		body[2] = 1
	}
	if result.Presence {
		body[3] = 1
	}
	copy(body[4:4+SignatureSize], result.Signature[:])
	return d.reply(w, f.Header, body)
}

func (d *Dispatcher) replyUnknown(w io.Writer, h frame.Header) error {
	body := make([]byte, lenAppFrame)
	body[0] = OpUnknownCmdRsp
	return d.reply(w, h, body)
}

func (d *Dispatcher) replyBadLength(w io.Writer, h frame.Header) error {
	return d.reply(w, h, []byte{StatusBad})
}

// reply echoes the request's endpoint, sized to body's own length: most
// replies are full 128-byte frames, but BadLength answers with a 1-byte
// frame regardless of what the offending request's length was.
func (d *Dispatcher) reply(w io.Writer, h frame.Header, body []byte) error {
	return frame.WriteFrame(w, frame.Frame{
		Header: frame.Header{Endpoint: h.Endpoint, Length: len(body)},
		Body:   body,
	})
}
