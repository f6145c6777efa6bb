package u2fcore

import (
	"fmt"

	"tkeyfido/internal/drbg"
	"tkeyfido/internal/hardware"
	"tkeyfido/internal/presence"
)

// maxKeygenAttempts bounds an optional retry: Register may re-draw a
// fresh nonce and retry derivation on a crypto primitive failure rather
// than failing outright. At a vanishingly small failure probability per
// draw, this is never expected to loop more than once in practice.
const maxKeygenAttempts = 4

// Core implements C5: key derivation, key-handle authentication, ECDSA
// signing, wired to the device secret (C1), the DRBG (C3), and the touch
// gate (C4). One Core is constructed per process and lives for its
// lifetime; it holds no other state between calls.
type Core struct {
	secret [32]byte
	rng    *drbg.DRBG
	gate   *presence.Gate
}

// New constructs a Core over a device secret, DRBG, and presence gate.
func New(secret [32]byte, rng *drbg.DRBG, gate *presence.Gate) *Core {
	return &Core{secret: secret, rng: rng, gate: gate}
}

// Register derives a fresh key pair and key handle for appParam. If the
// user does not touch within the timeout, it returns a zero-value result
// with Presence=false and a nil error: that is a terminal, non-error
// outcome, not a failure.
func (c *Core) Register(appParam AppParam) (RegisterResult, error) {
	if !c.gate.WaitTouched(hardware.LEDBlue) {
		return RegisterResult{}, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxKeygenAttempts; attempt++ {
		nonceBuf := make([]byte, NonceSize)
		if err := c.rng.Generate(nonceBuf); err != nil {
			return RegisterResult{}, fmt.Errorf("draw nonce: %w", err)
		}
		var nonce [NonceSize]byte
		copy(nonce[:], nonceBuf)
		wipeBytes(nonceBuf)

		priv := macS(c.secret, [32]byte(appParam), nonce)

		pub, err := derivePublicKey(priv)
		if err != nil {
			wipeBytes(priv[:])
			lastErr = err
			continue
		}

		tag := macS(c.secret, [32]byte(appParam), priv)
		wipeBytes(priv[:])

		return RegisterResult{
			Presence:  true,
			KeyHandle: NewKeyHandle(nonce, tag),
			PublicKey: pub,
		}, nil
	}

	return RegisterResult{}, fmt.Errorf("%w: %v", ErrCryptoPrimitive, lastErr)
}

// recoverPriv re-derives priv and the comparison tag from a key handle,
// shared by CheckOnly and Authenticate.
func (c *Core) recoverPriv(appParam AppParam, kh KeyHandle) (priv [32]byte, valid bool) {
	nonce := kh.Nonce()
	priv = macS(c.secret, [32]byte(appParam), nonce)
	tagPrime := macS(c.secret, [32]byte(appParam), priv)
	return priv, macEqual(kh.Tag(), tagPrime)
}

// CheckOnly reports whether kh is a valid key handle for appParam,
// without touching any crypto state beyond recomputing its MAC. The
// comparison traverses all 32 bytes of the MAC regardless of where it
// first diverges.
func (c *Core) CheckOnly(appParam AppParam, kh KeyHandle) bool {
	priv, valid := c.recoverPriv(appParam, kh)
	wipeBytes(priv[:])
	return valid
}

// Authenticate validates kh against appParam, optionally gates on user
// presence, and signs the assembled authentication message.
func (c *Core) Authenticate(appParam AppParam, challParam ChallParam, kh KeyHandle, checkUser bool, counter [CounterSize]byte) (AuthResult, error) {
	priv, valid := c.recoverPriv(appParam, kh)
	defer wipeBytes(priv[:])

	if !valid {
		return AuthResult{Valid: false}, nil
	}

	presenceBit := false
	if checkUser {
		if !c.gate.WaitTouched(hardware.LEDGreen) {
			return AuthResult{Valid: true, Presence: false}, nil
		}
		presenceBit = true
	}

	msg := make([]byte, 0, AppParamSize+1+CounterSize+ChallParamSize)
	msg = append(msg, appParam[:]...)
	if presenceBit {
		msg = append(msg, 1)
	} else {
		msg = append(msg, 0)
	}
	msg = append(msg, counter[:]...)
	msg = append(msg, challParam[:]...)

	hash := sha256Hash(msg)
	wipeBytes(msg)

	sig, err := ecdsaSign(priv, hash)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", ErrCryptoPrimitive, err)
	}

	return AuthResult{Valid: true, Presence: presenceBit, Signature: sig}, nil
}
