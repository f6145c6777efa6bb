package u2fcore

// Sizes of the fixed-width values the U2F command set operates on.
const (
	AppParamSize   = 32
	ChallParamSize = 32
	NonceSize      = 32
	PrivKeySize    = 32
	KeyHandleSize  = 64
	PublicKeySize  = 64
	CounterSize    = 4
	SignatureSize  = 64
)

// AppParam is the relying-party identifier hash (SHA-256 of the origin)
// supplied by the host.
type AppParam [AppParamSize]byte

// ChallParam is the client-data hash (SHA-256 of the challenge object)
// supplied by the host.
type ChallParam [ChallParamSize]byte

// KeyHandle is the 64-byte opaque blob returned at Register and
// re-submitted at Authenticate/CheckOnly: the first 32 bytes are the
// nonce used to derive the private key, the last 32 are the MAC binding
// that private key to app_param.
type KeyHandle [KeyHandleSize]byte

// Nonce returns the key handle's embedded nonce.
func (kh KeyHandle) Nonce() [NonceSize]byte {
	var n [NonceSize]byte
	copy(n[:], kh[:NonceSize])
	return n
}

// Tag returns the key handle's embedded MAC.
func (kh KeyHandle) Tag() [32]byte {
	var t [32]byte
	copy(t[:], kh[NonceSize:])
	return t
}

// NewKeyHandle assembles a key handle from a nonce and a MAC.
func NewKeyHandle(nonce [NonceSize]byte, tag [32]byte) KeyHandle {
	var kh KeyHandle
	copy(kh[:NonceSize], nonce[:])
	copy(kh[NonceSize:], tag[:])
	return kh
}

// PublicKey is the uncompressed affine X||Y point of secp256r1 · priv · G.
type PublicKey [PublicKeySize]byte

// RegisterResult is the outcome of a Register operation.
type RegisterResult struct {
	Presence  bool
	KeyHandle KeyHandle
	PublicKey PublicKey
}

// AuthResult is the outcome of an Authenticate operation.
type AuthResult struct {
	Valid     bool
	Presence  bool
	Signature [SignatureSize]byte
}
