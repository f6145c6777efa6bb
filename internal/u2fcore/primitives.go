// Crypto primitives consumed as external collaborators:
// p256_keypair_from_bytes, p256_ecdsa_sign, calc_sha_256. The original
// firmware gets these from p256-m and a bundled sha-256; on this
// platform the equivalent, audited primitives live in crypto/ecdsa,
// crypto/elliptic and crypto/sha256, and no third-party P-256/SHA-256
// implementation improves on them, so the standard library is used
// directly rather than wrapped in a local reimplementation.
package u2fcore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"math/big"
)

// ErrPrivateKeyOutOfRange is p256_keypair_from_bytes's rejection of a
// scalar outside [1, n-1], a vanishingly unlikely outcome (probability
// around 2^-32) for a uniformly random 32-byte input.
var ErrPrivateKeyOutOfRange = errors.New("u2fcore: private key scalar out of range")

// derivePublicKey implements p256_keypair_from_bytes: validates priv and
// returns the 64-byte uncompressed public point X||Y.
func derivePublicKey(priv [PrivKeySize]byte) (PublicKey, error) {
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(priv[:])
	n := curve.Params().N
	if d.Sign() == 0 || d.Cmp(n) >= 0 {
		return PublicKey{}, ErrPrivateKeyOutOfRange
	}

	x, y := curve.ScalarBaseMult(priv[:])
	var pub PublicKey
	x.FillBytes(pub[:32])
	y.FillBytes(pub[32:])
	return pub, nil
}

// ecdsaSign implements p256_ecdsa_sign: a 64-byte r||s signature over a
// 32-byte hash. Go's crypto/ecdsa draws its own per-signature nonce from
// crypto/rand rather than RFC 6979; either nonce derivation is an
// acceptable choice for this signature scheme.
func ecdsaSign(priv [PrivKeySize]byte, hash [32]byte) ([SignatureSize]byte, error) {
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(priv[:])
	x, y := curve.ScalarBaseMult(priv[:])
	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}

	r, s, err := ecdsa.Sign(rand.Reader, key, hash[:])
	if err != nil {
		return [SignatureSize]byte{}, err
	}

	var sig [SignatureSize]byte
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig, nil
}

// sha256Hash implements calc_sha_256.
func sha256Hash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// verifySignature is not exercised by the device (it never verifies its
// own signatures), but is used by tests to check that a produced
// signature verifies under the public key returned at Register.
func verifySignature(pub PublicKey, hash [32]byte, sig [SignatureSize]byte) bool {
	curve := elliptic.P256()
	x := new(big.Int).SetBytes(pub[:32])
	y := new(big.Int).SetBytes(pub[32:])
	key := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	return ecdsa.Verify(key, hash[:], r, s)
}
