package u2fcore

import "golang.org/x/crypto/blake2s"

// macS computes the keyed Blake2s MAC over (part1 || part2) under the
// device secret, the single primitive that both derives private keys and
// authenticates key handles: priv = MAC_S(app_param || nonce),
// tag = MAC_S(app_param || priv).
func macS(secret [32]byte, part1, part2 [32]byte) [32]byte {
	var in [64]byte
	copy(in[:32], part1[:])
	copy(in[32:], part2[:])
	defer wipeBytes(in[:])

	h, err := blake2s.New256(secret[:])
	if err != nil {
		// blake2s.New256 only fails for an oversized key; secret is
		// always exactly 32 bytes, so this is unreachable.
		panic("u2fcore: blake2s keyed hash rejected a 32-byte key: " + err.Error())
	}
	h.Write(in[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
