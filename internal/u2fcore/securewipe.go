package u2fcore

import (
	"runtime"
	"unsafe"
)

// wipeBytes zeroes data in place and prevents the compiler from hoisting
// away the writes as dead stores. Private key material and MAC inputs in
// this package are wiped with it, by defer or by an explicit call on each
// exit path, before the function holding them returns; the dispatcher
// wipes the authenticate staging buffer once AUTH_GO has consumed it.
func wipeBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	for i := range data {
		ptr := uintptr(unsafe.Pointer(&data[0])) + uintptr(i)
		*(*byte)(unsafe.Pointer(ptr)) = 0
	}
	runtime.KeepAlive(data)
}

// macEqual compares two 32-byte MACs without an early return, accumulating
// the OR of byte-wise XOR differences so that the number of iterations
// (and, so far as the Go runtime allows, the timing) does not depend on
// where the two values first diverge.
func macEqual(a, b [32]byte) bool {
	var diff byte
	for i := 0; i < 32; i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
