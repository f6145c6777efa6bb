package u2fcore

// Command and response opcodes, carried in the first body byte of
// app-endpoint frames. The one-byte status-only replies (bad length,
// Register timeout) carry no opcode.
const (
	OpGetNameVersionCmd byte = 0x01
	OpGetNameVersionRsp byte = 0x02
	OpRegisterCmd       byte = 0x03
	OpRegisterRsp       byte = 0x04
	OpCheckOnlyCmd      byte = 0x05
	OpCheckOnlyRsp      byte = 0x06
	OpAuthSetCmd        byte = 0x07
	OpAuthGoCmd         byte = 0x08
	OpAuthRsp           byte = 0x09
	OpUnknownCmdRsp     byte = 0xFF
)

// Status bytes, prefixed to most responses.
const (
	StatusOK  byte = 0
	StatusBad byte = 1
)

// Frame body lengths. Every app command and response this protocol
// defines uses one of exactly three sizes.
const (
	lenNameVersionCmd = 1
	lenNameVersionRsp = 13
	lenAppFrame       = 128
)

var deviceName0 = [4]byte{'t', 'k', '1', ' '}
var deviceName1 = [4]byte{'f', 'i', 'd', 'o'}

const deviceVersion uint32 = 1
