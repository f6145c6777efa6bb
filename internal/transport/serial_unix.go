//go:build !windows

package transport

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// OpenSerial opens a TTY device and puts it into raw mode (no echo, no
// line buffering, no signal-generating control characters) so that every
// byte the dispatcher writes and reads is exactly one frame byte, with
// nothing from the terminal layer interposed. This is the closest analog
// on a development host to the firmware's bit-banged UART: a real device
// has no termios layer at all, but the /dev/ttyACM-style character
// device this project talks to from the simulator does.
func OpenSerial(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", path, err)
	}

	if err := setRawMode(f); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func setRawMode(f *os.File) error {
	fd := int(f.Fd())

	term, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return fmt.Errorf("transport: get termios: %w", err)
	}

	term.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	term.Oflag &^= unix.OPOST
	term.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	term.Cflag &^= unix.CSIZE | unix.PARENB
	term.Cflag |= unix.CS8
	term.Cc[unix.VMIN] = 1
	term.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, term); err != nil {
		return fmt.Errorf("transport: set termios: %w", err)
	}
	return nil
}
