//go:build !windows

package main

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// terminalWidth reports the stdout width and whether stdout is a terminal.
// COLUMNS is used when the ioctl fails.
func terminalWidth() (int, bool) {
	fd := int(os.Stdout.Fd())
	if ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ); err == nil && ws != nil && ws.Col > 0 {
		return int(ws.Col), true
	}
	if cols, ok := os.LookupEnv("COLUMNS"); ok {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			return n, false
		}
	}
	return 0, false
}
