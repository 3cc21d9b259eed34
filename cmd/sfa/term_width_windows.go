//go:build windows

package main

import (
	"os"
	"strconv"
)

func terminalWidth() (int, bool) {
	if cols, ok := os.LookupEnv("COLUMNS"); ok {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}
