package codewriter

import (
	"errors"
	"strings"
	"syscall"
)

// isNoSpace reports whether err ultimately wraps ENOSPC. Checked via errors.Is against the
// syscall errno first; falls back to a substring match since some wrapped errors (e.g. from
// os.CreateTemp on unusual filesystems) don't preserve the errno cleanly.
func isNoSpace(err error) bool {
	if errors.Is(err, syscall.ENOSPC) {
		return true
	}
	return strings.Contains(err.Error(), "no space left on device")
}

// isInUse reports whether err indicates the target file is held open by another process.
func isInUse(err error) bool {
	if errors.Is(err, syscall.ETXTBSY) || errors.Is(err, syscall.EBUSY) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "text file busy") || strings.Contains(msg, "resource busy")
}
