package platform

import (
	"fmt"

	"golang.org/x/sys/unix"
)

var uname = unix.Uname

// Version returns "<sysname> <release>" for the running kernel.
func Version() (string, error) {
	var u unix.Utsname
	if err := uname(&u); err != nil {
		return "", fmt.Errorf("uname: %w", err)
	}
	return unix.ByteSliceToString(u.Sysname[:]) + " " + unix.ByteSliceToString(u.Release[:]), nil
}
