//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

// File: secret/protect_other.go

package secret

const protectSupported = false

func pageSize() int                           { return 0 }
func mapPages(n int) ([]byte, error)          { return nil, errUnsupported }
func unmapPages(b []byte) error               { return errUnsupported }
func protectPages(b []byte, mode State) error { return errUnsupported }
func lockPages(b []byte) error                { return errUnsupported }
func unlockPages(b []byte) error              { return errUnsupported }
func noDump(b []byte) error                   { return errUnsupported }
