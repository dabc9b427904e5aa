//go:build darwin || freebsd || netbsd || openbsd || dragonfly

// File: secret/nodump_other.go

package secret

func noDump(b []byte) error {
	return errUnsupported
}
