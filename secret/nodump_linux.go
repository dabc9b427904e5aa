// File: secret/nodump_linux.go

package secret

import "golang.org/x/sys/unix"

func noDump(b []byte) error {
	return unix.Madvise(b, unix.MADV_DONTDUMP)
}
