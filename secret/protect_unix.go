//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

// File: secret/protect_unix.go

package secret

import "golang.org/x/sys/unix"

const protectSupported = true

func pageSize() int {
	return unix.Getpagesize()
}

func mapPages(n int) ([]byte, error) {
	return unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

func unmapPages(b []byte) error {
	return unix.Munmap(b)
}

func protectPages(b []byte, mode State) error {
	prot := unix.PROT_NONE
	switch mode {
	case ReadOnly:
		prot = unix.PROT_READ
	case ReadWrite:
		prot = unix.PROT_READ | unix.PROT_WRITE
	}
	return unix.Mprotect(b, prot)
}

func lockPages(b []byte) error {
	return unix.Mlock(b)
}

func unlockPages(b []byte) error {
	return unix.Munlock(b)
}
