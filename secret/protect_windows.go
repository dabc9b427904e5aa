//go:build windows

// File: secret/protect_windows.go

package secret

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const protectSupported = true

func pageSize() int {
	return windows.Getpagesize()
}

func mapPages(n int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(n), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), nil
}

func unmapPages(b []byte) error {
	return windows.VirtualFree(addrOf(b), 0, windows.MEM_RELEASE)
}

func protectPages(b []byte, mode State) error {
	prot := uint32(windows.PAGE_NOACCESS)
	switch mode {
	case ReadOnly:
		prot = windows.PAGE_READONLY
	case ReadWrite:
		prot = windows.PAGE_READWRITE
	}
	var old uint32
	return windows.VirtualProtect(addrOf(b), uintptr(len(b)), prot, &old)
}

func lockPages(b []byte) error {
	return windows.VirtualLock(addrOf(b), uintptr(len(b)))
}

func unlockPages(b []byte) error {
	return windows.VirtualUnlock(addrOf(b), uintptr(len(b)))
}

func noDump(b []byte) error {
	return errUnsupported
}

func addrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}
