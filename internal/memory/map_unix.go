//go:build unix

package memory

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps size bytes of the file at path as a shared region, creating or
// growing the file as needed. Every process mapping the same file sees the
// same counter and slot table.
//
// Existing contents are preserved; a fresh file starts zeroed.
func Map(path string, size int) (*Region, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open region file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat region file: %w", err)
	}
	if info.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			return nil, fmt.Errorf("grow region file: %w", err)
		}
	}

	buf, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap region file: %w", err)
	}

	return &Region{buf: buf, path: path, mapped: true}, nil
}

func unmapRegion(buf []byte) error {
	return unix.Munmap(buf)
}
