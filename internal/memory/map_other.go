//go:build !unix

package memory

// Map is unavailable without mmap; use New.
func Map(path string, size int) (*Region, error) {
	return nil, ErrMapUnsupported
}

func unmapRegion(buf []byte) error {
	return nil
}
