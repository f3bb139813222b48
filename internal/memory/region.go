package memory

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

var (
	// ErrInvalidSize is returned when a region size cannot hold the fixed layout
	// or is not a multiple of 8.
	ErrInvalidSize = errors.New("invalid region size")

	// ErrNoSection is returned for an application section outside the region.
	ErrNoSection = errors.New("section out of range")

	// ErrMapUnsupported is returned by Map on platforms without mmap.
	ErrMapUnsupported = errors.New("shared file mapping not supported on this platform")
)

// Region is a flat shared byte buffer. Its base is 8-byte aligned, so every
// 8-byte slot at an 8-aligned offset can be used as an atomic word.
//
// A Region is safe for concurrent use; it performs no synchronization itself,
// all coordination happens through the atomic views it hands out.
type Region struct {
	buf    []byte
	words  []uint64 // heap backing; keeps the base aligned and alive
	path   string
	mapped bool
}

// New allocates a zeroed heap region of size bytes.
func New(size int) (*Region, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}

	words := make([]uint64, size/8)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)

	return &Region{buf: buf, words: words}, nil
}

func checkSize(size int) error {
	if size < MinSize {
		return fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidSize, size, MinSize)
	}
	if size%8 != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of 8", ErrInvalidSize, size)
	}
	return nil
}

// Size returns the region length in bytes.
func (r *Region) Size() int {
	return len(r.buf)
}

// Path returns the backing file of a mapped region, or "" for heap regions.
func (r *Region) Path() string {
	return r.path
}

// Bytes exposes the raw buffer. Writes through it bypass atomicity and are
// only meant for application sections and tests.
func (r *Region) Bytes() []byte {
	return r.buf
}

// Uint64At returns an atomic view of the 8 bytes at off.
// It panics if off is misaligned or out of range; callers only pass layout
// constants.
func (r *Region) Uint64At(off int) *atomic.Uint64 {
	r.check(off, 8)
	return (*atomic.Uint64)(unsafe.Pointer(&r.buf[off]))
}

// Uint32At returns an atomic view of the 4 bytes at off.
func (r *Region) Uint32At(off int) *atomic.Uint32 {
	r.check(off, 4)
	return (*atomic.Uint32)(unsafe.Pointer(&r.buf[off]))
}

// Pointer returns the address of off. It is used to overlay fixed-size
// records on the region.
func (r *Region) Pointer(off, size int) unsafe.Pointer {
	r.check(off, 4)
	if off+size > len(r.buf) {
		panic(fmt.Sprintf("memory: record [%#x,%#x) outside region of %d bytes", off, off+size, len(r.buf)))
	}
	return unsafe.Pointer(&r.buf[off])
}

func (r *Region) check(off, align int) {
	if off < 0 || off+align > len(r.buf) {
		panic(fmt.Sprintf("memory: offset %#x outside region of %d bytes", off, len(r.buf)))
	}
	if off%align != 0 {
		panic(fmt.Sprintf("memory: offset %#x not %d-byte aligned", off, align))
	}
}

// Sections returns how many whole application sections fit in the region.
func (r *Region) Sections() int {
	return (len(r.buf) - SectionsOffset) / SectionSize
}

// Section returns application section id. Section contents are opaque to the
// clock.
func (r *Region) Section(id int) ([]byte, error) {
	if id < 0 || id >= r.Sections() {
		return nil, fmt.Errorf("%w: section %d, region has %d", ErrNoSection, id, r.Sections())
	}
	off := SectionOffset(id)
	return r.buf[off : off+SectionSize : off+SectionSize], nil
}

// Close releases a mapped region. It is a no-op for heap regions.
// The region must not be used afterwards.
func (r *Region) Close() error {
	if !r.mapped {
		return nil
	}
	buf := r.buf
	r.buf, r.mapped = nil, false
	if err := unmapRegion(buf); err != nil {
		return fmt.Errorf("unmap %s: %w", r.path, err)
	}
	return nil
}
