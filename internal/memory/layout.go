package memory

// Fixed byte offsets inside a Region.
const (
	HeadOffset          = 0x0000
	RadixOffset         = 0x0100
	ShadowConfigOffset  = 0x0200
	ShadowCounterOffset = 0x0400
	SectionsOffset      = 0x1000
)

// Slot table geometry.
const (
	ShadowSlots       = 6
	ShadowRecordSize  = 16
	ShadowCounterSize = 8
)

// SectionSize is the size of one application section.
const SectionSize = 0x1000

// PageSize matches the 64 KiB page of the host memory the original clock was
// embedded in; DefaultSize is the 256 pages that host allocated.
const (
	PageSize    = 64 << 10
	DefaultSize = 256 * PageSize
)

// MinSize is the smallest region that holds every fixed structure.
const MinSize = SectionsOffset

// The fixed structures must not overlap each other or the sections.
var (
	_ [ShadowConfigOffset - (RadixOffset + 8)]byte
	_ [ShadowCounterOffset - (ShadowConfigOffset + ShadowSlots*ShadowRecordSize)]byte
	_ [SectionsOffset - (ShadowCounterOffset + ShadowSlots*ShadowCounterSize)]byte
)

// ShadowRecordOffset returns the offset of slot's configuration record.
func ShadowRecordOffset(slot int) int {
	return ShadowConfigOffset + slot*ShadowRecordSize
}

// ShadowCounterOffsetFor returns the offset of slot's shadow counter.
func ShadowCounterOffsetFor(slot int) int {
	return ShadowCounterOffset + slot*ShadowCounterSize
}

// SectionOffset returns the offset of application section id.
func SectionOffset(id int) int {
	return SectionsOffset + id*SectionSize
}
