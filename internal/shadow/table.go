package shadow

import (
	"github.com/roach88/radixrunner/internal/memory"
	"github.com/roach88/radixrunner/internal/radix"
)

// MaxSlots is the fixed size of the table.
const MaxSlots = memory.ShadowSlots

// Table is the six-slot configuration table plus its shadow counters.
//
// A Table is a set of pointers into a region; resolving it is cheap and
// allocation-free, which lets the observer re-resolve it on every wrap.
type Table struct {
	slots [MaxSlots]Slot
}

// View resolves the table stored in region r.
func View(r *memory.Region) Table {
	var t Table
	for i := range t.slots {
		t.slots[i] = Slot{
			id:      i,
			rec:     (*record)(r.Pointer(memory.ShadowRecordOffset(i), memory.ShadowRecordSize)),
			counter: r.Uint64At(memory.ShadowCounterOffsetFor(i)),
		}
	}
	return t
}

// Attach is View returning a pointer, for long-lived holders.
func Attach(r *memory.Region) *Table {
	t := View(r)
	return &t
}

// Len returns the number of slots.
func (t *Table) Len() int { return MaxSlots }

// Slot returns slot i.
func (t *Table) Slot(i int) (*Slot, error) {
	if i < 0 || i >= MaxSlots {
		return nil, newConfigError(ErrCodeInvalidSlot, i, "slot outside 0..%d", MaxSlots-1)
	}
	return &t.slots[i], nil
}

// Configure is Slot(i).Configure(c).
func (t *Table) Configure(i int, c Config) error {
	s, err := t.Slot(i)
	if err != nil {
		return err
	}
	return s.Configure(c)
}

// RecordWrap applies a wrap of digit d to every slot and returns how many
// shadow counters advanced.
func (t *Table) RecordWrap(d radix.Digit) int {
	advanced := 0
	for i := range t.slots {
		if t.slots[i].RecordWrap(d) {
			advanced++
		}
	}
	return advanced
}

// States snapshots every slot in index order.
func (t *Table) States() []State {
	out := make([]State, MaxSlots)
	for i := range t.slots {
		out[i] = t.slots[i].State()
	}
	return out
}

// Reset zeroes every record and counter, leaving all slots disabled. It is a
// setup-time operation; running it under a live observer races like any
// other controller write.
func (t *Table) Reset() {
	for i := range t.slots {
		t.slots[i].reset()
	}
}
