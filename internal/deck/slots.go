package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// GridSize is the number of slots in every deck.
const GridSize = 16

// GridColumns is the number of slots per grid row.
const GridColumns = 4

// SlotID identifies a positional cell within a deck.
type SlotID = string

const slotPrefix = "slot-"

// Slot returns the slot id at index i.
func Slot(i int) SlotID {
	return fmt.Sprintf("%s%d", slotPrefix, i)
}

// SlotIndex parses a slot id. It reports false for ids outside the grid.
func SlotIndex(id SlotID) (int, bool) {
	if !strings.HasPrefix(id, slotPrefix) {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimPrefix(id, slotPrefix))
	if err != nil || i < 0 || i >= GridSize {
		return 0, false
	}
	return i, true
}

// Slots returns every slot id in grid order.
func Slots() []SlotID {
	slots := make([]SlotID, GridSize)
	for i := range slots {
		slots[i] = Slot(i)
	}
	return slots
}

// Reorder rebuilds a deck after a drag. order[i] is the slot id whose
// content now sits at position i. Positions whose old slot had no
// configuration, and positions past the end of order, are left empty.
func Reorder(buttons Buttons, order []SlotID) Buttons {
	out := make(Buttons, len(buttons))
	for i, old := range order {
		if i >= GridSize {
			break
		}
		if cfg, ok := buttons[old]; ok {
			out[Slot(i)] = cfg
		}
	}
	return out
}
