package engine

import (
	"fmt"
	"math/rand/v2"
)

// Rand is the randomness the roster needs. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// defaultRand uses the math/rand/v2 top-level functions, which are safe for
// concurrent use by many lobbies.
type defaultRand struct{}

func (defaultRand) Float64() float64 { return rand.Float64() }
func (defaultRand) IntN(n int) int   { return rand.IntN(n) }

type slotCoord struct {
	position string
	slot     Slot
}

// randomizeSides flips a single coin; on a flip every lane swaps sides.
func randomizeSides(s *State, r Rand) []Event {
	if r.Float64() < 0.5 {
		return nil
	}
	for i := range s.Lanes {
		swapLane(&s.Lanes[i])
	}
	return []Event{{Type: EvtSidesRandomized}}
}

func randomAssignOne(s *State, r Rand) []Event {
	unassigned := Pool(*s)

	var empty []slotCoord
	for _, l := range s.Lanes {
		if l.SlotA == "" {
			empty = append(empty, slotCoord{l.Position, SlotA})
		}
		if l.SlotB == "" {
			empty = append(empty, slotCoord{l.Position, SlotB})
		}
	}

	if len(unassigned) == 0 || len(empty) == 0 {
		return []Event{{
			Type:   EvtRandomAssignSkipped,
			Detail: fmt.Sprintf("unassigned=%d empty_slots=%d", len(unassigned), len(empty)),
		}}
	}

	p := unassigned[r.IntN(len(unassigned))]
	c := empty[r.IntN(len(empty))]
	*slotRef(s, c.position, c.slot) = p.Name
	return []Event{{Type: EvtPlayerPlaced, Name: p.Name, Position: c.position, Slot: c.slot}}
}
