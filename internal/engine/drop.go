package engine

import (
	"encoding/json"
	"fmt"
)

type OriginType string

const (
	OriginPool OriginType = "pool"
	OriginSlot OriginType = "slot"
)

// Origin says where a dragged name was picked up. Position and Slot are set
// only for OriginSlot.
type Origin struct {
	Type     OriginType `json:"type"`
	Position string     `json:"position,omitempty"`
	Slot     Slot       `json:"slot,omitempty"`
}

// DragPayload travels with a drag gesture from start to drop.
type DragPayload struct {
	Name   string `json:"name"`
	Origin Origin `json:"origin"`
}

type TargetType string

const (
	TargetPool TargetType = "pool"
	TargetSlot TargetType = "slot"
)

// DropTarget is either a pool tier row (Tier set) or a lane slot
// (Position and Slot set).
type DropTarget struct {
	Type     TargetType `json:"type"`
	Tier     Tier       `json:"tier,omitempty"`
	Position string     `json:"position,omitempty"`
	Slot     Slot       `json:"slot,omitempty"`
}

func PoolPayload(name string) DragPayload {
	return DragPayload{Name: name, Origin: Origin{Type: OriginPool}}
}

func SlotPayload(name, position string, slot Slot) DragPayload {
	return DragPayload{Name: name, Origin: Origin{Type: OriginSlot, Position: position, Slot: slot}}
}

func PoolTarget(tier Tier) DropTarget {
	return DropTarget{Type: TargetPool, Tier: tier}
}

func SlotTarget(position string, slot Slot) DropTarget {
	return DropTarget{Type: TargetSlot, Position: position, Slot: slot}
}

// EncodePayload turns a payload into the text carried by a drag transport.
func EncodePayload(p DragPayload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode drag payload: %w", err)
	}
	return string(b), nil
}

// DecodePayload is the inverse of EncodePayload. Only the shape is checked
// here; positions are checked against a state when the drop is applied.
func DecodePayload(text string) (DragPayload, error) {
	var p DragPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return DragPayload{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.Name == "" {
		return DragPayload{}, fmt.Errorf("%w: missing name", ErrBadPayload)
	}
	switch p.Origin.Type {
	case OriginPool:
	case OriginSlot:
		if p.Origin.Position == "" || !validSlot(p.Origin.Slot) {
			return DragPayload{}, fmt.Errorf("%w: incomplete slot origin", ErrBadPayload)
		}
	default:
		return DragPayload{}, fmt.Errorf("%w: unknown origin %q", ErrBadPayload, p.Origin.Type)
	}
	return p, nil
}

func (t DropTarget) Equal(o DropTarget) bool {
	return t == o
}

func checkTarget(s State, t DropTarget) error {
	switch t.Type {
	case TargetPool:
		if !validTier(t.Tier, false) {
			return ErrUnknownTier
		}
	case TargetSlot:
		if laneIndex(s, t.Position) < 0 {
			return ErrUnknownPosition
		}
		if !validSlot(t.Slot) {
			return ErrUnknownSlot
		}
	default:
		return ErrUnknownTarget
	}
	return nil
}

func checkPayload(s State, p DragPayload) error {
	if p.Name == "" {
		return ErrBadPayload
	}
	switch p.Origin.Type {
	case OriginPool:
		return nil
	case OriginSlot:
		if laneIndex(s, p.Origin.Position) < 0 || !validSlot(p.Origin.Slot) {
			return ErrBadPayload
		}
		return nil
	}
	return ErrBadPayload
}

func dragOver(s *State, t DropTarget) ([]Event, error) {
	if err := checkTarget(*s, t); err != nil {
		return nil, err
	}
	if s.DragOver != nil && s.DragOver.Equal(t) {
		return nil, nil
	}
	s.DragOver = &t
	return []Event{{Type: EvtDragOverChanged, Position: t.Position, Slot: t.Slot, Tier: t.Tier}}, nil
}

func dragLeave(s *State) []Event {
	if s.DragOver == nil {
		return nil
	}
	s.DragOver = nil
	return []Event{{Type: EvtDragOverChanged}}
}

// handleDrop applies one drop gesture.
//
//	origin  target             occupied  result
//	pool    pool row           -         tier := row tier
//	slot    pool row           -         clear origin, tier := row tier
//	pool    slot               no        place
//	pool    slot               yes       place, evicted tier := Mid
//	slot    same slot          -         nothing
//	slot    other slot         no        clear origin, place
//	slot    other slot         yes       swap origin and target
//
// A slot origin that no longer holds the name is treated as a pool origin,
// and a pool-origin name found in some slot is lifted out of it first, so a
// name never ends up in two slots.
func handleDrop(s *State, p DragPayload, t DropTarget) ([]Event, error) {
	if err := checkPayload(*s, p); err != nil {
		return nil, err
	}
	if err := checkTarget(*s, t); err != nil {
		return nil, err
	}

	events := dragLeave(s)

	if playerIndex(*s, p.Name) < 0 {
		return events, nil
	}

	origin := p.Origin
	if origin.Type == OriginSlot && *slotRef(s, origin.Position, origin.Slot) != p.Name {
		origin = Origin{Type: OriginPool}
	}

	if t.Type == TargetPool {
		events = append(events, clearSlotsFor(s, p.Name)...)
		return append(events, setTier(s, p.Name, t.Tier)...), nil
	}

	target := slotRef(s, t.Position, t.Slot)
	occupant := *target

	if occupant == p.Name {
		// Self-drop, whatever the payload claims.
		return events, nil
	}

	if origin.Type == OriginSlot {
		src := slotRef(s, origin.Position, origin.Slot)
		if occupant == "" {
			*src = ""
			*target = p.Name
			return append(events,
				Event{Type: EvtSlotCleared, Name: p.Name, Position: origin.Position, Slot: origin.Slot},
				Event{Type: EvtPlayerPlaced, Name: p.Name, Position: t.Position, Slot: t.Slot},
			), nil
		}
		*src = occupant
		*target = p.Name
		return append(events, Event{
			Type:     EvtSlotsSwapped,
			Name:     p.Name,
			Position: t.Position,
			Slot:     t.Slot,
			Detail:   occupant,
		}), nil
	}

	events = append(events, clearSlotsFor(s, p.Name)...)
	*target = p.Name
	events = append(events, Event{Type: EvtPlayerPlaced, Name: p.Name, Position: t.Position, Slot: t.Slot})
	if occupant != "" {
		events = append(events, Event{Type: EvtPlayerEvicted, Name: occupant, Position: t.Position, Slot: t.Slot})
		events = append(events, setTier(s, occupant, TierMid)...)
	}
	return events, nil
}
