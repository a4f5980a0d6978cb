package engine

import "slices"

// NewEmptyState builds the default roster: five empty lanes, no players,
// dark theme.
func NewEmptyState() State {
	return NewState(DefaultPositions, DefaultOperators)
}

// NewState builds an empty roster with the given lanes and operator cycle.
// Callers validate the inputs (see config); an empty operator list falls
// back to DefaultOperators.
func NewState(positions []string, operators []Operator) State {
	if len(operators) == 0 {
		operators = DefaultOperators
	}
	s := State{
		Players: []Player{},
		Lanes:   make([]Lane, 0, len(positions)),
		Theme:   ThemeDark,
		Rules:   Rules{Operators: slices.Clone(operators)},
	}
	for _, pos := range positions {
		s.Lanes = append(s.Lanes, Lane{Position: pos, Operator: DefaultOperator})
	}
	return s
}

// Clone deep-copies s so the copy can be mutated freely.
func Clone(s State) State {
	c := s
	c.Players = slices.Clone(s.Players)
	c.Lanes = slices.Clone(s.Lanes)
	c.Rules.Operators = slices.Clone(s.Rules.Operators)
	if s.DragOver != nil {
		t := *s.DragOver
		c.DragOver = &t
	}
	return c
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// FindPlayer looks a player up by name.
func FindPlayer(s State, name string) (Player, bool) {
	i := playerIndex(s, name)
	if i < 0 {
		return Player{}, false
	}
	return s.Players[i], true
}

// FindLane looks a lane up by position.
func FindLane(s State, position string) (Lane, bool) {
	i := laneIndex(s, position)
	if i < 0 {
		return Lane{}, false
	}
	return s.Lanes[i], true
}

func playerIndex(s State, name string) int {
	if name == "" {
		return -1
	}
	return slices.IndexFunc(s.Players, func(p Player) bool { return p.Name == name })
}

func laneIndex(s State, position string) int {
	return slices.IndexFunc(s.Lanes, func(l Lane) bool { return l.Position == position })
}

// slotRef points into s.Lanes; it is nil for an unknown position or slot.
func slotRef(s *State, position string, slot Slot) *string {
	i := laneIndex(*s, position)
	if i < 0 {
		return nil
	}
	switch slot {
	case SlotA:
		return &s.Lanes[i].SlotA
	case SlotB:
		return &s.Lanes[i].SlotB
	}
	return nil
}

func validTier(t Tier, allowUnset bool) bool {
	switch t {
	case TierHigh, TierMid, TierLow:
		return true
	case TierUnset:
		return allowUnset
	}
	return false
}

func validSlot(slot Slot) bool {
	return slot == SlotA || slot == SlotB
}
