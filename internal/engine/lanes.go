package engine

import "slices"

func cycleOperator(s *State, position string, dir Direction) ([]Event, error) {
	i := laneIndex(*s, position)
	if i < 0 {
		return nil, ErrUnknownPosition
	}

	ops := s.Rules.Operators
	if len(ops) == 0 {
		ops = DefaultOperators
	}
	cur := slices.Index(ops, s.Lanes[i].Operator)
	if cur < 0 {
		cur = max(slices.Index(ops, DefaultOperator), 0)
	}

	var next int
	switch dir {
	case DirForward:
		next = (cur + 1) % len(ops)
	case DirBackward:
		next = (cur - 1 + len(ops)) % len(ops)
	default:
		return nil, ErrUnknownDirection
	}

	if s.Lanes[i].Operator == ops[next] {
		return nil, nil
	}
	s.Lanes[i].Operator = ops[next]
	return []Event{{Type: EvtOperatorChanged, Position: position, Operator: ops[next]}}, nil
}

func swapSlots(s *State, position string) ([]Event, error) {
	i := laneIndex(*s, position)
	if i < 0 {
		return nil, ErrUnknownPosition
	}
	swapLane(&s.Lanes[i])
	return []Event{{Type: EvtLaneSwapped, Position: position, Operator: s.Lanes[i].Operator}}, nil
}

func swapLane(l *Lane) {
	l.SlotA, l.SlotB = l.SlotB, l.SlotA
	l.Operator = l.Operator.Flip()
}

func resetLanes(s *State) []Event {
	for i := range s.Lanes {
		s.Lanes[i] = Lane{Position: s.Lanes[i].Position, Operator: DefaultOperator}
	}
	return []Event{{Type: EvtLanesReset}}
}

// clearSlotsFor empties every slot holding name.
func clearSlotsFor(s *State, name string) []Event {
	if name == "" {
		return nil
	}
	var events []Event
	for i := range s.Lanes {
		l := &s.Lanes[i]
		if l.SlotA == name {
			l.SlotA = ""
			events = append(events, Event{Type: EvtSlotCleared, Name: name, Position: l.Position, Slot: SlotA})
		}
		if l.SlotB == name {
			l.SlotB = ""
			events = append(events, Event{Type: EvtSlotCleared, Name: name, Position: l.Position, Slot: SlotB})
		}
	}
	return events
}
