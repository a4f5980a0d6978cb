package engine

import "strings"

// submitNames adds one Mid-tier player per whitespace separated token.
// Names already registered, or repeated in the same text, are skipped.
func submitNames(s *State, text string) []Event {
	var events []Event
	for _, name := range strings.Fields(text) {
		if playerIndex(*s, name) >= 0 {
			continue
		}
		s.Players = append(s.Players, Player{Name: name, Tier: TierMid})
		events = append(events, Event{Type: EvtPlayerAdded, Name: name, Tier: TierMid})
	}
	return events
}

func setTier(s *State, name string, tier Tier) []Event {
	i := playerIndex(*s, name)
	if i < 0 || s.Players[i].Tier == tier {
		return nil
	}
	s.Players[i].Tier = tier
	return []Event{{Type: EvtTierChanged, Name: name, Tier: tier}}
}

func deletePlayer(s *State, name string) []Event {
	i := playerIndex(*s, name)
	if i < 0 {
		return nil
	}
	events := clearSlotsFor(s, name)
	s.Players = append(s.Players[:i], s.Players[i+1:]...)
	return append(events, Event{Type: EvtPlayerDeleted, Name: name})
}
