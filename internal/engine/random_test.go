package engine

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
)

func TestRandomizeSides_AllOrNothing(t *testing.T) {
	s := withPlayers(t, "A B C D")
	s = place(t, s, "A", "Top", SlotA)
	s = place(t, s, "B", "Top", SlotB)
	s = place(t, s, "C", "Mid", SlotA)
	s = place(t, s, "D", "Support", SlotB)
	s.Lanes[0].Operator = OpGreater
	s.Lanes[2].Operator = OpLess

	events, same, err := ApplyWith(s, Command{Type: CmdRandomizeSides}, &scriptedRand{coin: 0.49})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if len(events) != 0 || !cmp.Equal(s, same) {
		t.Fatalf("coin below one half must leave every lane alone")
	}

	events, flipped, err := ApplyWith(s, Command{Type: CmdRandomizeSides}, &scriptedRand{coin: 0.5})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if !ContainsEvent(events, EvtSidesRandomized) {
		t.Fatalf("expected EvtSidesRandomized, got %+v", events)
	}
	for i, l := range flipped.Lanes {
		orig := s.Lanes[i]
		if l.SlotA != orig.SlotB || l.SlotB != orig.SlotA || l.Operator != orig.Operator.Flip() {
			t.Fatalf("lane %s not flipped: before %+v after %+v", l.Position, orig, l)
		}
	}
}

func TestRandomAssignOne(t *testing.T) {
	s := withPlayers(t, "Alice Bob Carol")
	s = place(t, s, "Alice", "Top", SlotA)

	// Pool is [Bob Carol]; empty slots start at Top.b, Jungle.a, Jungle.b...
	r := &scriptedRand{ints: []int{1, 2}}
	events, s, err := ApplyWith(s, Command{Type: CmdRandomAssign}, r)
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	want := Event{Type: EvtPlayerPlaced, Name: "Carol", Position: "Jungle", Slot: SlotB}
	if len(events) != 1 || events[0] != want {
		t.Fatalf("got %+v want %+v", events, want)
	}
	jg, _ := FindLane(s, "Jungle")
	if jg.SlotB != "Carol" {
		t.Fatalf("Jungle.b = %q", jg.SlotB)
	}
}

func TestRandomAssignOne_NoUnassignedIsNoop(t *testing.T) {
	s := withPlayers(t, "Alice Bob")
	s = place(t, s, "Alice", "Top", SlotA)
	s = place(t, s, "Bob", "Mid", SlotB)

	events, next, err := ApplyWith(s, Command{Type: CmdRandomAssign}, &scriptedRand{})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if !ContainsEvent(events, EvtRandomAssignSkipped) || Changed(events) {
		t.Fatalf("expected only a skip report, got %+v", events)
	}
	if diff := cmp.Diff(s.Lanes, next.Lanes); diff != "" {
		t.Fatalf("lanes changed (-before +after):\n%s", diff)
	}
}

func TestRandomAssignOne_NoEmptySlotIsNoop(t *testing.T) {
	s := NewState([]string{"Solo"}, DefaultOperators)
	_, s = mustApply(t, s, Command{Type: CmdSubmitNames, Text: "A B C"})
	s = place(t, s, "A", "Solo", SlotA)
	s = place(t, s, "B", "Solo", SlotB)

	events, next, err := ApplyWith(s, Command{Type: CmdRandomAssign}, &scriptedRand{})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if Changed(events) || !cmp.Equal(s, next) {
		t.Fatalf("full lanes should make random assign a no-op")
	}
}

// Property checks over random command sequences.

func randomCommand(f *gofakeit.Faker, s State, names []string) Command {
	name := names[f.Number(0, len(names)-1)]
	pos := DefaultPositions[f.Number(0, len(DefaultPositions)-1)]
	slot := []Slot{SlotA, SlotB}[f.Number(0, 1)]
	tier := TierOrder[f.Number(0, len(TierOrder)-1)]

	payload := PoolPayload(name)
	// Mostly honest payloads, sometimes stale ones.
	if f.Number(0, 3) > 0 {
		for _, l := range s.Lanes {
			if l.SlotA == name {
				payload = SlotPayload(name, l.Position, SlotA)
			}
			if l.SlotB == name {
				payload = SlotPayload(name, l.Position, SlotB)
			}
		}
	} else if f.Bool() {
		payload = SlotPayload(name, pos, slot)
	}

	switch f.Number(0, 9) {
	case 0:
		return Command{Type: CmdSubmitNames, Text: name + " " + names[f.Number(0, len(names)-1)]}
	case 1:
		return Command{Type: CmdDeletePlayer, Name: name}
	case 2:
		return Command{Type: CmdSwapSlots, Position: pos}
	case 3:
		return Command{Type: CmdRandomAssign}
	case 4:
		return Command{Type: CmdRandomizeSides}
	case 5:
		return Command{Type: CmdDrop, Payload: payload, Target: PoolTarget(tier)}
	case 6:
		return Command{Type: CmdSetTier, Name: name, Tier: tier}
	default:
		return Command{Type: CmdDrop, Payload: payload, Target: SlotTarget(pos, slot)}
	}
}

func TestProperties_RandomSequences(t *testing.T) {
	f := gofakeit.New(42)

	for run := 0; run < 50; run++ {
		names := make([]string, 0, 8)
		for len(names) < 8 {
			names = append(names, f.FirstName())
		}

		s := NewEmptyState()
		_, s = mustApply(t, s, Command{Type: CmdSubmitNames, Text: f.FirstName() + " " + names[0]})

		for step := 0; step < 200; step++ {
			cmd := randomCommand(f, s, names)
			_, next, err := Apply(s, cmd)
			if err != nil {
				t.Fatalf("run %d step %d %+v: %v", run, step, cmd, err)
			}
			s = next

			seen := map[string]bool{}
			for _, p := range s.Players {
				if seen[p.Name] {
					t.Fatalf("run %d step %d: duplicate player %q", run, step, p.Name)
				}
				seen[p.Name] = true
			}

			slots := map[string]int{}
			for _, l := range s.Lanes {
				for _, n := range []string{l.SlotA, l.SlotB} {
					if n == "" {
						continue
					}
					slots[n]++
					if slots[n] > 1 {
						t.Fatalf("run %d step %d after %+v: %q in two slots", run, step, cmd, n)
					}
					if !seen[n] {
						t.Fatalf("run %d step %d: slot holds unregistered %q", run, step, n)
					}
				}
			}

			pooled := 0
			for _, tier := range TierOrder {
				pooled += len(TierBuckets(s)[tier])
			}
			if pooled+len(slots) != len(s.Players) {
				t.Fatalf("run %d step %d: pool %d + placed %d != players %d",
					run, step, pooled, len(slots), len(s.Players))
			}
		}
	}
}
