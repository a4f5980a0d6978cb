package types

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/team-builder/internal/engine"
	pub "github.com/DoyleJ11/team-builder/pkg/types"
)

var ErrUnknownType = errors.New("unknown message type")

// ClientMessage is what a browser (or any client) sends over the socket or
// POSTs to the command endpoint.
//
//	SubmitNames      {text}
//	SetTier          {name, tier}          tier "" clears
//	DeletePlayer     {name}
//	CycleOperator    {position, direction} "backward" | "forward"
//	SwapSlots        {position}
//	ResetLanes       {}
//	DragOver         {target}
//	DragLeave        {}
//	Drop             {payload, target}     payload is the text set at drag start
//	RandomizeSides   {}
//	RandomAssign     {}
//	OpenContextMenu  {name, x, y}
//	CloseContextMenu {}
//	ToggleTheme      {}
type ClientMessage struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	Name      string         `json:"name,omitempty"`
	Tier      string         `json:"tier,omitempty"`
	Position  string         `json:"position,omitempty"`
	Direction string         `json:"direction,omitempty"`
	Payload   string         `json:"payload,omitempty"`
	Target    pub.DropTarget `json:"target"`
	X         int            `json:"x,omitempty"`
	Y         int            `json:"y,omitempty"`
}

type ServerMessage struct {
	Type    string        `json:"type"` // "StateSnapshot" | "Error"
	Version int           `json:"version,omitempty"`
	State   *pub.Snapshot `json:"state,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func ToEngineCommand(m ClientMessage) (engine.Command, error) {
	switch engine.CommandType(m.Type) {
	case engine.CmdSubmitNames:
		return engine.Command{Type: engine.CmdSubmitNames, Text: m.Text}, nil
	case engine.CmdSetTier:
		return engine.Command{Type: engine.CmdSetTier, Name: m.Name, Tier: engine.Tier(m.Tier)}, nil
	case engine.CmdDeletePlayer:
		return engine.Command{Type: engine.CmdDeletePlayer, Name: m.Name}, nil
	case engine.CmdCycleOperator:
		return engine.Command{Type: engine.CmdCycleOperator, Position: m.Position, Direction: engine.Direction(m.Direction)}, nil
	case engine.CmdSwapSlots:
		return engine.Command{Type: engine.CmdSwapSlots, Position: m.Position}, nil
	case engine.CmdResetLanes:
		return engine.Command{Type: engine.CmdResetLanes}, nil
	case engine.CmdDragOver:
		return engine.Command{Type: engine.CmdDragOver, Target: toEngineTarget(m.Target)}, nil
	case engine.CmdDragLeave:
		return engine.Command{Type: engine.CmdDragLeave}, nil
	case engine.CmdDrop:
		payload, err := engine.DecodePayload(m.Payload)
		if err != nil {
			return engine.Command{}, err
		}
		return engine.Command{Type: engine.CmdDrop, Payload: payload, Target: toEngineTarget(m.Target)}, nil
	case engine.CmdRandomizeSides:
		return engine.Command{Type: engine.CmdRandomizeSides}, nil
	case engine.CmdRandomAssign:
		return engine.Command{Type: engine.CmdRandomAssign}, nil
	case engine.CmdOpenContextMenu:
		return engine.Command{Type: engine.CmdOpenContextMenu, Name: m.Name, X: m.X, Y: m.Y}, nil
	case engine.CmdCloseContextMenu:
		return engine.Command{Type: engine.CmdCloseContextMenu}, nil
	case engine.CmdToggleTheme:
		return engine.Command{Type: engine.CmdToggleTheme}, nil
	default:
		return engine.Command{}, fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
}

func toEngineTarget(t pub.DropTarget) engine.DropTarget {
	return engine.DropTarget{
		Type:     engine.TargetType(t.Type),
		Tier:     engine.Tier(t.Tier),
		Position: t.Position,
		Slot:     engine.Slot(t.Slot),
	}
}

// NewSnapshot renders s, including the derived pool buckets.
func NewSnapshot(version int, s engine.State) pub.Snapshot {
	snap := pub.Snapshot{
		Version:   version,
		Lanes:     make([]pub.Lane, 0, len(s.Lanes)),
		Pool:      make(map[string][]pub.Player, len(engine.TierOrder)),
		Players:   make([]pub.Player, 0, len(s.Players)),
		Operators: make([]string, 0, len(s.Rules.Operators)),
		Theme:     string(s.Theme),
		ContextMenu: pub.ContextMenu{
			Visible:    s.ContextMenu.Visible,
			X:          s.ContextMenu.X,
			Y:          s.ContextMenu.Y,
			TargetName: s.ContextMenu.TargetName,
		},
	}

	for _, l := range s.Lanes {
		snap.Lanes = append(snap.Lanes, pub.Lane{
			Position: l.Position,
			SlotA:    l.SlotA,
			SlotB:    l.SlotB,
			Operator: string(l.Operator),
		})
	}
	for tier, players := range engine.TierBuckets(s) {
		row := make([]pub.Player, 0, len(players))
		for _, p := range players {
			row = append(row, pub.Player{Name: p.Name, Tier: string(p.Tier)})
		}
		snap.Pool[string(tier)] = row
	}
	for _, p := range s.Players {
		snap.Players = append(snap.Players, pub.Player{Name: p.Name, Tier: string(p.Tier)})
	}
	for _, op := range s.Rules.Operators {
		snap.Operators = append(snap.Operators, string(op))
	}
	if s.DragOver != nil {
		snap.DragOver = &pub.DropTarget{
			Type:     string(s.DragOver.Type),
			Tier:     string(s.DragOver.Tier),
			Position: s.DragOver.Position,
			Slot:     string(s.DragOver.Slot),
		}
	}
	return snap
}
